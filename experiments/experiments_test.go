package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/game/tictactoe"
	"github.com/onezer00/zero-play/registry"

	"github.com/stretchr/testify/require"
)

func TestExperiment(t *testing.T) {
	root := t.TempDir()
	e := Experiment{
		Name:     "playout",
		Root:     root,
		Game:     tictactoe.New(),
		Registry: registry.New(),
		Games:    4,
		Workers:  2,
		Seed:     1,
	}
	a := metrics.AgentConfig{ID: 1, Heuristic: "playout", Iterations: 20}
	b := metrics.AgentConfig{ID: 2, Heuristic: "playout", Iterations: 40, Exploration: 2}

	results, err := e.Run(context.Background(), []metrics.AgentConfig{a, b}, [][2]metrics.AgentConfig{{a, b}})
	require.NoError(t, err)
	require.Len(t, results.GameRecords, 4)

	t.Run("sides alternate", func(t *testing.T) {
		for i, record := range results.GameRecords {
			require.Equal(t, i+1, record.ID)
			if i%2 == 0 {
				require.Equal(t, 1, record.Agent1)
				require.Equal(t, 2, record.Agent2)
			} else {
				require.Equal(t, 2, record.Agent1)
				require.Equal(t, 1, record.Agent2)
			}
			require.Equal(t, game.PlayerA, record.StartingPlayer)
		}
	})

	t.Run("move records", func(t *testing.T) {
		total := 0
		for _, record := range results.GameRecords {
			total += record.TotalMoves
		}
		require.Len(t, results.MoveRecords, total)
		for _, record := range results.MoveRecords {
			require.Positive(t, record.Episodes)
		}
	})

	t.Run("wins add up", func(t *testing.T) {
		winsA, drawsA := results.Wins(1)
		winsB, drawsB := results.Wins(2)
		require.Equal(t, drawsA, drawsB)
		require.Equal(t, 4, winsA+winsB+drawsA)
	})

	t.Run("files", func(t *testing.T) {
		require.Equal(t, filepath.Join(root, "playout"), filepath.Dir(results.Dir))
		for _, name := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv"} {
			_, err := os.Stat(filepath.Join(results.Dir, name))
			require.NoError(t, err, name)
		}
	})
}

func TestExperimentErrors(t *testing.T) {
	e := Experiment{
		Name:     "broken",
		Root:     t.TempDir(),
		Game:     tictactoe.New(),
		Registry: registry.New(),
		Games:    2,
	}

	t.Run("unknown heuristic", func(t *testing.T) {
		a := metrics.AgentConfig{ID: 1, Heuristic: "oracle", Iterations: 5}
		_, err := e.Run(context.Background(), []metrics.AgentConfig{a}, [][2]metrics.AgentConfig{{a, a}})
		require.ErrorIs(t, err, registry.ErrUnknownHeuristic)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := metrics.AgentConfig{ID: 1, Heuristic: "playout", Iterations: 5}
		_, err := e.Run(ctx, []metrics.AgentConfig{a}, [][2]metrics.AgentConfig{{a, a}})
		require.ErrorIs(t, err, context.Canceled)
	})
}
