package experiments

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/onezer00/zero-play/game/tictactoe"
	"github.com/onezer00/zero-play/heuristic"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestThroughputExperiment(t *testing.T) {
	g := tictactoe.New()
	e := ThroughputExperiment{
		Name:       "throughput",
		Root:       t.TempDir(),
		Game:       g,
		Heuristic:  heuristic.NewPlayout(g, heuristic.WithRand(rand.New(rand.NewSource(3)))),
		Iterations: 5,
		MinSize:    5,
		Workers:    []int{1, 2},
		Seed:       1,
	}

	results, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results.Records, 2)

	t.Run("one record per worker count", func(t *testing.T) {
		for i, workers := range []int{1, 2} {
			record := results.Records[i]
			require.Equal(t, workers, record.Workers)
			// A tictactoe game has at least five decisions, so one round of games is enough
			require.Equal(t, workers, record.Games)
			require.GreaterOrEqual(t, record.Examples, 5)
			require.Positive(t, record.Duration)
			require.Positive(t, record.ExamplesPerSecond())
		}
	})

	t.Run("records are written", func(t *testing.T) {
		require.FileExists(t, filepath.Join(results.Dir, "throughput_records.csv"))
	})
}

func TestThroughputExperimentErrors(t *testing.T) {
	g := tictactoe.New()
	e := ThroughputExperiment{
		Name:       "throughput",
		Root:       t.TempDir(),
		Game:       g,
		Heuristic:  heuristic.NewPlayout(g),
		Iterations: 5,
		MinSize:    5,
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := e.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid iterations", func(t *testing.T) {
		bad := e
		bad.Iterations = 0

		_, err := bad.Run(context.Background())
		require.Error(t, err)
	})

	t.Run("default sweep", func(t *testing.T) {
		require.Equal(t, []int{1, 2, 4, 8}, DefaultThroughputWorkers)
	})
}
