package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/game/connect4"
	"github.com/onezer00/zero-play/game/tictactoe"
	"github.com/onezer00/zero-play/heuristic"

	"github.com/stretchr/testify/require"
)

func examples(t *testing.T) []heuristic.TrainingExample {
	t.Helper()
	g := tictactoe.New()
	board, err := g.ParseBoard("XO.\n.X.\n...")
	require.NoError(t, err)

	policy := make([]float64, tictactoe.Spaces)
	policy[8] = 1
	return []heuristic.TrainingExample{
		{Board: g.NewBoard(), Player: game.PlayerA, Policy: heuristic.UniformPriors(g.ValidMoves(g.NewBoard())), Value: 0},
		{Board: board, Player: game.PlayerB, Policy: policy, Value: -1},
	}
}

func newNetwork(t *testing.T, g game.Game, options ...Option) *Network {
	t.Helper()
	n, err := New(g, options...)
	require.NoError(t, err)
	return n
}

func TestEvaluate(t *testing.T) {
	g := tictactoe.New()
	n := newNetwork(t, g, WithHidden(8), WithSeed(3))

	priors, value, err := n.Evaluate(g.NewBoard())
	require.NoError(t, err)
	require.Len(t, priors, g.MoveCount())

	total := 0.0
	for _, p := range priors {
		require.Greater(t, p, 0.0)
		total += p
	}
	require.InDelta(t, 1.0, total, 1e-5, "Priors should be a distribution")
	require.GreaterOrEqual(t, value, -1.0)
	require.LessOrEqual(t, value, 1.0)

	again, againValue, err := n.Evaluate(g.NewBoard())
	require.NoError(t, err)
	require.Equal(t, priors, again, "Evaluate should be deterministic")
	require.Equal(t, value, againValue)

	_, _, err = n.Evaluate(make(game.Board, 4))
	require.Error(t, err, "Wrong board size should fail")
}

func TestSeed(t *testing.T) {
	g := tictactoe.New()
	a, _, err := newNetwork(t, g, WithSeed(9)).Evaluate(g.NewBoard())
	require.NoError(t, err)
	b, _, err := newNetwork(t, g, WithSeed(9)).Evaluate(g.NewBoard())
	require.NoError(t, err)

	require.Equal(t, a, b, "Same seed should build the same network")
}

func TestTrainReducesLoss(t *testing.T) {
	n := newNetwork(t, tictactoe.New(), WithHidden(16), WithEpochs(50), WithLearningRate(0.05), WithBatchSize(2))
	data := examples(t)

	before, err := n.Loss(data)
	require.NoError(t, err)
	require.NoError(t, n.Train(data))
	after, err := n.Loss(data)
	require.NoError(t, err)

	require.Less(t, after, before, "Training should fit the examples")

	_, value, err := n.Evaluate(data[1].Board)
	require.NoError(t, err)
	require.Less(t, value, 0.0, "Value should move toward the target")
}

func TestTrainRejectsBadExamples(t *testing.T) {
	n := newNetwork(t, tictactoe.New(), WithHidden(4))
	bad := []heuristic.TrainingExample{{Board: make(game.Board, 9), Policy: make([]float64, 3)}}

	require.Error(t, n.Train(bad))
	_, err := n.Loss(bad)
	require.Error(t, err)

	require.NoError(t, n.Train(nil), "No examples is a no-op")
	loss, err := n.Loss(nil)
	require.NoError(t, err)
	require.Zero(t, loss)
}

func TestCheckpoint(t *testing.T) {
	g := tictactoe.New()
	path := filepath.Join(t.TempDir(), "nested", "checkpoint-01")

	t.Run("load reproduces evaluation", func(t *testing.T) {
		trained := newNetwork(t, g, WithHidden(8), WithEpochs(5))
		require.NoError(t, trained.Train(examples(t)))
		require.NoError(t, trained.Save(path))

		loaded := newNetwork(t, g, WithHidden(8), WithSeed(77))
		require.NoError(t, loaded.Load(path))

		board, err := g.ParseBoard("XO.\n.X.\n...")
		require.NoError(t, err)
		wantPriors, wantValue, err := trained.Evaluate(board)
		require.NoError(t, err)
		gotPriors, gotValue, err := loaded.Evaluate(board)
		require.NoError(t, err)
		require.Equal(t, wantPriors, gotPriors)
		require.Equal(t, wantValue, gotValue)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1, "No staging directories should remain")
		require.True(t, entries[0].IsDir())
	})

	t.Run("save replaces an older checkpoint", func(t *testing.T) {
		n := newNetwork(t, g, WithHidden(8), WithSeed(5))
		require.NoError(t, n.Save(path))
		require.NoError(t, n.Save(path))

		loaded := newNetwork(t, g, WithHidden(8))
		require.NoError(t, loaded.Load(path))
		want, _, err := n.Evaluate(g.NewBoard())
		require.NoError(t, err)
		got, _, err := loaded.Evaluate(g.NewBoard())
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("loaded network keeps training", func(t *testing.T) {
		loaded := newNetwork(t, g, WithHidden(8), WithEpochs(5))
		require.NoError(t, loaded.Load(path))
		require.NoError(t, loaded.Train(examples(t)))
	})

	t.Run("mismatched game", func(t *testing.T) {
		other := newNetwork(t, connect4.New(), WithHidden(8))
		require.ErrorIs(t, other.Load(path), ErrCheckpointMismatch)
	})

	t.Run("mismatched layers", func(t *testing.T) {
		other := newNetwork(t, g, WithHidden(4))
		require.ErrorIs(t, other.Load(path), ErrCheckpointMismatch)
	})

	t.Run("missing checkpoint", func(t *testing.T) {
		err := newNetwork(t, g).Load(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCheckpointMismatch)
	})
}
