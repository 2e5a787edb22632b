package heuristic

import (
	"testing"

	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/game/tictactoe"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func parse(t *testing.T, g game.Game, text string) game.Board {
	t.Helper()
	board, err := g.ParseBoard(text)
	require.NoError(t, err)
	return board
}

func TestPlayoutEvaluate(t *testing.T) {
	g := tictactoe.New()
	p := NewPlayout(g, WithRollouts(4), WithRand(rand.New(rand.NewSource(5))))

	t.Run("forced win", func(t *testing.T) {
		priors, value, err := p.Evaluate(parse(t, g, "XOO\nOXX\nXO."))

		require.NoError(t, err)
		require.Equal(t, 1.0, value, "X completes the diagonal with the only move")
		require.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0, 1}, priors)
	})

	t.Run("forced draw", func(t *testing.T) {
		_, value, err := p.Evaluate(parse(t, g, "XOX\nXOO\nOX."))

		require.NoError(t, err)
		require.Equal(t, 0.0, value)
	})

	t.Run("finished board scores exactly", func(t *testing.T) {
		// O to move after X won
		priors, value, err := p.Evaluate(parse(t, g, "XXX\nOO.\n..."))

		require.NoError(t, err)
		require.Equal(t, -1.0, value, "The mover has lost")
		require.Equal(t, make([]float64, tictactoe.Spaces), priors, "No legal moves remain")
	})

	t.Run("value in range", func(t *testing.T) {
		priors, value, err := p.Evaluate(g.NewBoard())

		require.NoError(t, err)
		require.GreaterOrEqual(t, value, -1.0)
		require.LessOrEqual(t, value, 1.0)
		require.InDeltaSlice(t, UniformPriors(g.ValidMoves(g.NewBoard())), priors, 1e-12)
	})
}

func TestPlayoutDeterminism(t *testing.T) {
	g := tictactoe.New()
	evaluate := func() float64 {
		p := NewPlayout(g, WithRollouts(16), WithRand(rand.New(rand.NewSource(42))))
		_, value, err := p.Evaluate(g.NewBoard())
		require.NoError(t, err)
		return value
	}

	require.Equal(t, evaluate(), evaluate(), "Same seed should give the same estimate")
}

func TestFinalize(t *testing.T) {
	examples := []TrainingExample{
		{Player: game.PlayerA, Value: 0.5},
		{Player: game.PlayerB},
		{Player: game.PlayerA},
	}

	Finalize(examples, game.PlayerB)
	require.Equal(t, -1.0, examples[0].Value)
	require.Equal(t, 1.0, examples[1].Value)
	require.Equal(t, -1.0, examples[2].Value)

	Finalize(examples, game.NoPlayer)
	for _, example := range examples {
		require.Equal(t, 0.0, example.Value, "A draw is worth nothing to either side")
	}
}

func TestUniformPriors(t *testing.T) {
	require.Equal(t, []float64{0.5, 0, 0.5}, UniformPriors([]bool{true, false, true}))
	require.Equal(t, []float64{0, 0}, UniformPriors([]bool{false, false}))
}
