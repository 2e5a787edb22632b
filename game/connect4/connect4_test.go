package connect4

import (
	"testing"

	"github.com/onezer00/zero-play/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func playAll(t *testing.T, g Game, board game.Board, moves ...int) game.Board {
	t.Helper()
	for _, move := range moves {
		var err error
		board, err = g.Play(board, move)
		require.NoError(t, err, "column %d", move)
	}
	return board
}

func TestDrop(t *testing.T) {
	g := New()
	board := playAll(t, g, g.NewBoard(), 3, 3)

	require.Equal(t, game.PlayerA, board[5*Columns+3], "First piece lands on the bottom row")
	require.Equal(t, game.PlayerB, board[4*Columns+3], "Second piece stacks on top")
	require.Equal(t, game.PlayerA, g.ActivePlayer(board))
}

func TestFullColumn(t *testing.T) {
	g := New()
	board := playAll(t, g, g.NewBoard(), 0, 0, 0, 0, 0, 0)

	require.False(t, g.ValidMoves(board)[0])
	_, err := g.Play(board, 0)
	require.ErrorIs(t, err, game.ErrIllegalMove)
	_, err = g.ParseMove("A", board)
	require.ErrorIs(t, err, game.ErrInvalidMove)
}

func TestWins(t *testing.T) {
	g := New()

	t.Run("horizontal", func(t *testing.T) {
		board := playAll(t, g, g.NewBoard(), 0, 0, 1, 1, 2, 2)
		require.False(t, g.IsWin(board, game.PlayerA))

		board = playAll(t, g, board, 3)
		require.True(t, g.IsWin(board, game.PlayerA))
		require.True(t, game.IsEnded(g, board))
	})

	t.Run("vertical", func(t *testing.T) {
		board := playAll(t, g, g.NewBoard(), 0, 1, 0, 1, 0, 1, 6, 1)
		require.Equal(t, game.PlayerB, game.Winner(g, board))
	})

	t.Run("diagonal", func(t *testing.T) {
		board, err := g.ParseBoard(".......\n.......\n...X...\n..XO...\n.XOO...\nXOOX.X.")
		require.NoError(t, err)
		require.True(t, g.IsWin(board, game.PlayerA))
		require.False(t, g.IsWin(board, game.PlayerB))
	})
}

func TestParseMove(t *testing.T) {
	g := New()
	board := g.NewBoard()

	move, err := g.ParseMove("c", board)
	require.NoError(t, err)
	require.Equal(t, 2, move)

	for _, text := range []string{"", "H", "AB", "1"} {
		_, err := g.ParseMove(text, board)
		require.ErrorIs(t, err, game.ErrInvalidMove, "%q", text)
	}
}

func TestDisplay(t *testing.T) {
	g := New()
	board := playAll(t, g, g.NewBoard(), 3)

	want := "  ABCDEFG\n" +
		"1 .......\n" +
		"2 .......\n" +
		"3 .......\n" +
		"4 .......\n" +
		"5 .......\n" +
		"6 ...X...\n"
	require.Equal(t, want, g.Display(board, true))
}

func TestRandomPlay(t *testing.T) {
	g := New()
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 20; i++ {
		board := g.NewBoard()
		for !game.IsEnded(g, board) {
			moves := game.LegalMoves(g, board)
			next, err := g.Play(board, moves[rng.Intn(len(moves))])
			require.NoError(t, err)
			require.Len(t, next, Rows*Columns)
			require.Len(t, g.ValidMoves(next), g.MoveCount())

			parsed, err := g.ParseBoard(g.Display(next, i%2 == 0))
			require.NoError(t, err)
			require.True(t, parsed.Equal(next), "Display should round-trip")
			board = next
		}
	}
}
