package othello

import (
	"strings"
	"testing"

	"github.com/onezer00/zero-play/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestNewBoard(t *testing.T) {
	g := New()
	board := g.NewBoard()

	require.Equal(t, "othello", g.Name())
	require.Equal(t, Spaces+1, g.MoveCount())
	require.Equal(t, game.PlayerA, g.ActivePlayer(board))
	require.Equal(t, []int{19, 26, 37, 44}, game.LegalMoves(g, board), "X should open with the four standard moves")
}

func TestPlayFlips(t *testing.T) {
	g := New()
	board := g.NewBoard()

	next, err := g.Play(board, 19)
	require.NoError(t, err)

	require.Equal(t, game.PlayerA, next[19])
	require.Equal(t, game.PlayerA, next[27], "Bracketed piece should flip")
	require.Equal(t, game.PlayerB, board[27], "Input board should be unchanged")
	require.Equal(t, 4, next[:Spaces].Count(game.PlayerA))
	require.Equal(t, 1, next[:Spaces].Count(game.PlayerB))
	require.Equal(t, game.PlayerB, g.ActivePlayer(next))

	_, err = g.Play(next, 0)
	require.ErrorIs(t, err, game.ErrIllegalMove)
}

func TestPass(t *testing.T) {
	g := New()
	text := "OX......\n" + strings.Repeat("........\n", 7) + "X to move\n"
	board, err := g.ParseBoard(text)
	require.NoError(t, err)

	valid := g.ValidMoves(board)
	require.Equal(t, []int{Pass}, game.LegalMoves(g, board), "X can only pass")
	require.True(t, valid[Pass])

	move, err := g.ParseMove("pass", board)
	require.NoError(t, err)
	require.Equal(t, Pass, move)

	board, err = g.Play(board, Pass)
	require.NoError(t, err)
	require.Equal(t, game.PlayerB, g.ActivePlayer(board))
	require.Equal(t, []int{2}, game.LegalMoves(g, board))

	_, err = g.ParseMove("pass", board)
	require.ErrorIs(t, err, game.ErrInvalidMove, "Passing with a legal placement")

	board, err = g.Play(board, 2)
	require.NoError(t, err)
	require.True(t, game.IsEnded(g, board))
	require.Equal(t, game.PlayerB, game.Winner(g, board))
}

func TestParseBoard(t *testing.T) {
	g := New()

	t.Run("turn from piece count", func(t *testing.T) {
		text := strings.Repeat("........\n", 3) +
			"..XXX...\n" +
			"...XO...\n" +
			strings.Repeat("........\n", 3)
		board, err := g.ParseBoard(text)
		require.NoError(t, err)
		require.Equal(t, game.PlayerB, g.ActivePlayer(board))
	})

	t.Run("bad turn line", func(t *testing.T) {
		text := strings.Repeat("........\n", 8) + "Q to move\n"
		_, err := g.ParseBoard(text)
		require.ErrorIs(t, err, game.ErrInvalidFormat)
	})

	t.Run("bad grid", func(t *testing.T) {
		_, err := g.ParseBoard(strings.Repeat("........\n", 7))
		require.ErrorIs(t, err, game.ErrInvalidFormat)
	})
}

func TestDisplay(t *testing.T) {
	g := New()
	want := "  ABCDEFGH\n" +
		"1 ........\n" +
		"2 ........\n" +
		"3 ........\n" +
		"4 ...OX...\n" +
		"5 ...XO...\n" +
		"6 ........\n" +
		"7 ........\n" +
		"8 ........\n" +
		"X to move\n"
	require.Equal(t, want, g.Display(g.NewBoard(), true))

	move, err := g.ParseMove("D3", g.NewBoard())
	require.NoError(t, err)
	require.Equal(t, 19, move)
}

func TestRandomPlay(t *testing.T) {
	g := New()
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 5; i++ {
		board := g.NewBoard()
		for !game.IsEnded(g, board) {
			moves := game.LegalMoves(g, board)
			next, err := g.Play(board, moves[rng.Intn(len(moves))])
			require.NoError(t, err)
			require.Len(t, next, Spaces+1)
			require.Len(t, g.ValidMoves(next), g.MoveCount())

			parsed, err := g.ParseBoard(g.Display(next, i%2 == 1))
			require.NoError(t, err)
			require.True(t, parsed.Equal(next), "Display should round-trip")
			board = next
		}
	}
}
