// Package tictactoe implements three-in-a-row on a 3x3 grid.
package tictactoe

import (
	"github.com/onezer00/zero-play/game"

	"github.com/pkg/errors"
)

const (
	Size   = 3
	Spaces = Size * Size
)

var lines = [][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

type Game struct{}

func New() Game {
	return Game{}
}

func (Game) Name() string {
	return "tictactoe"
}

func (Game) MoveCount() int {
	return Spaces
}

func (Game) NewBoard() game.Board {
	return make(game.Board, Spaces)
}

func (Game) ParseBoard(text string) (game.Board, error) {
	return game.ParseGrid(text, Size, Size)
}

func (g Game) ValidMoves(board game.Board) []bool {
	valid := make([]bool, Spaces)
	if game.Winner(g, board) != game.NoPlayer {
		return valid
	}
	for i, p := range board {
		valid[i] = p == game.NoPlayer
	}
	return valid
}

func (g Game) Play(board game.Board, move int) (game.Board, error) {
	if move < 0 || move >= Spaces || !g.ValidMoves(board)[move] {
		return nil, errors.Wrapf(game.ErrIllegalMove, "move %d", move)
	}
	next := board.Clone()
	next[move] = g.ActivePlayer(board)
	return next, nil
}

func (Game) ActivePlayer(board game.Board) game.Player {
	return game.AlternatingPlayer(board)
}

func (Game) IsWin(board game.Board, player game.Player) bool {
	for _, line := range lines {
		if board[line[0]] == player && board[line[1]] == player && board[line[2]] == player {
			return true
		}
	}
	return false
}

func (Game) Display(board game.Board, showCoordinates bool) string {
	return game.DisplayGrid(board, Size, Size, showCoordinates)
}

// ParseMove reads a coordinate such as "B2" (column letter, row number).
func (g Game) ParseMove(text string, board game.Board) (int, error) {
	row, col, ok := game.ParseCell(text, Size, Size)
	if !ok {
		return 0, errors.Wrapf(game.ErrInvalidMove, "%q", text)
	}
	move := row*Size + col
	if !g.ValidMoves(board)[move] {
		return 0, errors.Wrapf(game.ErrInvalidMove, "%q is not a legal move", text)
	}
	return move, nil
}
