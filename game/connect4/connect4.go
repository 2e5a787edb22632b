// Package connect4 implements four-in-a-row on a 6x7 grid where pieces drop
// to the lowest empty row of the chosen column.
package connect4

import (
	"strings"

	"github.com/onezer00/zero-play/game"

	"github.com/pkg/errors"
)

const (
	Rows    = 6
	Columns = 7
	Connect = 4
)

type Game struct{}

func New() Game {
	return Game{}
}

func (Game) Name() string {
	return "connect4"
}

// MoveCount is one move per column.
func (Game) MoveCount() int {
	return Columns
}

func (Game) NewBoard() game.Board {
	return make(game.Board, Rows*Columns)
}

func (Game) ParseBoard(text string) (game.Board, error) {
	return game.ParseGrid(text, Rows, Columns)
}

func (g Game) ValidMoves(board game.Board) []bool {
	valid := make([]bool, Columns)
	if game.Winner(g, board) != game.NoPlayer {
		return valid
	}
	// A column is open while its top space is empty
	for col := 0; col < Columns; col++ {
		valid[col] = board[col] == game.NoPlayer
	}
	return valid
}

func (g Game) Play(board game.Board, move int) (game.Board, error) {
	if move < 0 || move >= Columns || !g.ValidMoves(board)[move] {
		return nil, errors.Wrapf(game.ErrIllegalMove, "column %d", move)
	}
	next := board.Clone()
	for row := Rows - 1; row >= 0; row-- {
		if i := row*Columns + move; next[i] == game.NoPlayer {
			next[i] = g.ActivePlayer(board)
			break
		}
	}
	return next, nil
}

func (Game) ActivePlayer(board game.Board) game.Player {
	return game.AlternatingPlayer(board)
}

func (Game) IsWin(board game.Board, player game.Player) bool {
	directions := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if board[row*Columns+col] != player {
				continue
			}
			for _, d := range directions {
				if connected(board, player, row, col, d[0], d[1]) {
					return true
				}
			}
		}
	}
	return false
}

func connected(board game.Board, player game.Player, row, col, dr, dc int) bool {
	for step := 1; step < Connect; step++ {
		r, c := row+dr*step, col+dc*step
		if r < 0 || r >= Rows || c < 0 || c >= Columns || board[r*Columns+c] != player {
			return false
		}
	}
	return true
}

func (Game) Display(board game.Board, showCoordinates bool) string {
	return game.DisplayGrid(board, Rows, Columns, showCoordinates)
}

// ParseMove reads a column letter such as "C".
func (g Game) ParseMove(text string, board game.Board) (int, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if len(text) != 1 || text[0] < 'A' || int(text[0]-'A') >= Columns {
		return 0, errors.Wrapf(game.ErrInvalidMove, "%q", text)
	}
	move := int(text[0] - 'A')
	if !g.ValidMoves(board)[move] {
		return 0, errors.Wrapf(game.ErrInvalidMove, "column %q is full", text)
	}
	return move, nil
}
