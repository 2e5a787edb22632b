// Package othello implements the reversible-capture game on an 8x8 grid.
//
// Turn order does not strictly alternate piece placements, because a player
// with no capturing placement must pass. The board therefore carries one extra
// space after the grid that stores the player to move, and the move space has
// one extra index for passing.
package othello

import (
	"fmt"
	"strings"

	"github.com/onezer00/zero-play/game"

	"github.com/pkg/errors"
)

const (
	Size   = 8
	Spaces = Size * Size
	Pass   = Spaces // move index for passing
	turn   = Spaces // board index of the player to move
)

var directions = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

type Game struct{}

func New() Game {
	return Game{}
}

func (Game) Name() string {
	return "othello"
}

func (Game) MoveCount() int {
	return Spaces + 1
}

func (Game) NewBoard() game.Board {
	board := make(game.Board, Spaces+1)
	board[3*Size+3] = game.PlayerB
	board[4*Size+4] = game.PlayerB
	board[3*Size+4] = game.PlayerA
	board[4*Size+3] = game.PlayerA
	board[turn] = game.PlayerA
	return board
}

// ParseBoard reads the grid, followed by an optional "X to move" line. When
// the line is missing, the player to move is derived from the piece count.
func (Game) ParseBoard(text string) (game.Board, error) {
	var gridLines []string
	player := game.NoPlayer
	for _, line := range strings.Split(text, "\n") {
		if before, found := strings.CutSuffix(strings.TrimSpace(line), "to move"); found {
			p, ok := parsePlayer(strings.TrimSpace(before))
			if !ok {
				return nil, errors.Wrapf(game.ErrInvalidFormat, "bad turn line %q", line)
			}
			player = p
			continue
		}
		gridLines = append(gridLines, line)
	}
	grid, err := game.ParseGrid(strings.Join(gridLines, "\n"), Size, Size)
	if err != nil {
		return nil, err
	}
	board := append(grid, player)
	if player == game.NoPlayer {
		pieces := board[:Spaces].Count(game.PlayerA) + board[:Spaces].Count(game.PlayerB)
		board[turn] = game.PlayerA
		if pieces%2 == 1 {
			board[turn] = game.PlayerB
		}
	}
	return board, nil
}

func parsePlayer(text string) (game.Player, bool) {
	switch strings.ToUpper(text) {
	case "X":
		return game.PlayerA, true
	case "O":
		return game.PlayerB, true
	}
	return game.NoPlayer, false
}

func (g Game) ValidMoves(board game.Board) []bool {
	player := g.ActivePlayer(board)
	valid := placements(board, player)
	if anyTrue(valid[:Spaces]) {
		return valid
	}
	if anyTrue(placements(board, player.Opponent())[:Spaces]) {
		valid[Pass] = true
	}
	return valid
}

// placements marks every empty space where the player would capture at least one piece.
func placements(board game.Board, player game.Player) []bool {
	valid := make([]bool, Spaces+1)
	for i := 0; i < Spaces; i++ {
		if board[i] == game.NoPlayer && len(captures(board, player, i)) > 0 {
			valid[i] = true
		}
	}
	return valid
}

func anyTrue(values []bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

// captures lists the opponent pieces flipped by placing a piece at index.
func captures(board game.Board, player game.Player, index int) []int {
	var flipped []int
	row, col := index/Size, index%Size
	for _, d := range directions {
		var line []int
		r, c := row+d[0], col+d[1]
		for r >= 0 && r < Size && c >= 0 && c < Size && board[r*Size+c] == player.Opponent() {
			line = append(line, r*Size+c)
			r, c = r+d[0], c+d[1]
		}
		if len(line) > 0 && r >= 0 && r < Size && c >= 0 && c < Size && board[r*Size+c] == player {
			flipped = append(flipped, line...)
		}
	}
	return flipped
}

func (g Game) Play(board game.Board, move int) (game.Board, error) {
	if move < 0 || move > Pass || !g.ValidMoves(board)[move] {
		return nil, errors.Wrapf(game.ErrIllegalMove, "move %d", move)
	}
	player := g.ActivePlayer(board)
	next := board.Clone()
	if move != Pass {
		next[move] = player
		for _, i := range captures(board, player, move) {
			next[i] = player
		}
	}
	next[turn] = player.Opponent()
	return next, nil
}

func (Game) ActivePlayer(board game.Board) game.Player {
	if board[turn] == game.NoPlayer {
		return game.PlayerA
	}
	return board[turn]
}

// IsWin is true once neither player can place a piece and the player holds
// more of the board than the opponent.
func (Game) IsWin(board game.Board, player game.Player) bool {
	if anyTrue(placements(board, game.PlayerA)[:Spaces]) || anyTrue(placements(board, game.PlayerB)[:Spaces]) {
		return false
	}
	grid := board[:Spaces]
	return grid.Count(player) > grid.Count(player.Opponent())
}

func (g Game) Display(board game.Board, showCoordinates bool) string {
	text := game.DisplayGrid(board, Size, Size, showCoordinates)
	return fmt.Sprintf("%s%c to move\n", text, game.PieceChar(g.ActivePlayer(board)))
}

// ParseMove reads a coordinate such as "D3", or "pass".
func (g Game) ParseMove(text string, board game.Board) (int, error) {
	valid := g.ValidMoves(board)
	if strings.EqualFold(strings.TrimSpace(text), "pass") {
		if !valid[Pass] {
			return 0, errors.Wrap(game.ErrInvalidMove, "passing is only allowed without other moves")
		}
		return Pass, nil
	}
	row, col, ok := game.ParseCell(text, Size, Size)
	if !ok {
		return 0, errors.Wrapf(game.ErrInvalidMove, "%q", text)
	}
	move := row*Size + col
	if !valid[move] {
		return 0, errors.Wrapf(game.ErrInvalidMove, "%q is not a legal move", text)
	}
	return move, nil
}
