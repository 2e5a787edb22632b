package game

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidFormat = errors.New("invalid board format")
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidMove   = errors.New("invalid move text")
	ErrInvalidState  = errors.New("invalid state")
)

type Player int8

const (
	NoPlayer Player = 0
	PlayerA  Player = 1  // X, moves first
	PlayerB  Player = -1 // O
)

// Opponent returns the other player, or NoPlayer for NoPlayer.
func (p Player) Opponent() Player {
	return -p
}

// Board holds one value per board space. Boards are never mutated once
// returned by a Game: every move produces a new Board.
type Board []Player

// Key returns a compact string identifying the board, usable as a map key.
func (b Board) Key() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, p := range b {
		sb.WriteByte(byte(p + 1))
	}
	return sb.String()
}

func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

func (b Board) Clone() Board {
	c := make(Board, len(b))
	copy(c, b)
	return c
}

// Count returns the number of spaces holding the player's pieces.
func (b Board) Count(p Player) int {
	n := 0
	for _, v := range b {
		if v == p {
			n++
		}
	}
	return n
}

// Game is a stateless rules engine for one two-player game.
// Any game that aims to be playable by the searcher implements this interface.
type Game interface {
	// Name of the game, as used by the registry
	Name() string
	// MoveCount is the fixed size of the move space
	MoveCount() int
	// NewBoard returns the starting position
	NewBoard() Board
	// ParseBoard reads text in the same layout Display produces.
	// Coordinate labels are ignored. Fails with ErrInvalidFormat.
	ParseBoard(text string) (Board, error)
	// ValidMoves has one entry per move index, true if the move is legal
	ValidMoves(board Board) []bool
	// Play returns a new board with the move applied. Fails with ErrIllegalMove.
	Play(board Board, move int) (Board, error)
	// ActivePlayer decides who plays next. Alternating games can use AlternatingPlayer.
	ActivePlayer(board Board) Player
	IsWin(board Board, player Player) bool
	Display(board Board, showCoordinates bool) string
	// ParseMove converts human move text into a legal move index. Fails with ErrInvalidMove.
	ParseMove(text string, board Board) (int, error)
}

// AlternatingPlayer assumes PlayerA goes first and the players alternate
// turns adding a piece to the board.
func AlternatingPlayer(board Board) Player {
	if board.Count(PlayerA) == board.Count(PlayerB) {
		return PlayerA
	}
	return PlayerB
}

// Winner returns the player that has won, or NoPlayer if neither has.
func Winner(g Game, board Board) Player {
	for _, player := range []Player{PlayerA, PlayerB} {
		if g.IsWin(board, player) {
			return player
		}
	}
	return NoPlayer
}

// IsEnded reports whether there is a winner or no legal move remains.
func IsEnded(g Game, board Board) bool {
	if Winner(g, board) != NoPlayer {
		return true
	}
	for _, valid := range g.ValidMoves(board) {
		if valid {
			return false
		}
	}
	return true
}

// LegalMoves lists the indexes of the valid moves in ascending order.
func LegalMoves(g Game, board Board) []int {
	valid := g.ValidMoves(board)
	moves := make([]int, 0, len(valid))
	for move, ok := range valid {
		if ok {
			moves = append(moves, move)
		}
	}
	return moves
}

// Outcome scores a finished board from the player's perspective:
// 1 for a win, -1 for a loss and 0 for a draw.
func Outcome(g Game, board Board, player Player) float64 {
	switch Winner(g, board) {
	case NoPlayer:
		return 0
	case player:
		return 1
	default:
		return -1
	}
}

func DisplayPlayer(p Player) string {
	if p == PlayerA {
		return "Player X"
	}
	return "Player O"
}
