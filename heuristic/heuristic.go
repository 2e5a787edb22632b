// Package heuristic defines how the searcher evaluates boards it has not
// explored, and the examples a trainable evaluator learns from.
package heuristic

import (
	"github.com/onezer00/zero-play/game"
)

// Heuristic evaluates a board from the perspective of the player to move.
// Priors has one entry per move index; entries for illegal moves are ignored
// by the searcher. Value lies in [-1, 1]: 1 is a certain win for the mover.
type Heuristic interface {
	Evaluate(board game.Board) (priors []float64, value float64, err error)
}

// Trainable is a heuristic with learned parameters.
// Evaluate must be deterministic for fixed parameters.
type Trainable interface {
	Heuristic
	Train(examples []TrainingExample) error
	Save(path string) error
	Load(path string) error
}

// TrainingExample is one self-play decision. Policy is proportional to the
// root visit counts when the move was chosen. Value is the final outcome of the
// game for Player, the player to move at Board.
type TrainingExample struct {
	Board  game.Board
	Player game.Player
	Policy []float64
	Value  float64
	GameID string
	Ply    int
}

// Finalize sets the value of every example from the winner of their game.
// A draw scores 0 for both players.
func Finalize(examples []TrainingExample, winner game.Player) {
	for i := range examples {
		switch winner {
		case game.NoPlayer:
			examples[i].Value = 0
		case examples[i].Player:
			examples[i].Value = 1
		default:
			examples[i].Value = -1
		}
	}
}

// UniformPriors spreads probability evenly over the legal moves.
func UniformPriors(valid []bool) []float64 {
	priors := make([]float64, len(valid))
	count := 0
	for _, ok := range valid {
		if ok {
			count++
		}
	}
	if count == 0 {
		return priors
	}
	for i, ok := range valid {
		if ok {
			priors[i] = 1 / float64(count)
		}
	}
	return priors
}
