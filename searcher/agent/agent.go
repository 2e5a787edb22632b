package agent

import (
	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
)

type Agent interface {
	// ChooseMove returns a legal move and performance metrics (if collected) from the search.
	// Fails with game.ErrInvalidState when the board is already finished.
	ChooseMove(board game.Board) (int, metrics.SearchMetric, error)
}
