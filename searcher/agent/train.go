package agent

import (
	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/searcher"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Moves are
// sampled from the visit counts sharpened by temperature; a temperature near 0
// plays like the evaluation agent.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, rng *rand.Rand) Agent {
	return &trainingAgent{mcts: mcts, temperature: temperature, rng: rng}
}

func (a *trainingAgent) ChooseMove(board game.Board) (int, metrics.SearchMetric, error) {
	visits, metric, err := a.mcts.Search(board)
	if err != nil {
		return 0, metric, err
	}
	policy := searcher.Policy(visits, a.temperature)
	if a.temperature < searcher.MinTemperature {
		return searcher.Argmax(policy), metric, nil
	}
	move := searcher.Sample(policy, a.rng)
	if move < 0 {
		return 0, metric, errors.Wrap(game.ErrInvalidState, "search visited no moves")
	}
	return move, metric, nil
}
