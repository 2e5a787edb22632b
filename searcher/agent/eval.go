package agent

import (
	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// It always plays the most visited move.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) ChooseMove(board game.Board) (int, metrics.SearchMetric, error) {
	visits, metric, err := a.mcts.Search(board)
	if err != nil {
		return 0, metric, err
	}
	return searcher.Argmax(searcher.Policy(visits, 0)), metric, nil
}
