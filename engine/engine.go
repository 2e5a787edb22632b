// Package engine plays complete games between two agents.
package engine

import (
	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/searcher/agent"
)

const MaxMoves = 10000

type Result struct {
	Winner      game.Player
	Moves       []int
	GameMetric  metrics.GameMetric
	MoveMetrics []metrics.MoveMetric
}

// Run plays one game from the starting board. The first agent plays X.
func Run(g game.Game, agents [2]agent.Agent) (Result, error) {
	return LocalEngine(g, agents).Run()
}
