package engine

import (
	"time"

	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/searcher/agent"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Engine struct {
	Game     game.Game
	Board    game.Board
	Agents   [2]agent.Agent // Playing X and O
	MaxMoves int
}

func LocalEngine(g game.Game, agents [2]agent.Agent) *Engine {
	if agents[0] == nil || agents[1] == nil {
		panic("need two agents")
	}
	return &Engine{
		Game:     g,
		Board:    g.NewBoard(),
		Agents:   agents,
		MaxMoves: MaxMoves,
	}
}

func agentIndex(p game.Player) int {
	if p == game.PlayerA {
		return 0
	}
	return 1
}

// Run executes the entire game loop until the game ends or MaxMoves is reached.
func (e *Engine) Run() (Result, error) {
	result := Result{
		GameMetric: metrics.GameMetric{
			StartingPlayer: e.Game.ActivePlayer(e.Board),
			StartTime:      time.Now(),
		},
	}

	log.Debug().Msgf("%s is starting", game.DisplayPlayer(result.GameMetric.StartingPlayer))

	for step := 1; !game.IsEnded(e.Game, e.Board); step++ {
		if step > e.MaxMoves {
			log.Warn().Msgf("stopped after %d moves without a result", e.MaxMoves)
			break
		}

		player := e.Game.ActivePlayer(e.Board)
		move, metric, err := e.Agents[agentIndex(player)].ChooseMove(e.Board)
		if err != nil {
			return result, errors.WithMessagef(err, "%s failed to choose move %d", game.DisplayPlayer(player), step)
		}
		next, err := e.Game.Play(e.Board, move)
		if err != nil {
			return result, errors.WithMessagef(err, "%s chose move %d", game.DisplayPlayer(player), step)
		}

		result.Moves = append(result.Moves, move)
		result.MoveMetrics = append(result.MoveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         move,
			SearchMetric: metric,
		})
		e.Board = next
	}

	result.Winner = game.Winner(e.Game, e.Board)
	result.GameMetric.Winner = result.Winner
	result.GameMetric.EndTime = time.Now()
	result.GameMetric.Duration = result.GameMetric.EndTime.Sub(result.GameMetric.StartTime)
	result.GameMetric.TotalMoves = len(result.Moves)
	return result, nil
}
