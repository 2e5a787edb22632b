// Package experiments runs matches between searchers with different
// heuristics and stores the results as CSV.
package experiments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/onezer00/zero-play/engine"
	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/registry"
	"github.com/onezer00/zero-play/searcher"
	"github.com/onezer00/zero-play/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Experiment struct {
	Name     string
	Root     string // Results go to Root/Name/<timestamp>
	Game     game.Game
	Registry *registry.Registry
	Games    int // Per match up
	Workers  int // Games played at once
	Seed     uint64
}

type Results struct {
	Dir         string
	GameRecords []metrics.GameRecord
	MoveRecords []metrics.MoveRecord
}

// Wins counts the games won by an agent, and the drawn games it played.
func (r Results) Wins(agentID int) (wins, draws int) {
	for _, record := range r.GameRecords {
		if record.Agent1 != agentID && record.Agent2 != agentID {
			continue
		}
		switch {
		case record.Winner == game.NoPlayer:
			draws++
		case record.Winner == game.PlayerA && record.Agent1 == agentID,
			record.Winner == game.PlayerB && record.Agent2 == agentID:
			wins++
		}
	}
	return wins, draws
}

// Run plays every match up Games times, swapping who moves first after each
// game, then writes the agent configs, game records and move records.
func (e Experiment) Run(ctx context.Context, configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig) (Results, error) {
	log.Info().Msgf("starting %s experiment...", e.Name)

	type task struct {
		id      int
		matchUp int
		x, o    metrics.AgentConfig
	}
	var tasks []task
	for mi, matchUp := range matchUps {
		for i := 0; i < e.Games; i++ {
			x, o := matchUp[0], matchUp[1]
			if i%2 == 1 {
				x, o = o, x
			}
			tasks = append(tasks, task{id: len(tasks) + 1, matchUp: mi, x: x, o: o})
		}
	}

	gameRecords := make([]metrics.GameRecord, len(tasks))
	moveRecords := make([][]metrics.MoveRecord, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Workers, 1))
	for _, t := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := e.runGame(t.id, t.x, t.o)
			if err != nil {
				return fmt.Errorf("game %d: %w", t.id, err)
			}
			gameRecords[t.id-1] = metrics.GameRecord{
				ID:         t.id,
				Agent1:     t.x.ID,
				Agent2:     t.o.ID,
				GameMetric: result.GameMetric,
			}
			for _, mm := range result.MoveMetrics {
				moveRecords[t.id-1] = append(moveRecords[t.id-1], metrics.MoveRecord{
					Game:       t.id,
					MoveMetric: mm,
				})
			}
			log.Info().Msgf("completed matchup %d of %d game %d with winner: %s",
				t.matchUp+1, len(matchUps), t.id, winnerLabel(result.Winner))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	log.Info().Msgf("completed %s experiment", e.Name)

	results := Results{GameRecords: gameRecords}
	for _, records := range moveRecords {
		results.MoveRecords = append(results.MoveRecords, records...)
	}

	// Store experiment metadata and results
	writer, err := metrics.NewWriter(e.Root, e.Name)
	if err != nil {
		return Results{}, err
	}
	results.Dir = writer.Dir()
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return Results{}, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(results.GameRecords); err != nil {
		return Results{}, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(results.MoveRecords); err != nil {
		return Results{}, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored results in %s", results.Dir)
	return results, nil
}

func winnerLabel(p game.Player) string {
	if p == game.NoPlayer {
		return "draw"
	}
	return game.DisplayPlayer(p)
}

// runGame executes a single game between two agents.
func (e Experiment) runGame(id int, x, o metrics.AgentConfig) (engine.Result, error) {
	agents := [2]agent.Agent{}
	for i, config := range []metrics.AgentConfig{x, o} {
		mcts, err := e.createMCTS(config, id)
		if err != nil {
			return engine.Result{}, err
		}
		agents[i] = agent.NewEvaluationAgent(mcts)
	}
	return engine.Run(e.Game, agents)
}

func (e Experiment) createMCTS(config metrics.AgentConfig, gameID int) (*searcher.MCTS, error) {
	params := map[string]string{
		"seed": strconv.FormatUint(e.Seed+uint64(gameID), 10),
	}
	if config.Checkpoint != "" {
		params["checkpoint"] = config.Checkpoint
	}
	h, err := e.Registry.Heuristic(config.Heuristic, e.Game, params)
	if err != nil {
		return nil, err
	}

	options := []searcher.Option{searcher.WithMetrics()}
	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	exploration := config.Exploration
	if exploration <= 0 {
		exploration = searcher.Exploration
	}
	options = append(options, searcher.WithExploration(exploration))
	return searcher.NewMCTS(e.Game, h, options...), nil
}
