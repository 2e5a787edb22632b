package main

import (
	"context"
	"flag"
	"os"

	"github.com/onezer00/zero-play/experiments"
	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/registry"
	"github.com/onezer00/zero-play/trainer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	gameName := flag.String("game", "tictactoe", "Game to play")
	games := flag.Int("games", 10, "Games per match up, sides swap every game")
	iterations := flag.Int("iterations", 200, "Search iterations per move")
	checkpoint := flag.String("checkpoint", "", "Network checkpoint to play against random playouts")
	out := flag.String("out", "results", "Directory for experiment results")
	workers := flag.Int("workers", 1, "Games played at once")
	throughput := flag.Bool("throughput", false, "Measure self-play throughput for 1, 2, 4 and 8 workers instead of playing a tournament")
	debug := flag.Bool("debug", false, "Log every move")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	r := registry.New()
	g, err := r.Game(*gameName)
	if err != nil {
		log.Fatal().Err(err).Msgf("choose one of %v", r.GameNames())
	}

	if *throughput {
		h, err := r.Heuristic("playout", g, map[string]string{"seed": "1"})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create heuristic")
		}
		e := experiments.ThroughputExperiment{
			Name:       g.Name() + "-throughput",
			Root:       *out,
			Game:       g,
			Heuristic:  h,
			Iterations: *iterations,
			MinSize:    trainer.DefaultTrainingSize,
			Workers:    experiments.DefaultThroughputWorkers,
			Seed:       1,
		}
		if _, err := e.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("experiment failed")
		}
		return
	}

	baseline := metrics.AgentConfig{ID: 1, Heuristic: "playout", Iterations: *iterations}
	challenger := metrics.AgentConfig{ID: 2, Heuristic: "playout", Iterations: *iterations}
	name := g.Name() + "-playout"
	if *checkpoint != "" {
		challenger.Heuristic = "network"
		challenger.Checkpoint = *checkpoint
		name = g.Name() + "-network"
	}

	e := experiments.Experiment{
		Name:     name,
		Root:     *out,
		Game:     g,
		Registry: r,
		Games:    *games,
		Workers:  *workers,
		Seed:     1,
	}
	results, err := e.Run(context.Background(),
		[]metrics.AgentConfig{baseline, challenger},
		[][2]metrics.AgentConfig{{baseline, challenger}})
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}

	for _, config := range []metrics.AgentConfig{baseline, challenger} {
		wins, draws := results.Wins(config.ID)
		log.Info().
			Int("agent", config.ID).
			Str("heuristic", config.Heuristic).
			Int("wins", wins).
			Int("draws", draws).
			Int("losses", len(results.GameRecords)-wins-draws).
			Msg("result")
	}
}
