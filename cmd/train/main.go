// Command train runs self-play training, writing a checkpoint and the
// generation's examples after every generation.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/onezer00/zero-play/config"
	"github.com/onezer00/zero-play/heuristic/network"
	"github.com/onezer00/zero-play/registry"
	"github.com/onezer00/zero-play/trainer"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	configPath := flag.String("config", "", "Config file (yaml, json or toml)")
	gameName := flag.String("game", "", "Game to train on")
	iterations := flag.Int("mcts_iterations", 0, "Search iterations per move")
	trainingSize := flag.Int("training_size", 0, "Minimum examples per generation")
	generations := flag.Int("generations", 0, "Stop once this many generations exist, 0 runs until interrupted")
	dir := flag.String("dir", "", "Checkpoint directory, defaults to data/<game>-nn")
	workers := flag.Int("workers", 0, "Self-play games played at once")
	logLevel := flag.String("log_level", "", "Log level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Flags given on the command line take priority over the config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "game":
			cfg.Game = *gameName
		case "mcts_iterations":
			cfg.MCTSIterations = *iterations
		case "training_size":
			cfg.TrainingSize = *trainingSize
		case "generations":
			cfg.Generations = *generations
		case "dir":
			cfg.Dir = *dir
		case "workers":
			cfg.Workers = *workers
		case "log_level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	g, err := registry.New().Game(cfg.Game)
	if err != nil {
		log.Fatal().Err(err).Msgf("choose one of %v", registry.New().GameNames())
	}

	net, err := network.New(g,
		network.WithHidden(cfg.Hidden),
		network.WithLearningRate(cfg.LearningRate),
		network.WithEpochs(cfg.Epochs),
		network.WithSeed(cfg.Seed),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create network")
	}
	manager := trainer.NewManager(g, net,
		trainer.WithExploration(cfg.Exploration),
		trainer.WithTemperature(cfg.Temperature),
		trainer.WithWorkers(cfg.Workers),
		trainer.WithSeed(cfg.Seed),
	)
	loop := trainer.NewLoop(manager, net, cfg.CheckpointDir(),
		trainer.WithIterations(cfg.MCTSIterations),
		trainer.WithTrainingSize(cfg.TrainingSize),
		trainer.WithReplay(cfg.Replay),
		trainer.WithRand(rand.New(rand.NewSource(cfg.Seed))),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("game", cfg.Game).
		Int("mcts_iterations", cfg.MCTSIterations).
		Int("training_size", cfg.TrainingSize).
		Int("workers", cfg.Workers).
		Msgf("training in %s", cfg.CheckpointDir())
	err = loop.Run(ctx, cfg.Generations)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("training interrupted, resume by running again")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	log.Info().Msg("training complete")
}
