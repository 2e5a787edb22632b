package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/heuristic"
	"github.com/onezer00/zero-play/trainer"

	"github.com/rs/zerolog/log"
)

// DefaultThroughputWorkers is the worker sweep used when none is given.
var DefaultThroughputWorkers = []int{1, 2, 4, 8}

// ThroughputExperiment measures how self-play data generation scales with
// the number of parallel games.
type ThroughputExperiment struct {
	Name       string
	Root       string // Results go to Root/Name/<timestamp>
	Game       game.Game
	Heuristic  heuristic.Heuristic // Shared by every worker
	Iterations int                 // Search iterations per move
	MinSize    int                 // Examples to create per worker count
	Workers    []int
	Seed       uint64
}

type ThroughputResults struct {
	Dir     string
	Records []metrics.ThroughputRecord
}

// Run times CreateTrainingData once per worker count and writes the results.
func (e ThroughputExperiment) Run(ctx context.Context) (ThroughputResults, error) {
	workers := e.Workers
	if len(workers) == 0 {
		workers = DefaultThroughputWorkers
	}
	log.Info().Msgf("starting %s throughput experiment...", e.Name)

	records := make([]metrics.ThroughputRecord, 0, len(workers))
	for _, w := range workers {
		manager := trainer.NewManager(e.Game, e.Heuristic,
			trainer.WithWorkers(w),
			trainer.WithSeed(e.Seed),
		)

		start := time.Now()
		examples, err := manager.CreateTrainingData(ctx, e.Iterations, e.MinSize)
		if err != nil {
			return ThroughputResults{}, fmt.Errorf("workers=%d: %w", w, err)
		}
		record := metrics.ThroughputRecord{
			Workers:  w,
			Games:    countGames(examples),
			Examples: len(examples),
			Duration: time.Since(start),
		}
		records = append(records, record)

		log.Info().
			Int("workers", w).
			Int("games", record.Games).
			Int("examples", record.Examples).
			Float64("games_per_sec", record.GamesPerSecond()).
			Float64("examples_per_sec", record.ExamplesPerSecond()).
			Msg("completed self-play run")
	}

	writer, err := metrics.NewWriter(e.Root, e.Name)
	if err != nil {
		return ThroughputResults{}, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteThroughputRecords(records); err != nil {
		return ThroughputResults{}, fmt.Errorf("failed to write throughput records: %w", err)
	}
	log.Info().Msgf("stored throughput records in %s", writer.Dir())

	return ThroughputResults{Dir: writer.Dir(), Records: records}, nil
}

func countGames(examples []heuristic.TrainingExample) int {
	ids := make(map[string]struct{})
	for _, example := range examples {
		ids[example.GameID] = struct{}{}
	}
	return len(ids)
}
