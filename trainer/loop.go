package trainer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/onezer00/zero-play/heuristic"
	"github.com/onezer00/zero-play/store"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const (
	DefaultIterations   = 80
	DefaultTrainingSize = 230

	checkpointPrefix = "checkpoint-"
)

type LoopOption func(l *Loop)

// Loop alternates self-play and training. Every generation leaves a
// checkpoint and its examples in dir, so an interrupted run resumes from the
// newest checkpoint.
type Loop struct {
	manager      *Manager
	trainable    heuristic.Trainable
	dir          string
	iterations   int
	trainingSize int
	replay       int
	rng          *rand.Rand
}

func WithIterations(iterations int) LoopOption {
	return func(l *Loop) {
		if iterations > 0 {
			l.iterations = iterations
		}
	}
}

func WithTrainingSize(size int) LoopOption {
	return func(l *Loop) {
		if size > 0 {
			l.trainingSize = size
		}
	}
}

// WithReplay also trains on the examples of that many previous generations.
func WithReplay(generations int) LoopOption {
	return func(l *Loop) {
		if generations >= 0 {
			l.replay = generations
		}
	}
}

func WithRand(rng *rand.Rand) LoopOption {
	return func(l *Loop) {
		if rng != nil {
			l.rng = rng
		}
	}
}

// NewLoop trains the heuristic that manager plays with.
func NewLoop(manager *Manager, trainable heuristic.Trainable, dir string, options ...LoopOption) *Loop {
	l := &Loop{ // Default values
		manager:      manager,
		trainable:    trainable,
		dir:          dir,
		iterations:   DefaultIterations,
		trainingSize: DefaultTrainingSize,
		rng:          rand.New(rand.NewSource(1)),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *Loop) CheckpointPath(generation int) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s%02d", checkpointPrefix, generation))
}

func (l *Loop) ExamplesPath(generation int) string {
	return filepath.Join(l.dir, fmt.Sprintf("examples-%02d.parquet", generation))
}

// Run trains until the given number of generations exist in dir, or until
// ctx is cancelled when generations is not positive.
func (l *Loop) Run(ctx context.Context, generations int) error {
	start, err := l.resume()
	if err != nil {
		return err
	}

	for generation := start; generations <= 0 || generation < generations; generation++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.runGeneration(ctx, generation); err != nil {
			return fmt.Errorf("generation %d: %w", generation, err)
		}
	}
	return nil
}

// resume loads the newest checkpoint and returns the generation after it.
func (l *Loop) resume() (int, error) {
	latest, err := LatestCheckpoint(l.dir)
	if err != nil {
		return 0, err
	}
	if latest < 0 {
		log.Info().Msgf("starting training in %s", l.dir)
		return 0, nil
	}
	if err := l.trainable.Load(l.CheckpointPath(latest)); err != nil {
		return 0, err
	}
	log.Info().Msgf("resuming training from generation %d in %s", latest, l.dir)
	return latest + 1, nil
}

// LatestCheckpoint returns the newest generation with a checkpoint in dir,
// or -1 when there is none. Generation numbers of any width are accepted.
func LatestCheckpoint(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	latest := -1
	for _, entry := range entries {
		name, ok := strings.CutPrefix(entry.Name(), checkpointPrefix)
		if !ok {
			continue
		}
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if generation, err := strconv.Atoi(name); err == nil && generation > latest {
			latest = generation
		}
	}
	return latest, nil
}

type lossReporter interface {
	Loss(examples []heuristic.TrainingExample) (float64, error)
}

func (l *Loop) runGeneration(ctx context.Context, generation int) error {
	log.Info().Int("generation", generation).Msg("Creating training data")
	examples, err := l.manager.CreateTrainingData(ctx, l.iterations, l.trainingSize)
	if err != nil {
		return err
	}
	if err := store.WriteExamples(l.ExamplesPath(generation), l.manager.Game().Name(), generation, examples); err != nil {
		return err
	}

	training := append([]heuristic.TrainingExample(nil), examples...)
	for previous := generation - 1; previous >= 0 && previous >= generation-l.replay; previous-- {
		replayed, err := store.ReadExamples(l.ExamplesPath(previous))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		training = append(training, replayed...)
	}
	l.rng.Shuffle(len(training), func(i, j int) {
		training[i], training[j] = training[j], training[i]
	})

	if err := l.trainable.Train(training); err != nil {
		return err
	}
	if reporter, ok := l.trainable.(lossReporter); ok {
		if loss, err := reporter.Loss(examples); err == nil {
			log.Info().Int("generation", generation).Float64("loss", loss).Msg("Trained")
		}
	}
	if err := l.trainable.Save(l.CheckpointPath(generation)); err != nil {
		return err
	}
	l.manager.Reset()

	log.Info().
		Int("generation", generation).
		Int("examples", len(examples)).
		Int("trained_on", len(training)).
		Msgf("saved %s", l.CheckpointPath(generation))
	return nil
}
