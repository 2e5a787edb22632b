// Package trainer produces training examples by self-play and runs the
// generation loop that turns them into better heuristics.
package trainer

import (
	"context"

	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/heuristic"
	"github.com/onezer00/zero-play/searcher"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type ManagerOption func(m *Manager)

// Manager plays self-play games where both sides search with the same
// heuristic. Each worker owns its searcher, so no tree is shared between
// goroutines.
type Manager struct {
	game        game.Game
	heuristic   heuristic.Heuristic
	exploration float64
	temperature float64
	workers     int
	seed        uint64
	searchers   []*searcher.MCTS
	rngs        []*rand.Rand
}

func WithExploration(c float64) ManagerOption {
	return func(m *Manager) {
		if c > 0 {
			m.exploration = c
		}
	}
}

// WithTemperature sets how self-play moves are sampled from visit counts.
// Zero always plays the most visited move.
func WithTemperature(temperature float64) ManagerOption {
	return func(m *Manager) {
		if temperature >= 0 {
			m.temperature = temperature
		}
	}
}

func WithWorkers(workers int) ManagerOption {
	return func(m *Manager) {
		if workers > 0 {
			m.workers = workers
		}
	}
}

func WithSeed(seed uint64) ManagerOption {
	return func(m *Manager) {
		m.seed = seed
	}
}

func NewManager(g game.Game, h heuristic.Heuristic, options ...ManagerOption) *Manager {
	m := &Manager{ // Default values
		game:        g,
		heuristic:   h,
		exploration: searcher.Exploration,
		temperature: 1,
		workers:     1,
		seed:        1,
	}
	for _, option := range options {
		option(m)
	}
	m.searchers = make([]*searcher.MCTS, m.workers)
	m.rngs = make([]*rand.Rand, m.workers)
	for i := range m.rngs {
		m.rngs[i] = rand.New(rand.NewSource(m.seed + uint64(i)))
	}
	return m
}

func (m *Manager) Game() game.Game {
	return m.game
}

// CreateTrainingData plays rounds of self-play games, one per worker, until at
// least minSize examples exist. A failed game fails the whole call.
func (m *Manager) CreateTrainingData(ctx context.Context, iterations, minSize int) ([]heuristic.TrainingExample, error) {
	if iterations <= 0 {
		return nil, errors.Errorf("iterations must be positive, got %d", iterations)
	}
	for i, s := range m.searchers {
		if s == nil || s.Iterations() != iterations {
			m.searchers[i] = searcher.NewMCTS(m.game, m.heuristic,
				searcher.WithIterations(iterations), searcher.WithExploration(m.exploration))
		}
	}

	var examples []heuristic.TrainingExample
	games := 0
	for len(examples) < minSize {
		results := make([][]heuristic.TrainingExample, m.workers)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < m.workers; i++ {
			worker := i
			g.Go(func() error {
				played, err := m.playGame(gctx, worker)
				results[worker] = played
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, played := range results {
			examples = append(examples, played...)
		}
		games += m.workers
		log.Debug().Int("games", games).Int("examples", len(examples)).Msg("Self-play round complete")
	}
	return examples, nil
}

// playGame plays one game from the starting board and returns one example per
// decision, valued by the final result.
func (m *Manager) playGame(ctx context.Context, worker int) ([]heuristic.TrainingExample, error) {
	mcts := m.searchers[worker]
	rng := m.rngs[worker]
	mcts.Reset()

	gameID := uuid.NewString()
	board := m.game.NewBoard()
	var examples []heuristic.TrainingExample
	for ply := 0; !game.IsEnded(m.game, board); ply++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		visits, _, err := mcts.Search(board)
		if err != nil {
			return nil, errors.WithMessagef(err, "game %s ply %d", gameID, ply)
		}
		examples = append(examples, heuristic.TrainingExample{
			Board:  board,
			Player: m.game.ActivePlayer(board),
			Policy: searcher.Policy(visits, 1),
			GameID: gameID,
			Ply:    ply,
		})

		policy := searcher.Policy(visits, m.temperature)
		move := searcher.Argmax(policy)
		if m.temperature >= searcher.MinTemperature {
			move = searcher.Sample(policy, rng)
		}
		board, err = m.game.Play(board, move)
		if err != nil {
			return nil, errors.WithMessagef(err, "game %s ply %d", gameID, ply)
		}
	}

	heuristic.Finalize(examples, game.Winner(m.game, board))
	return examples, nil
}

// Reset discards every worker's search tree. Heuristic parameters are untouched.
func (m *Manager) Reset() {
	for _, s := range m.searchers {
		if s != nil {
			s.Reset()
		}
	}
}
