package heuristic

import (
	"sync"

	"github.com/onezer00/zero-play/game"

	"golang.org/x/exp/rand"
)

type PlayoutOption func(p *Playout)

// Playout estimates a board's value by random play to the end of the game.
// It is safe for concurrent use.
type Playout struct {
	game     game.Game
	rollouts int
	mu       sync.Mutex
	rng      *rand.Rand
}

func WithRollouts(rollouts int) PlayoutOption {
	return func(p *Playout) {
		if rollouts > 0 {
			p.rollouts = rollouts
		}
	}
}

func WithRand(rng *rand.Rand) PlayoutOption {
	return func(p *Playout) {
		if rng != nil {
			p.rng = rng
		}
	}
}

func NewPlayout(g game.Game, options ...PlayoutOption) *Playout {
	p := &Playout{ // Default values
		game:     g,
		rollouts: 1,
		rng:      rand.New(rand.NewSource(1)),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Evaluate returns uniform priors over the legal moves and the mean outcome
// of the rollouts for the player to move. Finished boards score exactly.
func (p *Playout) Evaluate(board game.Board) ([]float64, float64, error) {
	player := p.game.ActivePlayer(board)
	priors := UniformPriors(p.game.ValidMoves(board))
	if game.IsEnded(p.game, board) {
		return priors, game.Outcome(p.game, board, player), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0.0
	for i := 0; i < p.rollouts; i++ {
		winner, err := p.rollout(board)
		if err != nil {
			return nil, 0, err
		}
		switch winner {
		case game.NoPlayer:
		case player:
			total++
		default:
			total--
		}
	}
	return priors, total / float64(p.rollouts), nil
}

func (p *Playout) rollout(board game.Board) (game.Player, error) {
	moves := game.LegalMoves(p.game, board)
	for len(moves) > 0 {
		// Follow a uniform random rollout policy
		next, err := p.game.Play(board, moves[p.rng.Intn(len(moves))])
		if err != nil {
			return game.NoPlayer, err
		}
		board = next
		moves = game.LegalMoves(p.game, board)
	}
	return game.Winner(p.game, board), nil
}
