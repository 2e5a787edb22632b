// Package registry maps names to game and heuristic constructors, so binaries
// can select them from flags and configuration files.
package registry

import (
	"maps"
	"slices"
	"strconv"

	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/game/connect4"
	"github.com/onezer00/zero-play/game/othello"
	"github.com/onezer00/zero-play/game/tictactoe"
	"github.com/onezer00/zero-play/heuristic"
	"github.com/onezer00/zero-play/heuristic/network"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

var (
	ErrUnknownGame      = errors.New("unknown game")
	ErrUnknownHeuristic = errors.New("unknown heuristic")
)

type GameFactory func() game.Game

// HeuristicFactory builds a heuristic for a game. Params are optional
// name=value settings such as "seed" or "checkpoint".
type HeuristicFactory func(g game.Game, params map[string]string) (heuristic.Heuristic, error)

type Registry struct {
	games      map[string]GameFactory
	heuristics map[string]HeuristicFactory
}

// New returns a registry with every built-in game and heuristic.
func New() *Registry {
	r := &Registry{
		games:      make(map[string]GameFactory),
		heuristics: make(map[string]HeuristicFactory),
	}
	r.RegisterGame("tictactoe", func() game.Game { return tictactoe.New() })
	r.RegisterGame("connect4", func() game.Game { return connect4.New() })
	r.RegisterGame("othello", func() game.Game { return othello.New() })
	r.RegisterHeuristic("playout", newPlayout)
	r.RegisterHeuristic("network", newNetwork)
	return r
}

func (r *Registry) RegisterGame(name string, factory GameFactory) {
	r.games[name] = factory
}

func (r *Registry) RegisterHeuristic(name string, factory HeuristicFactory) {
	r.heuristics[name] = factory
}

func (r *Registry) Game(name string) (game.Game, error) {
	factory, ok := r.games[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownGame, "%q", name)
	}
	return factory(), nil
}

func (r *Registry) Heuristic(name string, g game.Game, params map[string]string) (heuristic.Heuristic, error) {
	factory, ok := r.heuristics[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHeuristic, "%q", name)
	}
	return factory(g, params)
}

func (r *Registry) GameNames() []string {
	return slices.Sorted(maps.Keys(r.games))
}

func (r *Registry) HeuristicNames() []string {
	return slices.Sorted(maps.Keys(r.heuristics))
}

func intParam(params map[string]string, key string) (int, bool, error) {
	text, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parameter %s", key)
	}
	return value, true, nil
}

func floatParam(params map[string]string, key string) (float64, bool, error) {
	text, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parameter %s", key)
	}
	return value, true, nil
}

func newPlayout(g game.Game, params map[string]string) (heuristic.Heuristic, error) {
	options := []heuristic.PlayoutOption{}
	if rollouts, ok, err := intParam(params, "rollouts"); err != nil {
		return nil, err
	} else if ok {
		options = append(options, heuristic.WithRollouts(rollouts))
	}
	if seed, ok, err := intParam(params, "seed"); err != nil {
		return nil, err
	} else if ok {
		options = append(options, heuristic.WithRand(rand.New(rand.NewSource(uint64(seed)))))
	}
	return heuristic.NewPlayout(g, options...), nil
}

// newNetwork builds a network and loads params["checkpoint"] when given.
func newNetwork(g game.Game, params map[string]string) (heuristic.Heuristic, error) {
	options := []network.Option{}
	if hidden, ok, err := intParam(params, "hidden"); err != nil {
		return nil, err
	} else if ok {
		options = append(options, network.WithHidden(hidden))
	}
	if epochs, ok, err := intParam(params, "epochs"); err != nil {
		return nil, err
	} else if ok {
		options = append(options, network.WithEpochs(epochs))
	}
	if seed, ok, err := intParam(params, "seed"); err != nil {
		return nil, err
	} else if ok {
		options = append(options, network.WithSeed(uint64(seed)))
	}
	if rate, ok, err := floatParam(params, "learning_rate"); err != nil {
		return nil, err
	} else if ok {
		options = append(options, network.WithLearningRate(rate))
	}

	n, err := network.New(g, options...)
	if err != nil {
		return nil, err
	}
	if path := params["checkpoint"]; path != "" {
		if err := n.Load(path); err != nil {
			return nil, err
		}
	}
	return n, nil
}
