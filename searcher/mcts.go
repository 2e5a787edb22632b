package searcher

import (
	"math"

	"github.com/onezer00/zero-play/experiments/metrics"
	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/heuristic"

	"github.com/pkg/errors"
)

type Option func(mcts *MCTS)

// MCTS searches one game with a heuristic guiding expansion. The tree is
// kept between searches while the new root is already in it, so consecutive
// decisions of one game reuse earlier statistics. Not safe for concurrent use.
type MCTS struct {
	game        game.Game
	heuristic   heuristic.Heuristic
	iterations  int
	exploration float64
	tree        *arena
	metrics     metrics.Collector
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.exploration = c
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(g game.Game, h heuristic.Heuristic, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		game:      g,
		heuristic: h,
		tree:      newArena(),
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 {
		panic("Must specify search iterations")
	}
	if m.exploration <= 0 {
		panic("Must specify exploration constant")
	}
	return m
}

func (m *MCTS) Game() game.Game {
	return m.game
}

func (m *MCTS) Iterations() int {
	return m.iterations
}

// Size is the number of boards in the tree.
func (m *MCTS) Size() int {
	return m.tree.size()
}

// Reset discards the whole tree.
func (m *MCTS) Reset() {
	m.tree.reset()
}

// Search runs the configured number of simulations from board and returns how
// often each move at the root was visited by this search. Visits left over from
// earlier searches of a reused tree are not counted, so the counts sum to the
// number of iterations.
func (m *MCTS) Search(board game.Board) ([]int, metrics.SearchMetric, error) {
	if game.IsEnded(m.game, board) {
		return nil, metrics.SearchMetric{}, errors.Wrap(game.ErrInvalidState, "cannot search a finished game")
	}

	m.metrics.Start(m.iterations)
	root := m.findRoot(board)

	// Evaluate the root up front so every simulation descends through one of its edges
	if !m.tree.get(root).expanded {
		value, err := m.expand(root)
		if err != nil {
			return nil, metrics.SearchMetric{}, err
		}
		n := m.tree.get(root)
		n.visits++
		n.value += value
	}

	before := make([]int, m.game.MoveCount())
	for _, e := range m.tree.get(root).edges {
		before[e.move] = e.visits
	}

	for i := 0; i < m.iterations; i++ {
		if err := m.simulate(root); err != nil {
			return nil, metrics.SearchMetric{}, err
		}
		m.metrics.AddEpisode()
	}

	visits := make([]int, m.game.MoveCount())
	for _, e := range m.tree.get(root).edges {
		visits[e.move] = e.visits - before[e.move]
	}
	return visits, m.metrics.Complete(), nil
}

func (m *MCTS) findRoot(board game.Board) nodeID {
	if root, ok := m.tree.lookup(board); ok {
		m.metrics.SetTreeReset(false)
		return root
	}
	m.tree.reset()
	m.metrics.SetTreeReset(true)
	return m.tree.add(m.game, board)
}

type step struct {
	parent nodeID
	edge   int
}

func (m *MCTS) simulate(root nodeID) error {
	var path []step
	id := root
	var value float64
	for {
		n := m.tree.get(id)
		if n.terminal {
			m.metrics.AddTerminal()
			value = n.outcome
			break
		}
		if !n.expanded {
			v, err := m.expand(id)
			if err != nil {
				return err
			}
			value = v
			break
		}

		e := m.selectEdge(id)
		path = append(path, step{parent: id, edge: e})
		child, err := m.child(id, e)
		if err != nil {
			return err
		}
		id = child
	}
	m.backup(id, path, value)
	return nil
}

// selectEdge picks the edge with the highest PUCT score. Child values are
// turned to the parent's perspective before scoring.
func (m *MCTS) selectEdge(id nodeID) int {
	n := m.tree.get(id)
	score := newPUCT(m.exploration, n.visits)
	best, bestScore := 0, math.Inf(-1)
	for i, e := range n.edges {
		q := 0.0
		if e.child != nilNode {
			child := m.tree.get(e.child)
			q = child.q()
			if child.player != n.player {
				q = -q
			}
		}
		if s := score.evaluate(q, e.prior, e.visits); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// child follows an edge, creating the child node on the first visit.
func (m *MCTS) child(id nodeID, e int) (nodeID, error) {
	n := m.tree.get(id)
	if child := n.edges[e].child; child != nilNode {
		return child, nil
	}
	board, err := m.game.Play(n.board, n.edges[e].move)
	if err != nil {
		return nilNode, err
	}
	child, ok := m.tree.lookup(board)
	if !ok {
		child = m.tree.add(m.game, board)
	}
	m.tree.get(id).edges[e].child = child
	return child, nil
}

// expand asks the heuristic about a new node and creates its edges. It
// returns the value estimate for the player to move.
func (m *MCTS) expand(id nodeID) (float64, error) {
	board := m.tree.get(id).board
	m.metrics.AddEvaluation()
	priors, value, err := m.heuristic.Evaluate(board)
	if err != nil {
		return 0, errors.WithMessage(err, "heuristic evaluation failed")
	}
	if len(priors) != m.game.MoveCount() {
		return 0, errors.Errorf("heuristic returned %d priors for %d moves", len(priors), m.game.MoveCount())
	}

	moves := game.LegalMoves(m.game, board)
	edges := make([]edge, len(moves))
	total := 0.0
	for i, move := range moves {
		p := priors[move]
		if p < 0 || math.IsNaN(p) {
			p = 0
		}
		edges[i] = edge{move: move, prior: p, child: nilNode}
		total += p
	}
	for i := range edges {
		if total > 0 && !math.IsInf(total, 1) {
			edges[i].prior /= total
		} else {
			edges[i].prior = 1 / float64(len(edges))
		}
	}

	n := m.tree.get(id)
	n.edges = edges
	n.expanded = true
	return clamp(value), nil
}

func clamp(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return math.Max(-1, math.Min(1, value))
}

// backup adds the leaf value to every node on the path, negated for nodes
// whose player to move is the leaf's opponent.
func (m *MCTS) backup(leaf nodeID, path []step, value float64) {
	n := m.tree.get(leaf)
	player := n.player
	n.visits++
	n.value += value
	for i := len(path) - 1; i >= 0; i-- {
		parent := m.tree.get(path[i].parent)
		parent.edges[path[i].edge].visits++
		parent.visits++
		if parent.player == player {
			parent.value += value
		} else {
			parent.value -= value
		}
	}
}
