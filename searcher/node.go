package searcher

import (
	"github.com/onezer00/zero-play/game"
)

// nodeID is a handle into the arena. Children refer to each other by handle,
// so the tree holds no pointers back to its parents.
type nodeID int32

const nilNode nodeID = -1

type edge struct {
	move   int
	prior  float64
	visits int
	child  nodeID // nilNode until the move is first selected
}

type node struct {
	board    game.Board
	player   game.Player // To move at board
	visits   int
	value    float64 // Sum of backed up values from player's perspective
	terminal bool
	outcome  float64 // Exact value for player once terminal
	expanded bool
	edges    []edge // One per legal move, ascending by move
}

// q is the mean value from the perspective of the player to move.
func (n *node) q() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

// arena stores every node of the current tree, indexed by board key so a
// board reached through different move orders shares one node.
type arena struct {
	nodes []node
	index map[string]nodeID
}

func newArena() *arena {
	return &arena{index: make(map[string]nodeID)}
}

func (a *arena) lookup(board game.Board) (nodeID, bool) {
	id, ok := a.index[board.Key()]
	return id, ok
}

// add creates the node for a board and caches whether the game is over.
func (a *arena) add(g game.Game, board game.Board) nodeID {
	player := g.ActivePlayer(board)
	n := node{board: board, player: player}
	if game.IsEnded(g, board) {
		n.terminal = true
		n.outcome = game.Outcome(g, board, player)
	}
	id := nodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	a.index[board.Key()] = id
	return id
}

// get returns the node for a handle. The pointer is only valid until the
// next add.
func (a *arena) get(id nodeID) *node {
	return &a.nodes[id]
}

func (a *arena) size() int {
	return len(a.nodes)
}

func (a *arena) reset() {
	a.nodes = nil
	a.index = make(map[string]nodeID)
}
