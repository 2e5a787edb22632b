package metrics

import (
	"sync/atomic"
	"time"

	"github.com/onezer00/zero-play/game"
)

type SearchMetric struct {
	Iterations   int
	Duration     time.Duration
	Episodes     int
	Evaluations  int // Heuristic calls
	TerminalHits int // Simulations that ended on a finished board
	IsTreeReset  bool
}

type MoveMetric struct {
	Step   int
	Player game.Player
	Move   int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Player
	Winner         game.Player
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(iterations int)
	SetTreeReset(value bool)
	AddEpisode()
	AddEvaluation()
	AddTerminal()
	Complete() SearchMetric
}

type collector struct {
	iterations   int
	startTime    time.Time
	episodes     atomic.Int32
	evaluations  atomic.Int32
	terminalHits atomic.Int32
	isTreeReset  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

// Start begins a new search, clearing the counts of the previous one.
func (m *collector) Start(iterations int) {
	m.startTime = time.Now()
	m.iterations = iterations
	m.episodes.Store(0)
	m.evaluations.Store(0)
	m.terminalHits.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) AddTerminal() {
	m.terminalHits.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Iterations:   m.iterations,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		Evaluations:  int(m.evaluations.Load()),
		TerminalHits: int(m.terminalHits.Load()),
		IsTreeReset:  m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(iterations int)    {}
func (m *dummyCollector) SetTreeReset(value bool) {}
func (m *dummyCollector) AddEpisode()             {}
func (m *dummyCollector) AddEvaluation()          {}
func (m *dummyCollector) AddTerminal()            {}
func (m *dummyCollector) Complete() SearchMetric  { return SearchMetric{} }
