package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/onezer00/zero-play/game"
)

// AgentConfig describes one searcher taking part in an experiment.
type AgentConfig struct {
	ID          int
	Heuristic   string
	Checkpoint  string
	Iterations  int
	Exploration float64
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID playing X
	Agent2 int // AgentConfig.ID playing O
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// ThroughputRecord is one self-play run at a fixed number of workers.
type ThroughputRecord struct {
	Workers  int
	Games    int
	Examples int
	Duration time.Duration
}

func (r ThroughputRecord) GamesPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Games) / r.Duration.Seconds()
}

func (r ThroughputRecord) ExamplesPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Examples) / r.Duration.Seconds()
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped directory for one experiment's results.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(name, kind string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", kind, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", kind, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", kind, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "heuristic", "checkpoint", "iterations", "exploration"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Heuristic,
			config.Checkpoint,
			strconv.Itoa(config.Iterations),
			strconv.FormatFloat(config.Exploration, 'g', -1, 64),
		})
	}
	return w.write("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			playerLabel(record.StartingPlayer),
			playerLabel(record.Winner),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.write("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "move", "iterations", "duration", "episodes", "evaluations", "terminal_hits", "is_tree_reset"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			playerLabel(record.Player),
			strconv.Itoa(record.Move),
			strconv.Itoa(record.Iterations),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Evaluations),
			strconv.Itoa(record.TerminalHits),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.write("move_records.csv", "move records", header, rows)
}

func (w *Writer) WriteThroughputRecords(records []ThroughputRecord) error {
	header := []string{"workers", "games", "examples", "duration", "games_per_sec", "examples_per_sec"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Workers),
			strconv.Itoa(record.Games),
			strconv.Itoa(record.Examples),
			record.Duration.String(),
			strconv.FormatFloat(record.GamesPerSecond(), 'f', 3, 64),
			strconv.FormatFloat(record.ExamplesPerSecond(), 'f', 3, 64),
		})
	}
	return w.write("throughput_records.csv", "throughput records", header, rows)
}

// playerLabel is X, O or "draw" for no player.
func playerLabel(p game.Player) string {
	if p == game.NoPlayer {
		return "draw"
	}
	return string(game.PieceChar(p))
}
