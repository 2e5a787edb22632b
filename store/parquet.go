// Package store persists self-play training examples as parquet files, one
// file per training generation.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/heuristic"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const Schema = "training_example_v1"

// ExampleRow is one training example. Board holds one signed value per space
// (1 for X, -1 for O) and Policy one probability per move index. Value is the
// final outcome for Player, the player to move at Board.
type ExampleRow struct {
	GameID     string    `parquet:"game_id,dict"`
	Game       string    `parquet:"game,dict"`
	Generation int32     `parquet:"generation"`
	Ply        int32     `parquet:"ply"`
	Player     int32     `parquet:"player"`
	Board      []int32   `parquet:"board"`
	Policy     []float32 `parquet:"policy"`
	Value      float32   `parquet:"value"`
}

func toRow(gameName string, generation int, example heuristic.TrainingExample) ExampleRow {
	row := ExampleRow{
		GameID:     example.GameID,
		Game:       gameName,
		Generation: int32(generation),
		Ply:        int32(example.Ply),
		Player:     int32(example.Player),
		Board:      make([]int32, len(example.Board)),
		Policy:     make([]float32, len(example.Policy)),
		Value:      float32(example.Value),
	}
	for i, p := range example.Board {
		row.Board[i] = int32(p)
	}
	for i, p := range example.Policy {
		row.Policy[i] = float32(p)
	}
	return row
}

func fromRow(row ExampleRow) heuristic.TrainingExample {
	example := heuristic.TrainingExample{
		Board:  make(game.Board, len(row.Board)),
		Player: game.Player(row.Player),
		Policy: make([]float64, len(row.Policy)),
		Value:  float64(row.Value),
		GameID: row.GameID,
		Ply:    int(row.Ply),
	}
	for i, p := range row.Board {
		example.Board[i] = game.Player(p)
	}
	for i, p := range row.Policy {
		example.Policy[i] = float64(p)
	}
	return example
}

// WriteExamples writes the examples of one generation. The file is written to
// a temporary path and renamed into place.
func WriteExamples(outPath, gameName string, generation int, examples []heuristic.TrainingExample) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rows := make([]ExampleRow, len(examples))
	for i, example := range examples {
		rows[i] = toRow(gameName, generation, example)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", Schema),
		parquet.KeyValueMetadata("game", gameName),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadExamples loads every example in a file written by WriteExamples.
func ReadExamples(path string) ([]heuristic.TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[ExampleRow](pf)
	defer reader.Close()

	rows := make([]ExampleRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	examples := make([]heuristic.TrainingExample, n)
	for i, row := range rows[:n] {
		examples[i] = fromRow(row)
	}
	return examples, nil
}
