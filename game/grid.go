package game

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const displayChars = "O.X"

// PieceChar is the display character for a player: X, O or '.' for an empty space.
func PieceChar(p Player) byte {
	return displayChars[p+1]
}

func parsePiece(c byte) (Player, bool) {
	switch c {
	case 'X', 'x':
		return PlayerA, true
	case 'O', 'o':
		return PlayerB, true
	case '.':
		return NoPlayer, true
	}
	return NoPlayer, false
}

// ColumnLabels returns the coordinate header for a grid: "ABC" for 3 columns.
func ColumnLabels(cols int) string {
	labels := make([]byte, cols)
	for i := range labels {
		labels[i] = byte('A' + i)
	}
	return string(labels)
}

// DisplayGrid renders the first rows*cols spaces of the board, one line per row.
// With coordinates, a column header and row numbers starting at 1 are added.
func DisplayGrid(board Board, rows, cols int, showCoordinates bool) string {
	var sb strings.Builder
	if showCoordinates {
		sb.WriteString("  ")
		sb.WriteString(ColumnLabels(cols))
		sb.WriteByte('\n')
	}
	for r := 0; r < rows; r++ {
		if showCoordinates {
			sb.WriteString(strconv.Itoa(r + 1))
			sb.WriteByte(' ')
		}
		for c := 0; c < cols; c++ {
			sb.WriteByte(PieceChar(board[r*cols+c]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseGrid reads a rows x cols grid of X, O and '.' characters. Blank lines,
// the column header and row number prefixes are ignored.
func ParseGrid(text string, rows, cols int) (Board, error) {
	header := ColumnLabels(cols)
	board := make(Board, 0, rows*cols)
	lineCount := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == header {
			continue
		}
		if label, rest, ok := strings.Cut(line, " "); ok {
			if _, err := strconv.Atoi(label); err != nil {
				return nil, errors.Wrapf(ErrInvalidFormat, "bad row label %q", label)
			}
			line = strings.TrimLeft(rest, " ")
		}
		if len(line) != cols {
			return nil, errors.Wrapf(ErrInvalidFormat, "row %q should have %d spaces", line, cols)
		}
		lineCount++
		if lineCount > rows {
			return nil, errors.Wrapf(ErrInvalidFormat, "more than %d rows", rows)
		}
		for i := 0; i < len(line); i++ {
			piece, ok := parsePiece(line[i])
			if !ok {
				return nil, errors.Wrapf(ErrInvalidFormat, "unexpected character %q", line[i])
			}
			board = append(board, piece)
		}
	}
	if lineCount != rows {
		return nil, errors.Wrapf(ErrInvalidFormat, "found %d rows, expected %d", lineCount, rows)
	}
	return board, nil
}

// ParseCell reads a coordinate like "B3" (column letter, row number from 1)
// and returns zero-based row and column.
func ParseCell(text string, rows, cols int) (row, col int, ok bool) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if len(text) < 2 {
		return 0, 0, false
	}
	col = int(text[0] - 'A')
	number, err := strconv.Atoi(text[1:])
	if err != nil {
		return 0, 0, false
	}
	row = number - 1
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return 0, 0, false
	}
	return row, col, true
}
