package render

import (
	"fmt"

	"github.com/park285/cheese-board/internal/board"
)

var pieceValues = map[board.PieceKind]int{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
}

// MaterialScore is the summed piece value still on the board for each side.
type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int {
	return m.White - m.Black
}

// Material counts the pieces of a display grid.
func Material(grid board.Grid) MaterialScore {
	var m MaterialScore
	for _, row := range grid {
		for _, letter := range row {
			p, ok := board.PieceFromLetter(letter)
			if !ok {
				continue
			}
			switch p.Color {
			case board.White:
				m.White += pieceValues[p.Kind]
			case board.Black:
				m.Black += pieceValues[p.Kind]
			}
		}
	}
	return m
}

func formatMaterialDiff(m MaterialScore) string {
	diff := m.Diff()
	if diff == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", diff)
}
