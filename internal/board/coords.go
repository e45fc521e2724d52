package board

// Cell is a display position: Row 0 is the top row, Col 0 the leftmost column.
type Cell struct {
	Row int
	Col int
}

// Valid reports whether the cell lies inside the 8x8 grid.
func (c Cell) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// ToDisplay maps a board square to the cell it is drawn in. Unreversed boards
// put rank 1 on the bottom row with white at the bottom; a reversed board
// mirrors both axes.
func ToDisplay(sq Square, reversed bool) Cell {
	if reversed {
		return Cell{Row: sq.Rank, Col: Size - 1 - sq.File}
	}
	return Cell{Row: Size - 1 - sq.Rank, Col: sq.File}
}

// FromDisplay is the inverse of ToDisplay for the same reversed flag.
func FromDisplay(c Cell, reversed bool) Square {
	if reversed {
		return Square{File: Size - 1 - c.Col, Rank: c.Row}
	}
	return Square{File: c.Col, Rank: Size - 1 - c.Row}
}
