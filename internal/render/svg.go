package render

import (
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/park285/cheese-board/internal/board"
)

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// BoardSVG writes the grid as a vector image: squares, last-move and selection
// tints, piece outlines and coordinate labels. HUD panels are PNG-only.
func BoardSVG(w io.Writer, grid board.Grid, opts Options, squareSize int) {
	if squareSize <= 0 {
		squareSize = DefaultSquareSize
	}
	margin := squareSize / 2
	side := squareSize*board.Size + margin*2
	canvas := svg.New(w)
	canvas.Start(side, side)
	canvas.Rect(0, 0, side, side, "fill:"+hexColor(backgroundColor))

	tinted := map[board.Cell]string{}
	if opts.LastMove != nil {
		tinted[board.ToDisplay(opts.LastMove.From, opts.Reversed)] = "fill:#ffe478;fill-opacity:0.55"
		tinted[board.ToDisplay(opts.LastMove.To, opts.Reversed)] = "fill:#ffe478;fill-opacity:0.55"
	}
	if opts.Selected != nil {
		tinted[board.ToDisplay(*opts.Selected, opts.Reversed)] = "fill:#b6b8be;fill-opacity:0.5"
	}

	scale := strconv.FormatFloat(float64(squareSize)/pieceBox, 'f', 4, 64)
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			c := board.Cell{Row: row, Col: col}
			x, y := margin+col*squareSize, margin+row*squareSize
			canvas.Rect(x, y, squareSize, squareSize, "fill:"+hexColor(squareColor(board.FromDisplay(c, opts.Reversed))))
			if style, ok := tinted[c]; ok {
				canvas.Rect(x, y, squareSize, squareSize, style)
			}
			p, ok := board.PieceFromLetter(grid[row][col])
			if !ok {
				continue
			}
			canvas.Group(fmt.Sprintf(`transform="translate(%d,%d) scale(%s)"`, x, y, scale))
			drawPiece(canvas, p)
			canvas.Gend()
		}
	}

	label := fmt.Sprintf("fill:%s;font-family:monospace;font-size:%dpx;text-anchor:middle", hexColor(coordinateTextColor), squareSize/4)
	for i := 0; i < board.Size; i++ {
		rank := board.FromDisplay(board.Cell{Row: i, Col: 0}, opts.Reversed).Rank
		file := board.FromDisplay(board.Cell{Row: board.Size - 1, Col: i}, opts.Reversed).File
		canvas.Text(margin/2, margin+i*squareSize+squareSize/2+squareSize/10, strconv.Itoa(rank+1), label)
		canvas.Text(margin+i*squareSize+squareSize/2, side-margin/3, string(rune('a'+file)), label)
	}
	canvas.End()
}
