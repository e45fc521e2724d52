package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/cheese-board/internal/board"
)

// pieceBox is the side of the square viewBox every piece outline is drawn in.
const pieceBox = 45

type outline struct {
	polys   [][]int // flattened x,y pairs
	circles [][3]int
}

var pieceBase = []int{9, 38, 36, 38, 36, 34, 9, 34}

var outlines = map[board.PieceKind]outline{
	board.Pawn: {
		polys:   [][]int{{17, 20, 28, 20, 26, 28, 31, 34, 14, 34, 19, 28}},
		circles: [][3]int{{22, 14, 6}},
	},
	board.Rook: {
		polys: [][]int{{12, 10, 16, 10, 16, 13, 20, 13, 20, 10, 25, 10, 25, 13, 29, 13, 29, 10, 33, 10,
			33, 17, 29, 20, 29, 31, 33, 34, 12, 34, 16, 31, 16, 20, 12, 17}},
	},
	board.Knight: {
		polys:   [][]int{{14, 34, 14, 28, 19, 22, 13, 22, 11, 18, 18, 10, 22, 7, 24, 10, 31, 14, 34, 24, 33, 34}},
		circles: [][3]int{{19, 14, 1}},
	},
	board.Bishop: {
		polys:   [][]int{{22, 10, 29, 18, 27, 26, 30, 34, 15, 34, 18, 26, 16, 18}},
		circles: [][3]int{{22, 7, 3}},
	},
	board.Queen: {
		polys:   [][]int{{9, 14, 15, 24, 16, 12, 20, 23, 22, 10, 25, 23, 29, 12, 30, 24, 36, 14, 32, 34, 13, 34}},
		circles: [][3]int{{9, 13, 2}, {16, 11, 2}, {22, 9, 2}, {29, 11, 2}, {36, 13, 2}},
	},
	board.King: {
		polys: [][]int{
			{21, 4, 24, 4, 24, 8, 27, 8, 27, 11, 24, 11, 24, 14, 21, 14, 21, 11, 18, 11, 18, 8, 21, 8},
			{22, 15, 33, 17, 35, 24, 30, 34, 15, 34, 10, 24, 12, 17},
		},
	},
}

func pieceStyle(c board.Color) string {
	if c == board.White {
		return "fill:#f8f8f8;stroke:#202020;stroke-width:1.5"
	}
	return "fill:#202020;stroke:#f0f0f0;stroke-width:1.5"
}

// drawPiece emits the outline of p in pieceBox coordinates into an open canvas.
func drawPiece(canvas *svg.SVG, p board.Piece) {
	o, ok := outlines[p.Kind]
	if !ok {
		return
	}
	canvas.Gstyle(pieceStyle(p.Color))
	for _, pts := range append([][]int{pieceBase}, o.polys...) {
		xs := make([]int, 0, len(pts)/2)
		ys := make([]int, 0, len(pts)/2)
		for i := 0; i+1 < len(pts); i += 2 {
			xs = append(xs, pts[i])
			ys = append(ys, pts[i+1])
		}
		canvas.Polygon(xs, ys)
	}
	for _, c := range o.circles {
		canvas.Circle(c[0], c[1], c[2])
	}
	canvas.Gend()
}

// PieceSVG writes a standalone SVG document for a single piece.
func PieceSVG(w io.Writer, p board.Piece) error {
	if p.Empty() {
		return fmt.Errorf("render: empty piece")
	}
	canvas := svg.New(w)
	canvas.Startview(pieceBox, pieceBox, 0, 0, pieceBox, pieceBox)
	drawPiece(canvas, p)
	canvas.End()
	return nil
}

type pieceCacheKey struct {
	letter string
	size   int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(p board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{letter: p.Letter(), size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	var buf bytes.Buffer
	if err := PieceSVG(&buf, p); err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(&buf)
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", key.letter, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
