// Package render draws board snapshots: per-piece outlines are emitted as SVG
// with svgo, rasterized with oksvg, and composited with HUD panels and
// coordinate labels into a PNG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-board/internal/board"
)

// Options controls what is drawn on top of the bare grid. Reversed must match
// the orientation the grid was produced with.
type Options struct {
	Reversed bool
	LastMove *board.Move
	Selected *board.Square
	Targets  []board.Square
	Title    string
	Turn     string
}

const (
	DefaultSquareSize = 72

	sideMargin    = 36
	topMargin     = 96
	bottomMargin  = 36
	hudTop        = 14
	titleHeight   = 32
	turnHeight    = 26
	hudGap        = 10
	panelRadius   = 10
	panelPaddingX = 18
	titleMinWidth = 220
	scoreMinWidth = 72
	turnMinWidth  = 140
)

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	selectedFill        = color.NRGBA{R: 182, G: 184, B: 190, A: 130}
	targetDot           = color.NRGBA{R: 40, G: 40, B: 40, A: 90}
	whiteMoveFill       = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow      = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveArrow    = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	backgroundColor     = color.RGBA{22, 24, 34, 255}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor      = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// Renderer is safe for concurrent use; rasterized pieces are cached per size.
type Renderer struct {
	squareSize int
	face       font.Face
}

func New(squareSize int) *Renderer {
	if squareSize <= 0 {
		squareSize = DefaultSquareSize
	}
	return &Renderer{squareSize: squareSize, face: basicfont.Face7x13}
}

// Size returns the pixel dimensions of every image the renderer produces.
func (r *Renderer) Size() image.Point {
	boardSize := r.squareSize * board.Size
	return image.Pt(boardSize+sideMargin*2, boardSize+topMargin+bottomMargin)
}

func (r *Renderer) RenderPNG(ctx context.Context, grid board.Grid, opts Options) ([]byte, error) {
	img, err := r.Render(ctx, grid, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws the frame without encoding it.
func (r *Renderer) Render(ctx context.Context, grid board.Grid, opts Options) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := r.Size()
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	origin := image.Pt(sideMargin, topMargin)
	boardRect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(r.squareSize*board.Size, r.squareSize*board.Size))}

	r.drawHUD(img, grid, opts, boardRect)
	r.drawSquares(img, opts.Reversed, origin)
	if opts.Selected != nil {
		fillRect(img, r.cellRect(board.ToDisplay(*opts.Selected, opts.Reversed), origin), selectedFill)
	}
	if err := r.drawPieces(ctx, img, grid, origin); err != nil {
		return nil, err
	}
	r.drawLastMove(img, grid, opts, origin)
	for _, sq := range opts.Targets {
		rect := r.cellRect(board.ToDisplay(sq, opts.Reversed), origin)
		center := rect.Min.Add(image.Pt(r.squareSize/2, r.squareSize/2))
		fillDisc(img, center, r.squareSize/7, targetDot)
	}
	r.drawCoordinates(img, opts.Reversed, origin)
	return img, nil
}

func (r *Renderer) cellRect(c board.Cell, origin image.Point) image.Rectangle {
	x := origin.X + c.Col*r.squareSize
	y := origin.Y + c.Row*r.squareSize
	return image.Rect(x, y, x+r.squareSize, y+r.squareSize)
}

func (r *Renderer) drawSquares(img *image.RGBA, reversed bool, origin image.Point) {
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			c := board.Cell{Row: row, Col: col}
			draw.Draw(img, r.cellRect(c, origin), image.NewUniform(squareColor(board.FromDisplay(c, reversed))), image.Point{}, draw.Src)
		}
	}
}

func (r *Renderer) drawPieces(ctx context.Context, img *image.RGBA, grid board.Grid, origin image.Point) error {
	for row := range grid {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col, letter := range grid[row] {
			p, ok := board.PieceFromLetter(letter)
			if !ok {
				continue
			}
			glyph, err := renderPieceImage(p, r.squareSize)
			if err != nil {
				return err
			}
			draw.Draw(img, r.cellRect(board.Cell{Row: row, Col: col}, origin), glyph, image.Point{}, draw.Over)
		}
	}
	return nil
}

// drawLastMove marks a white move with two tinted squares and a black move
// with an arrow, judged by the piece now standing on the destination.
func (r *Renderer) drawLastMove(img *image.RGBA, grid board.Grid, opts Options, origin image.Point) {
	if opts.LastMove == nil {
		return
	}
	from := board.ToDisplay(opts.LastMove.From, opts.Reversed)
	to := board.ToDisplay(opts.LastMove.To, opts.Reversed)
	if !from.Valid() || !to.Valid() {
		return
	}
	mover, _ := board.PieceFromLetter(grid[to.Row][to.Col])
	switch mover.Color {
	case board.White:
		fillRect(img, r.cellRect(from, origin), whiteMoveFill)
		fillRect(img, r.cellRect(to, origin), whiteMoveFill)
	case board.Black:
		r.drawArrow(img, from, to, origin, blackMoveArrow)
	default:
		r.drawArrow(img, from, to, origin, neutralMoveArrow)
	}
}

func (r *Renderer) drawArrow(img *image.RGBA, from, to board.Cell, origin image.Point, clr color.Color) {
	if from == to {
		return
	}
	half := float64(r.squareSize) / 2
	fr, tr := r.cellRect(from, origin), r.cellRect(to, origin)
	sx, sy := float64(fr.Min.X)+half, float64(fr.Min.Y)+half
	ex, ey := float64(tr.Min.X)+half, float64(tr.Min.Y)+half

	dx, dy := ex-sx, ey-sy
	length := math.Hypot(dx, dy)
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	sq := float64(r.squareSize)
	shaft := length - sq*0.45
	if shaft < sq*0.35 {
		shaft = length * 0.6
	}
	w := sq * 0.18
	head := sq * 0.16
	bx, by := sx+dirX*shaft, sy+dirY*shaft

	a := pointF{sx - perpX*w/2, sy - perpY*w/2}
	b := pointF{sx + perpX*w/2, sy + perpY*w/2}
	c := pointF{bx + perpX*w/2, by + perpY*w/2}
	d := pointF{bx - perpX*w/2, by - perpY*w/2}
	hl := pointF{bx - perpX*head, by - perpY*head}
	hr := pointF{bx + perpX*head, by + perpY*head}
	tip := pointF{ex, ey}

	bounds := image.Rect(
		int(math.Floor(min(sx, ex)-sq)), int(math.Floor(min(sy, ey)-sq)),
		int(math.Ceil(max(sx, ex)+sq)), int(math.Ceil(max(sy, ey)+sq)),
	)
	fillShape(img, bounds, clr, func(x, y float64) bool {
		p := pointF{x, y}
		return inTriangle(p, a, b, c) || inTriangle(p, a, c, d) || inTriangle(p, tip, hl, hr)
	})
}

func (r *Renderer) drawHUD(img *image.RGBA, grid board.Grid, opts Options, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Cheese Board"
	}
	turn := strings.TrimSpace(opts.Turn)
	score := formatMaterialDiff(Material(grid))

	scoreWidth := max(drawer.MeasureString(score).Round()+panelPaddingX*2, scoreMinWidth)
	titleWidth := max(drawer.MeasureString(title).Round()+panelPaddingX*2, titleMinWidth)
	titleWidth = min(titleWidth, boardRect.Dx()-scoreWidth-hudGap)

	titleRect := image.Rect(boardRect.Min.X, hudTop, boardRect.Min.X+titleWidth, hudTop+titleHeight)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, hudTop, boardRect.Max.X, hudTop+titleHeight)

	shadow := image.Pt(0, 4)
	fillRoundedRect(img, titleRect.Add(shadow), panelRadius, hudShadowColor)
	fillRoundedRect(img, scoreRect.Add(shadow), panelRadius, hudShadowColor)
	fillRoundedRect(img, titleRect, panelRadius, hudPanelColor)
	fillRoundedRect(img, scoreRect, panelRadius, hudPanelColor)
	drawCenteredString(drawer, titleRect, truncateWithEllipsis(r.face, title, titleRect.Dx()-panelPaddingX*2), hudTextPrimary)
	drawCenteredString(drawer, scoreRect, score, hudTextPrimary)

	if turn == "" {
		return
	}
	turnWidth := max(drawer.MeasureString(turn).Round()+panelPaddingX*2, turnMinWidth)
	turnWidth = min(turnWidth, boardRect.Dx()-40)
	top := titleRect.Max.Y + hudGap
	left := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(left, top, left+turnWidth, top+turnHeight)
	fillRoundedRect(img, turnRect.Add(shadow), panelRadius, hudShadowColor)
	fillRoundedRect(img, turnRect, panelRadius, hudTurnPanelColor)
	drawCenteredString(drawer, turnRect, truncateWithEllipsis(r.face, turn, turnRect.Dx()-panelPaddingX*2), hudTurnTextColor)
}

func (r *Renderer) drawCoordinates(img *image.RGBA, reversed bool, origin image.Point) {
	drawer := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordinateTextColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	bottom := origin.Y + board.Size*r.squareSize
	for i := 0; i < board.Size; i++ {
		rank := board.FromDisplay(board.Cell{Row: i, Col: 0}, reversed).Rank
		file := board.FromDisplay(board.Cell{Row: board.Size - 1, Col: i}, reversed).File
		rowCenter := origin.Y + i*r.squareSize + r.squareSize/2
		colCenter := origin.X + i*r.squareSize + r.squareSize/2
		drawCenteredText(drawer, strconv.Itoa(rank+1), origin.X-sideMargin/2, rowCenter+ascent/2)
		drawCenteredText(drawer, string(rune('a'+file)), colCenter, bottom+ascent+6)
	}
}

func squareColor(sq board.Square) color.Color {
	if (sq.File+sq.Rank)%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	if text == "" || maxWidth <= 0 {
		return ""
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(text).Round() <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if candidate := string(runes) + "..."; drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ""
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if text == "" {
		return
	}
	m := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X+(rect.Dx()-width)/2, rect.Min.X)
	baseline := rect.Min.Y + (rect.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
