package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

type pointF struct {
	X float64
	Y float64
}

func fillRect(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	draw.Draw(img, rect, image.NewUniform(clr), image.Point{}, draw.Over)
}

// fillShape composites clr over every pixel of bounds whose center satisfies inside.
func fillShape(img *image.RGBA, bounds image.Rectangle, clr color.Color, inside func(x, y float64) bool) {
	bounds = bounds.Intersect(img.Bounds())
	if bounds.Empty() {
		return
	}
	mask := image.NewAlpha(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if inside(float64(x)+0.5, float64(y)+0.5) {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	draw.DrawMask(img, bounds, image.NewUniform(clr), image.Point{}, mask, bounds.Min, draw.Over)
}

func fillDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	cx, cy, r := float64(center.X), float64(center.Y), float64(radius)
	bounds := image.Rect(center.X-radius-1, center.Y-radius-1, center.X+radius+1, center.Y+radius+1)
	fillShape(img, bounds, clr, func(x, y float64) bool {
		return math.Hypot(x-cx, y-cy) <= r
	})
}

func fillRoundedRect(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
	r := float64(radius)
	inner := [4]float64{
		float64(rect.Min.X) + r, float64(rect.Min.Y) + r,
		float64(rect.Max.X) - r, float64(rect.Max.Y) - r,
	}
	fillShape(img, rect, clr, func(x, y float64) bool {
		nx := math.Max(inner[0], math.Min(x, inner[2]))
		ny := math.Max(inner[1], math.Min(y, inner[3]))
		return math.Hypot(x-nx, y-ny) <= r
	})
}

func inTriangle(p, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}
