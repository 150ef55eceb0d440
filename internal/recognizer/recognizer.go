/**
 * Text recognition engine boundary
 *
 * The engine is a black box: it receives an orientation-corrected image and
 * its orientation tag, and returns a block/line/element tree or an error.
 * These types are the engine-side representation. They are never handed to
 * callers directly; ocrresult builds the public document from them.
 */

package recognizer

import (
	"context"
	"image"

	"github.com/mosijchuk/vision-camera-ocr/internal/geometry"
)

// TextRecognizer recognizes text in a single image.
type TextRecognizer interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, tag geometry.EngineOrientation) (*Result, error)
}

// Point is an engine-space coordinate.
type Point struct {
	X float64
	Y float64
}

// Rect is an engine-space axis-aligned rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromImage converts an integer rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Corners returns the rectangle's corners clockwise from the top-left.
func (r Rect) Corners() []Point {
	return []Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// Union returns the smallest rectangle containing r and o. An empty
// rectangle is the identity.
func (r Rect) Union(o Rect) Rect {
	if r.Width <= 0 && r.Height <= 0 {
		return o
	}
	if o.Width <= 0 && o.Height <= 0 {
		return r
	}
	minX, minY := min(r.X, o.X), min(r.Y, o.Y)
	maxX := max(r.X+r.Width, o.X+o.Width)
	maxY := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Result is the engine's recognition output for one image.
type Result struct {
	Text   string
	Blocks []Block
}

// Block is a paragraph-level region.
type Block struct {
	Text         string
	Languages    []string
	CornerPoints []Point
	Frame        Rect
	Lines        []Line
}

// Line is a single line of text inside a block.
type Line struct {
	Text         string
	Languages    []string
	CornerPoints []Point
	Frame        Rect
	Elements     []Element
}

// Element is a word-level region.
type Element struct {
	Text         string
	CornerPoints []Point
	Frame        Rect
}
