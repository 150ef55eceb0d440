package ocrresult

import (
	"github.com/mosijchuk/vision-camera-ocr/internal/recognizer"
)

// Build copies an engine result into a Document. Order and counts are
// preserved; nothing is shared with the engine result. Element-level
// languages do not exist. A nil result yields an empty document.
func Build(res *recognizer.Result) *Document {
	if res == nil {
		return &Document{Blocks: []TextBlock{}}
	}

	blocks := make([]TextBlock, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		blocks = append(blocks, buildBlock(b))
	}

	return &Document{
		Text:   res.Text,
		Blocks: blocks,
	}
}

func buildBlock(b recognizer.Block) TextBlock {
	lines := make([]TextLine, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, buildLine(l))
	}
	return TextBlock{
		Text:                b.Text,
		RecognizedLanguages: languages(b.Languages),
		Geometry:            geometryOf(b.Frame),
		CornerPoints:        points(b.CornerPoints),
		Lines:               lines,
	}
}

func buildLine(l recognizer.Line) TextLine {
	elements := make([]TextElement, 0, len(l.Elements))
	for _, e := range l.Elements {
		elements = append(elements, TextElement{
			Text:         e.Text,
			Geometry:     geometryOf(e.Frame),
			CornerPoints: points(e.CornerPoints),
		})
	}
	return TextLine{
		Text:                l.Text,
		RecognizedLanguages: languages(l.Languages),
		Geometry:            geometryOf(l.Frame),
		CornerPoints:        points(l.CornerPoints),
		Elements:            elements,
	}
}

func geometryOf(r recognizer.Rect) BoundingGeometry {
	return NewBoundingGeometry(r.X, r.Y, r.Width, r.Height)
}

func points(in []recognizer.Point) []Point {
	out := make([]Point, len(in))
	for i, p := range in {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out
}

// languages drops empty codes, as an engine may report a language without one.
func languages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, code := range in {
		if code != "" {
			out = append(out, code)
		}
	}
	return out
}
