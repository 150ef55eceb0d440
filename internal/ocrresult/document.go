/**
 * OCR Document - normalized recognition result
 *
 * The structure that crosses the plugin boundary: document -> blocks ->
 * lines -> elements, in the engine's reading order. JSON field names match
 * what host code reads ("frame", "boundingCenterX", ...).
 */

package ocrresult

// Point is a coordinate in image pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingGeometry is an axis-aligned rectangle with its derived center.
type BoundingGeometry struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"boundingCenterX"`
	CenterY float64 `json:"boundingCenterY"`
}

// NewBoundingGeometry derives the center fields from the rectangle.
func NewBoundingGeometry(x, y, width, height float64) BoundingGeometry {
	return BoundingGeometry{
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		CenterX: x + width/2,
		CenterY: y + height/2,
	}
}

// TextElement is a single word.
type TextElement struct {
	Text         string           `json:"text"`
	Geometry     BoundingGeometry `json:"frame"`
	CornerPoints []Point          `json:"cornerPoints"`
}

// TextLine is a line of elements.
type TextLine struct {
	Text                string           `json:"text"`
	RecognizedLanguages []string         `json:"recognizedLanguages"`
	Geometry            BoundingGeometry `json:"frame"`
	CornerPoints        []Point          `json:"cornerPoints"`
	Elements            []TextElement    `json:"elements"`
}

// TextBlock is a paragraph-level region made of lines.
type TextBlock struct {
	Text                string           `json:"text"`
	RecognizedLanguages []string         `json:"recognizedLanguages"`
	Geometry            BoundingGeometry `json:"frame"`
	CornerPoints        []Point          `json:"cornerPoints"`
	Lines               []TextLine       `json:"lines"`
}

// Document is the root result for one frame. Text is the engine's full
// string, not a join of the blocks.
type Document struct {
	Text   string      `json:"text"`
	Blocks []TextBlock `json:"blocks"`
}

// Counts returns the number of blocks, lines and elements.
func (d *Document) Counts() (blocks, lines, elements int) {
	blocks = len(d.Blocks)
	for _, b := range d.Blocks {
		lines += len(b.Lines)
		for _, l := range b.Lines {
			elements += len(l.Elements)
		}
	}
	return blocks, lines, elements
}
