package ocrresult

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosijchuk/vision-camera-ocr/internal/recognizer"
)

func rect(x, y, w, h float64) recognizer.Rect {
	return recognizer.Rect{X: x, Y: y, Width: w, Height: h}
}

func sampleResult() *recognizer.Result {
	return &recognizer.Result{
		Text: "HELLO WORLD\nBYE",
		Blocks: []recognizer.Block{
			{
				Text:         "HELLO WORLD",
				Languages:    []string{"en", ""},
				Frame:        rect(10, 20, 100, 30),
				CornerPoints: rect(10, 20, 100, 30).Corners(),
				Lines: []recognizer.Line{
					{
						Text:         "HELLO WORLD",
						Languages:    []string{"en"},
						Frame:        rect(10, 20, 100, 30),
						CornerPoints: rect(10, 20, 100, 30).Corners(),
						Elements: []recognizer.Element{
							{Text: "HELLO", Frame: rect(10, 20, 45, 30), CornerPoints: rect(10, 20, 45, 30).Corners()},
							{Text: "WORLD", Frame: rect(60, 21, 50, 29)},
						},
					},
				},
			},
			{
				Text:  "BYE",
				Frame: rect(0, 80, 30, 10),
				Lines: []recognizer.Line{
					{Text: "BYE", Frame: rect(0, 80, 30, 10), Elements: []recognizer.Element{{Text: "BYE", Frame: rect(0, 80, 30, 10)}}},
				},
			},
		},
	}
}

func TestBuildPreservesStructure(t *testing.T) {
	res := sampleResult()
	doc := Build(res)

	assert.Equal(t, res.Text, doc.Text)
	require.Len(t, doc.Blocks, len(res.Blocks))
	for i, b := range res.Blocks {
		assert.Equal(t, b.Text, doc.Blocks[i].Text)
		require.Len(t, doc.Blocks[i].Lines, len(b.Lines))
		for j, l := range b.Lines {
			assert.Equal(t, l.Text, doc.Blocks[i].Lines[j].Text)
			require.Len(t, doc.Blocks[i].Lines[j].Elements, len(l.Elements))
			for k, e := range l.Elements {
				assert.Equal(t, e.Text, doc.Blocks[i].Lines[j].Elements[k].Text)
			}
		}
	}

	blocks, lines, elements := doc.Counts()
	assert.Equal(t, 2, blocks)
	assert.Equal(t, 2, lines)
	assert.Equal(t, 3, elements)
}

func TestBuildOneBlockOneLineTwoElements(t *testing.T) {
	res := sampleResult()
	res.Blocks = res.Blocks[:1]

	doc := Build(res)
	require.Len(t, doc.Blocks, 1)
	require.Len(t, doc.Blocks[0].Lines, 1)
	line := doc.Blocks[0].Lines[0]
	require.Len(t, line.Elements, 2)

	hello := line.Elements[0]
	assert.Equal(t, "HELLO", hello.Text)
	assert.Equal(t, NewBoundingGeometry(10, 20, 45, 30), hello.Geometry)
	assert.Equal(t, []Point{{10, 20}, {55, 20}, {55, 50}, {10, 50}}, hello.CornerPoints)

	world := line.Elements[1]
	assert.Equal(t, "WORLD", world.Text)
	assert.Equal(t, 60.0, world.Geometry.X)
	assert.Empty(t, world.CornerPoints)

	assert.Equal(t, []string{"en"}, doc.Blocks[0].RecognizedLanguages)
	assert.Equal(t, []string{"en"}, line.RecognizedLanguages)

	raw, err := json.Marshal(hello)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "recognizedLanguages")
}

func TestBuildDerivesCenters(t *testing.T) {
	doc := Build(sampleResult())
	check := func(g BoundingGeometry) {
		assert.InDelta(t, g.X+g.Width/2, g.CenterX, 1e-9)
		assert.InDelta(t, g.Y+g.Height/2, g.CenterY, 1e-9)
	}
	for _, b := range doc.Blocks {
		check(b.Geometry)
		for _, l := range b.Lines {
			check(l.Geometry)
			for _, e := range l.Elements {
				check(e.Geometry)
			}
		}
	}
	assert.Equal(t, 60.0, doc.Blocks[0].Geometry.CenterX)
	assert.Equal(t, 35.0, doc.Blocks[0].Geometry.CenterY)
}

func TestBuildEmptyResult(t *testing.T) {
	doc := Build(&recognizer.Result{Text: ""})
	assert.Equal(t, "", doc.Text)
	assert.NotNil(t, doc.Blocks)
	assert.Empty(t, doc.Blocks)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"","blocks":[]}`, string(raw))

	assert.Equal(t, doc, Build(nil))
}

func TestBuildDoesNotShareSlices(t *testing.T) {
	res := sampleResult()
	doc := Build(res)

	res.Blocks[0].CornerPoints[0].X = -1
	res.Blocks[0].Lines[0].Languages[0] = "xx"
	res.Blocks[0].Lines[0].Elements[0].Text = "changed"

	assert.Equal(t, 10.0, doc.Blocks[0].CornerPoints[0].X)
	assert.Equal(t, "en", doc.Blocks[0].Lines[0].RecognizedLanguages[0])
	assert.Equal(t, "HELLO", doc.Blocks[0].Lines[0].Elements[0].Text)
}

func TestBuildIsDeterministic(t *testing.T) {
	assert.Equal(t, Build(sampleResult()), Build(sampleResult()))
}

func TestDocumentJSONShape(t *testing.T) {
	raw, err := json.Marshal(Build(sampleResult()))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	block := decoded["blocks"].([]interface{})[0].(map[string]interface{})
	frame := block["frame"].(map[string]interface{})
	assert.Equal(t, 60.0, frame["boundingCenterX"])
	assert.Contains(t, block, "lines")
	assert.Contains(t, block, "cornerPoints")
}
