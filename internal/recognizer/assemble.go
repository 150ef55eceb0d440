package recognizer

import (
	"image"
	"strings"

	"golang.org/x/text/language"
)

// Word is a recognized word with its position in the engine's page layout
// numbering. Block, Paragraph and Line are only compared for equality.
type Word struct {
	Text      string
	Box       image.Rectangle
	Block     int
	Paragraph int
	Line      int
}

// AssembleWords groups words, given in engine reading order, into the
// block/line/element tree. A new line starts whenever the (block, paragraph,
// line) triple changes, a new block whenever the block number changes.
// Line and block frames are the union of their children.
func AssembleWords(text string, words []Word, languages []string) *Result {
	langs := NormalizeLanguages(languages)
	result := &Result{Text: text, Blocks: []Block{}}

	var (
		block    *Block
		line     *Line
		lastKey  [3]int
		hasBlock bool
	)

	closeLine := func() {
		if line == nil {
			return
		}
		texts := make([]string, len(line.Elements))
		for i, e := range line.Elements {
			texts[i] = e.Text
		}
		line.Text = strings.Join(texts, " ")
		line.CornerPoints = line.Frame.Corners()
		block.Lines = append(block.Lines, *line)
		block.Frame = block.Frame.Union(line.Frame)
		line = nil
	}

	closeBlock := func() {
		closeLine()
		if block == nil {
			return
		}
		texts := make([]string, len(block.Lines))
		for i, l := range block.Lines {
			texts[i] = l.Text
		}
		block.Text = strings.Join(texts, "\n")
		block.CornerPoints = block.Frame.Corners()
		result.Blocks = append(result.Blocks, *block)
		block = nil
	}

	for _, w := range words {
		word := strings.TrimSpace(w.Text)
		if word == "" {
			continue
		}

		key := [3]int{w.Block, w.Paragraph, w.Line}
		if !hasBlock || w.Block != lastKey[0] {
			closeBlock()
			block = &Block{Languages: cloneStrings(langs), Lines: []Line{}}
			hasBlock = true
		} else if key != lastKey {
			closeLine()
		}
		if line == nil {
			line = &Line{Languages: cloneStrings(langs), Elements: []Element{}}
		}
		lastKey = key

		frame := RectFromImage(w.Box)
		line.Elements = append(line.Elements, Element{
			Text:         word,
			CornerPoints: frame.Corners(),
			Frame:        frame,
		})
		line.Frame = line.Frame.Union(frame)
	}
	closeBlock()

	return result
}

// NormalizeLanguages converts engine language codes (ISO 639-1/2/3, BCP 47,
// or Tesseract names such as "chi_sim") into BCP 47 base codes. Codes that
// do not parse are dropped; order is kept and duplicates removed.
func NormalizeLanguages(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if i := strings.IndexByte(code, '_'); i > 0 {
			code = code[:i]
		}
		base, err := language.ParseBase(code)
		if err != nil {
			continue
		}
		normalized := base.String()
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
