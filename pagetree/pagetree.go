// Package pagetree models a fully materialized page hierarchy and serves
// the native cursor contract from it. The tesseract adapter snapshots
// recognition output into a Page, and enginetest scripts Pages directly;
// both then hand out Cursors over the immutable tree.
package pagetree

import "github.com/dharts/tesskit/engine"

// Symbol is a single recognized character.
type Symbol struct {
	Text        string
	Box         *engine.BoundingBox
	Subscript   bool
	Superscript bool
	Dropcap     bool
}

// Word groups the symbols between two word breaks.
type Word struct {
	Text           string
	Box            *engine.BoundingBox
	Confidence     float64
	Font           engine.FontAttributes
	FromDictionary bool
	Numeric        bool
	Symbols        []Symbol
}

// Line is a textline with an optional baseline.
type Line struct {
	Box      *engine.BoundingBox
	Baseline *engine.Baseline
	Words    []Word
}

// Para is a paragraph of lines.
type Para struct {
	Box   *engine.BoundingBox
	Lines []Line
}

// Block is a top-level layout region. Non-text blocks are represented as a
// degenerate single paragraph with a single line holding a single word
// without symbols, which is how the native engine presents them to cursor
// traversal.
type Block struct {
	Type        engine.PolyBlockType
	Box         *engine.BoundingBox
	Orientation engine.BlockOrientation
	Paras       []Para
}

// Page is the root of the hierarchy.
type Page struct {
	Blocks []Block
}

// NonText builds the degenerate block structure for an image, separator or
// noise region.
func NonText(t engine.PolyBlockType, box engine.BoundingBox) Block {
	b := box
	return Block{
		Type: t,
		Box:  &b,
		Paras: []Para{{
			Box:   &b,
			Lines: []Line{{Box: &b, Words: []Word{{Box: &b}}}},
		}},
	}
}

// Lines returns the total number of textlines on the page, counting the
// degenerate line of each non-text block once.
func (p Page) Lines() int {
	n := 0
	for _, b := range p.Blocks {
		for _, para := range b.Paras {
			n += len(para.Lines)
		}
	}
	return n
}
