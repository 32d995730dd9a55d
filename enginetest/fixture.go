package enginetest

import (
	"strconv"
	"unicode"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/pagetree"
)

// ThreeBlockPage builds the canonical fixture: three text blocks holding
// twenty-two textlines in total, the shape of the scanned page the Java
// reference tests were written against. Block two is split into two
// paragraphs and block three is a table of figures whose words are numeric.
func ThreeBlockPage() pagetree.Page {
	serif := engine.FontAttributes{Name: "Times", Serif: true, PointSize: 11, FontID: 3}
	mono := engine.FontAttributes{Name: "Courier", Monospace: true, PointSize: 10, FontID: 7}

	b1 := textBlock(40, serif, []int{8},
		"The quick brown",
		"fox jumps over",
		"the lazy dog",
		"while the cat",
		"sleeps on the",
		"warm window sill",
		"ignoring all of",
		"the commotion",
	)
	b1.Paras[0].Lines[0].Words[0].Symbols[0].Dropcap = true

	b2 := textBlock(420, serif, []int{6, 4},
		"Layout analysis",
		"divides a page",
		"into regions of",
		"uniform reading",
		"order before any",
		"character work",
		"Recognition then",
		"assigns text and",
		"confidence to",
		"each region",
	)

	b3 := textBlock(900, mono, []int{4},
		"1024 2048",
		"4096 8192",
		"16384 32768",
		"65536 131072",
	)

	return pagetree.Page{Blocks: []pagetree.Block{b1, b2, b3}}
}

// textBlock lays out lines top to bottom starting at the given y, splitting
// them into paragraphs of the given sizes.
func textBlock(top int, font engine.FontAttributes, paraLines []int, lines ...string) pagetree.Block {
	const lineHeight = 40

	block := pagetree.Block{
		Type: engine.BlockFlowingText,
		Box:  &engine.BoundingBox{Left: 100, Top: top, Right: 700, Bottom: top + lineHeight*len(lines)},
	}

	y := top
	next := 0
	for _, n := range paraLines {
		para := pagetree.Para{
			Box: &engine.BoundingBox{Left: 100, Top: y, Right: 700, Bottom: y + lineHeight*n},
		}
		for i := 0; i < n; i++ {
			para.Lines = append(para.Lines, textLine(lines[next], y, font))
			next++
			y += lineHeight
		}
		block.Paras = append(block.Paras, para)
	}
	return block
}

func textLine(text string, y int, font engine.FontAttributes) pagetree.Line {
	const charWidth = 18

	line := pagetree.Line{
		Box:      &engine.BoundingBox{Left: 100, Top: y, Right: 100 + charWidth*len(text), Bottom: y + 32},
		Baseline: &engine.Baseline{X1: 100, Y1: y + 28, X2: 100 + charWidth*len(text), Y2: y + 28},
	}

	x := 100
	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != ' ' {
			continue
		}
		if i > start {
			line.Words = append(line.Words, makeWord(text[start:i], x+charWidth*start, y, font))
		}
		start = i + 1
	}
	return line
}

func makeWord(text string, x, y int, font engine.FontAttributes) pagetree.Word {
	const charWidth = 18

	w := pagetree.Word{
		Text:       text,
		Box:        &engine.BoundingBox{Left: x, Top: y, Right: x + charWidth*len(text), Bottom: y + 32},
		Confidence: 90,
		Font:       font,
	}
	if _, err := strconv.Atoi(text); err == nil {
		w.Numeric = true
		w.Confidence = 85
	} else if allLetters(text) {
		w.FromDictionary = true
	}
	for _, r := range text {
		w.Symbols = append(w.Symbols, pagetree.Symbol{Text: string(r)})
	}
	return w
}

func allLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
