package pagetree

import (
	"testing"

	"github.com/dharts/tesskit/engine"
)

func word(text string, conf float64) Word {
	w := Word{Text: text, Confidence: conf}
	for _, r := range text {
		w.Symbols = append(w.Symbols, Symbol{Text: string(r)})
	}
	return w
}

// twoBlockPage is a text block of two lines followed by an image block.
func twoBlockPage() Page {
	return Page{Blocks: []Block{
		{
			Type: engine.BlockFlowingText,
			Box:  &engine.BoundingBox{Left: 0, Top: 0, Right: 100, Bottom: 80},
			Paras: []Para{{
				Lines: []Line{
					{
						Baseline: &engine.Baseline{X1: 0, Y1: 30, X2: 100, Y2: 30},
						Words:    []Word{word("ab", 80), word("c", 90)},
					},
					{Words: []Word{word("d", 70)}},
				},
			}},
		},
		NonText(engine.BlockFlowingImage, engine.BoundingBox{Left: 0, Top: 100, Right: 50, Bottom: 150}),
	}}
}

func TestWordTraversal(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)

	want := []string{"ab", "c", "d", ""}
	for i, w := range want {
		if got := c.Text(engine.LevelWord); got != w {
			t.Fatalf("word %d: got %q, want %q", i, got, w)
		}
		more := c.Next(engine.LevelWord)
		if last := i == len(want)-1; (more == engine.False) != last {
			t.Fatalf("word %d: next returned %d", i, more)
		}
	}
}

func TestSymbolTraversalSkipsDegenerateWords(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)

	var got string
	for {
		got += c.Text(engine.LevelSymbol)
		if c.Next(engine.LevelSymbol) == engine.False {
			break
		}
	}
	// The image block's placeholder word has no symbols and is skipped.
	if got != "abcd" {
		t.Fatalf("symbol walk produced %q", got)
	}
}

func TestPositionPredicates(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)

	if c.IsAtBeginningOf(engine.LevelBlock) != engine.True {
		t.Fatal("fresh cursor not at block start")
	}
	if c.IsAtFinalElement(engine.LevelTextline, engine.LevelWord) == engine.True {
		t.Fatal("first word reported final in line of two")
	}

	c.Next(engine.LevelWord)
	if c.IsAtBeginningOf(engine.LevelTextline) == engine.True {
		t.Fatal("second word reported at line start")
	}
	if c.IsAtFinalElement(engine.LevelTextline, engine.LevelWord) != engine.True {
		t.Fatal("last word of line not reported final")
	}
	if c.IsAtFinalElement(engine.LevelPara, engine.LevelTextline) == engine.True {
		t.Fatal("first line reported final in para of two")
	}
}

func TestTextJoining(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)

	if got := c.Text(engine.LevelTextline); got != "ab c" {
		t.Fatalf("line text %q", got)
	}
	if got := c.Text(engine.LevelPara); got != "ab c\nd" {
		t.Fatalf("para text %q", got)
	}
}

func TestConfidenceAggregation(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)

	if got := c.Confidence(engine.LevelWord); got != 80 {
		t.Fatalf("word confidence %v", got)
	}
	if got := c.Confidence(engine.LevelTextline); got != 85 {
		t.Fatalf("line confidence %v", got)
	}
	if got := c.Confidence(engine.LevelBlock); got != 80 {
		t.Fatalf("block confidence %v", got)
	}
}

func TestGeometry(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)

	rv, _ := c.BoundingBox(engine.LevelWord)
	if rv != engine.False {
		t.Fatal("wordless geometry reported present")
	}
	rv, box := c.BoundingBox(engine.LevelBlock)
	if rv != engine.True || box.Width() != 100 {
		t.Fatalf("block box: %d %v", rv, box)
	}

	rv, bl := c.Baseline(engine.LevelTextline)
	if rv != engine.True || bl.Y1 != 30 {
		t.Fatalf("baseline: %d %v", rv, bl)
	}
	if rv, _ := c.Baseline(engine.LevelWord); rv != engine.False {
		t.Fatal("word reported a baseline")
	}

	// Advance into the image block: it carries a box but no baseline.
	c.Next(engine.LevelBlock)
	if got := c.BlockType(); got != int(engine.BlockFlowingImage) {
		t.Fatalf("block type %d", got)
	}
	rv, _ = c.BoundingBox(engine.LevelWord)
	if rv != engine.True {
		t.Fatal("degenerate word lost its box")
	}
	if rv, _ := c.Baseline(engine.LevelTextline); rv != engine.False {
		t.Fatal("image block reported a baseline")
	}
}

func TestCopyIndependence(t *testing.T) {
	page := twoBlockPage()
	closed := 0
	c := NewCursor(&page, func() { closed++ })

	dup, err := c.Copy()
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	dup.Next(engine.LevelWord)
	if c.Text(engine.LevelWord) != "ab" {
		t.Fatal("copy moved the original")
	}

	c.Delete()
	dup.Delete()
	if closed != 2 {
		t.Fatalf("close hook ran %d times", closed)
	}
}

func TestUseAfterDeletePanics(t *testing.T) {
	page := twoBlockPage()
	c := NewCursor(&page, nil)
	c.Delete()

	defer func() {
		if recover() == nil {
			t.Fatal("use after delete did not panic")
		}
	}()
	c.Next(engine.LevelWord)
}
