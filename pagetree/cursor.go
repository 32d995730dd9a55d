package pagetree

import (
	"strings"

	"github.com/dharts/tesskit/engine"
)

func boolSentinel(b bool) int {
	if b {
		return engine.True
	}
	return engine.False
}

// Cursor implements engine.Cursor and engine.ResultCursor over a Page. A
// Cursor panics when used after Delete: by the time a deleted native
// cursor is touched the ordering discipline has already failed, and a loud
// failure here is what keeps lifecycle bugs from masquerading as bad
// recognition output.
type Cursor struct {
	page    *Page
	onClose func()

	b, p, l, w, s int
	deleted       bool
}

// NewCursor returns a cursor positioned at the start of the page. onClose,
// if non-nil, runs once when the cursor is deleted.
func NewCursor(page *Page, onClose func()) *Cursor {
	return &Cursor{page: page, onClose: onClose}
}

func (c *Cursor) check() {
	if c.deleted {
		panic("pagetree: use of deleted cursor")
	}
}

// Copy duplicates the cursor at its current position. The duplicate shares
// the close hook so owners can track every live cursor.
func (c *Cursor) Copy() (engine.Cursor, error) {
	c.check()
	dup := *c
	return &dup, nil
}

// Delete releases the cursor. Further use panics.
func (c *Cursor) Delete() {
	c.check()
	c.deleted = true
	if c.onClose != nil {
		c.onClose()
	}
}

// Begin repositions the cursor at the start of the page.
func (c *Cursor) Begin() {
	c.check()
	c.b, c.p, c.l, c.w, c.s = 0, 0, 0, 0, 0
}

func (c *Cursor) block() *Block { return &c.page.Blocks[c.b] }
func (c *Cursor) para() *Para   { return &c.block().Paras[c.p] }
func (c *Cursor) line() *Line   { return &c.para().Lines[c.l] }
func (c *Cursor) word() *Word   { return &c.line().Words[c.w] }

// Next advances in reading order at the given level. Finer indices reset;
// at LevelSymbol, words without symbols (the degenerate words of non-text
// blocks) are skipped entirely.
func (c *Cursor) Next(level engine.Level) int {
	c.check()
	if len(c.page.Blocks) == 0 {
		return engine.False
	}
	if level == engine.LevelSymbol {
		return boolSentinel(c.nextSymbol())
	}
	return boolSentinel(c.advance(level))
}

// advance is a cascading odometer: exhausting the elements at one level
// rolls over into the next coarser one.
func (c *Cursor) advance(level engine.Level) bool {
	switch level {
	case engine.LevelWord:
		if c.w+1 < len(c.line().Words) {
			c.w++
			c.s = 0
			return true
		}
		fallthrough
	case engine.LevelTextline:
		if c.l+1 < len(c.para().Lines) {
			c.l++
			c.w, c.s = 0, 0
			return true
		}
		fallthrough
	case engine.LevelPara:
		if c.p+1 < len(c.block().Paras) {
			c.p++
			c.l, c.w, c.s = 0, 0, 0
			return true
		}
		fallthrough
	case engine.LevelBlock:
		return c.nextBlock()
	}
	return false
}

func (c *Cursor) nextBlock() bool {
	if c.b+1 < len(c.page.Blocks) {
		c.b++
		c.p, c.l, c.w, c.s = 0, 0, 0, 0
		return true
	}
	return false
}

func (c *Cursor) nextSymbol() bool {
	if c.s+1 < len(c.word().Symbols) {
		c.s++
		return true
	}
	// Walk forward word by word until one carries symbols; restore the
	// position if the page is exhausted.
	saved := *c
	for c.advance(engine.LevelWord) {
		if len(c.word().Symbols) > 0 {
			return true
		}
	}
	c.b, c.p, c.l, c.w, c.s = saved.b, saved.p, saved.l, saved.w, saved.s
	return false
}

// IsAtBeginningOf reports whether every index finer than level is at its
// first element.
func (c *Cursor) IsAtBeginningOf(level engine.Level) int {
	c.check()
	switch level {
	case engine.LevelBlock:
		return boolSentinel(c.p == 0 && c.l == 0 && c.w == 0 && c.s == 0)
	case engine.LevelPara:
		return boolSentinel(c.l == 0 && c.w == 0 && c.s == 0)
	case engine.LevelTextline:
		return boolSentinel(c.w == 0 && c.s == 0)
	case engine.LevelWord:
		return boolSentinel(c.s == 0)
	}
	return engine.True
}

// IsAtFinalElement reports whether the current element of the given type is
// the last of its kind within the enclosing level object.
func (c *Cursor) IsAtFinalElement(level, element engine.Level) int {
	c.check()
	final := true
	for g := level + 1; g <= element; g++ {
		switch g {
		case engine.LevelPara:
			final = final && c.p == len(c.block().Paras)-1
		case engine.LevelTextline:
			final = final && c.l == len(c.para().Lines)-1
		case engine.LevelWord:
			final = final && c.w == len(c.line().Words)-1
		case engine.LevelSymbol:
			final = final && c.s >= len(c.word().Symbols)-1
		}
	}
	return boolSentinel(final)
}

// BoundingBox serves the geometry stored for the current element at the
// given level, reporting absence with the native False sentinel.
func (c *Cursor) BoundingBox(level engine.Level) (int, engine.BoundingBox) {
	c.check()
	var box *engine.BoundingBox
	switch level {
	case engine.LevelBlock:
		box = c.block().Box
	case engine.LevelPara:
		box = c.para().Box
	case engine.LevelTextline:
		box = c.line().Box
	case engine.LevelWord:
		box = c.word().Box
	case engine.LevelSymbol:
		if c.s < len(c.word().Symbols) {
			box = c.word().Symbols[c.s].Box
		}
	}
	if box == nil {
		return engine.False, engine.BoundingBox{}
	}
	return engine.True, *box
}

// Baseline serves the textline baseline; other levels carry none.
func (c *Cursor) Baseline(level engine.Level) (int, engine.Baseline) {
	c.check()
	if level == engine.LevelTextline && c.line().Baseline != nil {
		return engine.True, *c.line().Baseline
	}
	return engine.False, engine.Baseline{}
}

// Orientation reports the current block's orientation facts as raw values.
func (c *Cursor) Orientation() (int, int, int, float64) {
	c.check()
	o := c.block().Orientation
	return int(o.Orientation), int(o.Direction), int(o.Order), o.DeskewAngle
}

// BlockType reports the current block's classification as a raw value.
func (c *Cursor) BlockType() int {
	c.check()
	return int(c.block().Type)
}

// Text linearizes the current element at the given level.
func (c *Cursor) Text(level engine.Level) string {
	c.check()
	switch level {
	case engine.LevelBlock:
		parts := make([]string, len(c.block().Paras))
		for i, p := range c.block().Paras {
			parts[i] = paraText(p)
		}
		return strings.Join(parts, "\n")
	case engine.LevelPara:
		return paraText(*c.para())
	case engine.LevelTextline:
		return lineText(*c.line())
	case engine.LevelWord:
		return c.word().Text
	case engine.LevelSymbol:
		if c.s < len(c.word().Symbols) {
			return c.word().Symbols[c.s].Text
		}
	}
	return ""
}

func paraText(p Para) string {
	lines := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = lineText(l)
	}
	return strings.Join(lines, "\n")
}

func lineText(l Line) string {
	words := make([]string, len(l.Words))
	for i, w := range l.Words {
		words[i] = w.Text
	}
	return strings.Join(words, " ")
}

// Confidence returns the word confidence at word and symbol level and the
// mean word confidence at coarser levels.
func (c *Cursor) Confidence(level engine.Level) float64 {
	c.check()
	switch level {
	case engine.LevelWord, engine.LevelSymbol:
		return c.word().Confidence
	case engine.LevelTextline:
		return meanConfidence(c.line().Words)
	case engine.LevelPara:
		var words []Word
		for _, l := range c.para().Lines {
			words = append(words, l.Words...)
		}
		return meanConfidence(words)
	case engine.LevelBlock:
		var words []Word
		for _, p := range c.block().Paras {
			for _, l := range p.Lines {
				words = append(words, l.Words...)
			}
		}
		return meanConfidence(words)
	}
	return 0
}

func meanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}

// WordFontAttributes reports the current word's font with flags in native
// sentinel form.
func (c *Cursor) WordFontAttributes() engine.RawFontAttributes {
	c.check()
	f := c.word().Font
	return engine.RawFontAttributes{
		Name:       f.Name,
		Bold:       boolSentinel(f.Bold),
		Italic:     boolSentinel(f.Italic),
		Underlined: boolSentinel(f.Underlined),
		Monospace:  boolSentinel(f.Monospace),
		Serif:      boolSentinel(f.Serif),
		SmallCaps:  boolSentinel(f.SmallCaps),
		PointSize:  f.PointSize,
		FontID:     f.FontID,
	}
}

func (c *Cursor) WordIsFromDictionary() int {
	c.check()
	return boolSentinel(c.word().FromDictionary)
}

func (c *Cursor) WordIsNumeric() int {
	c.check()
	return boolSentinel(c.word().Numeric)
}

func (c *Cursor) symbol() *Symbol {
	w := c.word()
	if c.s < len(w.Symbols) {
		return &w.Symbols[c.s]
	}
	return nil
}

func (c *Cursor) SymbolIsSubscript() int {
	c.check()
	if s := c.symbol(); s != nil {
		return boolSentinel(s.Subscript)
	}
	return engine.False
}

func (c *Cursor) SymbolIsSuperscript() int {
	c.check()
	if s := c.symbol(); s != nil {
		return boolSentinel(s.Superscript)
	}
	return engine.False
}

func (c *Cursor) SymbolIsDropcap() int {
	c.check()
	if s := c.symbol(); s != nil {
		return boolSentinel(s.Dropcap)
	}
	return engine.False
}
