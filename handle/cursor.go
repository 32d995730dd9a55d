package handle

import (
	"fmt"
	"sync"

	"github.com/dharts/tesskit/engine"
)

// Cursor is a guarded view over one native cursor. It holds no copy of the
// page hierarchy; every query goes to the live native cursor through the
// owning context. Once disposed, every operation fails with
// ErrCursorDisposed, and a second Dispose fails with ErrAlreadyDisposed.
type Cursor struct {
	mu       sync.Mutex
	ctx      *Context
	cur      engine.Cursor
	disposed bool
}

// Dispose releases the underlying native cursor. When this was the last
// live cursor of its context, the engine returns to the image-set state.
// Dispose is intentionally not idempotent.
func (h *Cursor) Dispose() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return fmt.Errorf("dispose: %w", ErrAlreadyDisposed)
	}
	if err := h.ctx.release(h.cur); err != nil {
		return err
	}
	h.disposed = true
	return nil
}

// Clone duplicates this view. The clone starts at the same position and
// advances independently; both must be disposed before the engine will
// accept the next analysis.
func (h *Cursor) Clone() (*Cursor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return nil, fmt.Errorf("clone: %w", ErrCursorDisposed)
	}
	dup, err := h.ctx.copy(h.cur)
	if err != nil {
		return nil, err
	}
	return &Cursor{ctx: h.ctx, cur: dup}, nil
}

// Context exposes the sharing context, mainly for tests and diagnostics.
func (h *Cursor) Context() *Context { return h.ctx }

func (h *Cursor) guardLocked(op string) error {
	if h.disposed {
		return fmt.Errorf("%s: %w", op, ErrCursorDisposed)
	}
	return nil
}

// Begin repositions the cursor at the start of the page. A fresh cursor is
// already there; Begin resets one that has been advanced.
func (h *Cursor) Begin() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("begin"); err != nil {
		return err
	}
	h.cur.Begin()
	return nil
}

// Next moves to the next element in reading order at the given level and
// reports whether an element was found; false means the page is exhausted
// at that level. Calls at different levels may be freely interleaved, and
// non-text blocks are visited as degenerate single-paragraph/line/word
// units (skipped entirely at LevelSymbol).
func (h *Cursor) Next(level engine.Level) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("next"); err != nil {
		return false, err
	}
	return nativeBool("next", h.cur.Next(level))
}

// IsAtBeginningOf reports whether the cursor sits at the first element of
// an object at the given level.
func (h *Cursor) IsAtBeginningOf(level engine.Level) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("is at beginning of"); err != nil {
		return false, err
	}
	return nativeBool("is at beginning of", h.cur.IsAtBeginningOf(level))
}

// IsAtFinalElement reports whether the current element of type element is
// the last one within level (for example, whether the current word is the
// last word of its paragraph).
func (h *Cursor) IsAtFinalElement(level, element engine.Level) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("is at final element"); err != nil {
		return false, err
	}
	return nativeBool("is at final element", h.cur.IsAtFinalElement(level, element))
}

// BoundingBox returns the bounding box of the current element at the given
// level. Absence of geometry is an ordinary outcome, reported through the
// second return value.
func (h *Cursor) BoundingBox(level engine.Level) (engine.BoundingBox, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("bounding box"); err != nil {
		return engine.BoundingBox{}, false, err
	}
	rv, box := h.cur.BoundingBox(level)
	exists, err := nativeBool("bounding box", rv)
	if err != nil {
		return engine.BoundingBox{}, false, err
	}
	return box, exists, nil
}

// Baseline returns the baseline of the current element at the given level,
// and whether one exists.
func (h *Cursor) Baseline(level engine.Level) (engine.Baseline, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("baseline"); err != nil {
		return engine.Baseline{}, false, err
	}
	rv, bl := h.cur.Baseline(level)
	exists, err := nativeBool("baseline", rv)
	if err != nil {
		return engine.Baseline{}, false, err
	}
	return bl, exists, nil
}

// Orientation reports orientation facts for the block the cursor points
// to. It always operates at the block level.
func (h *Cursor) Orientation() (engine.BlockOrientation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("orientation"); err != nil {
		return engine.BlockOrientation{}, err
	}
	o, d, t, deskew := h.cur.Orientation()
	if o < int(engine.OrientationPageUp) || o > int(engine.OrientationPageLeft) {
		return engine.BlockOrientation{}, &engine.InvalidResponseError{Op: "orientation", Value: o}
	}
	if d < int(engine.DirectionLeftToRight) || d > int(engine.DirectionTopToBottom) {
		return engine.BlockOrientation{}, &engine.InvalidResponseError{Op: "writing direction", Value: d}
	}
	if t < int(engine.OrderLeftToRight) || t > int(engine.OrderTopToBottom) {
		return engine.BlockOrientation{}, &engine.InvalidResponseError{Op: "textline order", Value: t}
	}
	return engine.BlockOrientation{
		Orientation: engine.Orientation(o),
		Direction:   engine.WritingDirection(d),
		Order:       engine.TextlineOrder(t),
		DeskewAngle: deskew,
	}, nil
}

// BlockType returns the classification of the current block.
func (h *Cursor) BlockType() (engine.PolyBlockType, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("block type"); err != nil {
		return engine.BlockUnknown, err
	}
	t := engine.PolyBlockType(h.cur.BlockType())
	if !t.Valid() {
		return engine.BlockUnknown, &engine.InvalidResponseError{Op: "block type", Value: int(t)}
	}
	return t, nil
}

// ResultCursor is a Cursor over recognition results, adding the accessors
// that only exist there. Word-level accessors queried at a coarser level
// report the first word; symbol-level accessors report the first symbol.
type ResultCursor struct {
	Cursor
	res engine.ResultCursor
}

// Clone duplicates this view, preserving access to the recognition-only
// accessors.
func (h *ResultCursor) Clone() (*ResultCursor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return nil, fmt.Errorf("clone: %w", ErrCursorDisposed)
	}
	dup, err := h.ctx.copy(h.cur)
	if err != nil {
		return nil, err
	}
	res, ok := dup.(engine.ResultCursor)
	if !ok {
		dup.Delete()
		return nil, fmt.Errorf("clone: native copy lost recognition accessors")
	}
	return &ResultCursor{Cursor: Cursor{ctx: h.ctx, cur: dup}, res: res}, nil
}

// Text returns the recognized UTF-8 text of the current element.
func (h *ResultCursor) Text(level engine.Level) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("text"); err != nil {
		return "", err
	}
	return h.res.Text(level), nil
}

// Confidence returns the mean confidence of the current element as a
// percent probability (0-100).
func (h *ResultCursor) Confidence(level engine.Level) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("confidence"); err != nil {
		return 0, err
	}
	return h.res.Confidence(level), nil
}

// FontAttributes reports the font of the current word, converting every
// native flag at the boundary.
func (h *ResultCursor) FontAttributes() (engine.FontAttributes, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked("font attributes"); err != nil {
		return engine.FontAttributes{}, err
	}
	raw := h.res.WordFontAttributes()
	fa := engine.FontAttributes{
		Name:      raw.Name,
		PointSize: raw.PointSize,
		FontID:    raw.FontID,
	}
	for _, f := range []struct {
		op  string
		v   int
		dst *bool
	}{
		{"font bold", raw.Bold, &fa.Bold},
		{"font italic", raw.Italic, &fa.Italic},
		{"font underlined", raw.Underlined, &fa.Underlined},
		{"font monospace", raw.Monospace, &fa.Monospace},
		{"font serif", raw.Serif, &fa.Serif},
		{"font smallcaps", raw.SmallCaps, &fa.SmallCaps},
	} {
		b, err := nativeBool(f.op, f.v)
		if err != nil {
			return engine.FontAttributes{}, err
		}
		*f.dst = b
	}
	return fa, nil
}

// IsDictionaryWord reports whether the current word was found in a
// dictionary.
func (h *ResultCursor) IsDictionaryWord() (bool, error) {
	return h.resultBool("is dictionary word", h.res.WordIsFromDictionary)
}

// IsNumeric reports whether the current word is numeric.
func (h *ResultCursor) IsNumeric() (bool, error) {
	return h.resultBool("is numeric", h.res.WordIsNumeric)
}

// IsSubscript reports whether the current symbol is a subscript.
func (h *ResultCursor) IsSubscript() (bool, error) {
	return h.resultBool("is subscript", h.res.SymbolIsSubscript)
}

// IsSuperscript reports whether the current symbol is a superscript.
func (h *ResultCursor) IsSuperscript() (bool, error) {
	return h.resultBool("is superscript", h.res.SymbolIsSuperscript)
}

// IsDropcap reports whether the current symbol is a dropcap.
func (h *ResultCursor) IsDropcap() (bool, error) {
	return h.resultBool("is dropcap", h.res.SymbolIsDropcap)
}

func (h *ResultCursor) resultBool(op string, fn func() int) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.guardLocked(op); err != nil {
		return false, err
	}
	return nativeBool(op, fn())
}
