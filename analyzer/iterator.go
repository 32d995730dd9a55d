package analyzer

import (
	"fmt"
	"sync"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/handle"
)

// LayoutIterator walks the regions found by layout analysis in reading
// order. It starts positioned on the first block; Next at a given level
// moves to the following element of that level, descending and ascending
// through the hierarchy as needed. Iterators must be closed; the engine
// holds the result set alive until every iterator and clone over it is
// gone.
type LayoutIterator struct {
	h *handle.Cursor

	mu      sync.Mutex
	onClose []func()
}

// OnClose registers a hook that runs after the iterator is closed.
func (it *LayoutIterator) OnClose(fn func()) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.onClose = append(it.onClose, fn)
}

// Close releases the iterator. Closing twice is an error.
func (it *LayoutIterator) Close() error {
	if err := it.h.Dispose(); err != nil {
		return err
	}
	it.mu.Lock()
	hooks := it.onClose
	it.onClose = nil
	it.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// Clone returns an independent iterator at the same position. Clones do not
// inherit close hooks and must be closed separately.
func (it *LayoutIterator) Clone() (*LayoutIterator, error) {
	dup, err := it.h.Clone()
	if err != nil {
		return nil, err
	}
	return &LayoutIterator{h: dup}, nil
}

// Begin repositions the iterator at the start of the page.
func (it *LayoutIterator) Begin() error { return it.h.Begin() }

// Next advances to the next element at the given level, reporting false
// once the page is exhausted.
func (it *LayoutIterator) Next(level engine.Level) (bool, error) {
	return it.h.Next(level)
}

// IsAtBeginningOf reports whether the iterator sits at the first element of
// an object at the given level.
func (it *LayoutIterator) IsAtBeginningOf(level engine.Level) (bool, error) {
	return it.h.IsAtBeginningOf(level)
}

// IsAtFinalElement reports whether the current element of the given type is
// the last of its kind within the enclosing level.
func (it *LayoutIterator) IsAtFinalElement(level, element engine.Level) (bool, error) {
	return it.h.IsAtFinalElement(level, element)
}

// BoundingBox returns the geometry of the current element, or nil when the
// element carries none; that is an ordinary outcome, not an error.
func (it *LayoutIterator) BoundingBox(level engine.Level) (*engine.BoundingBox, error) {
	box, ok, err := it.h.BoundingBox(level)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &box, nil
}

// Baseline returns the baseline of the current element. Unlike geometry, a
// missing baseline is reported as ErrNoBaseline: callers ask for baselines
// to do skew or typography work and silently absent data corrupts it.
func (it *LayoutIterator) Baseline(level engine.Level) (engine.Baseline, error) {
	bl, ok, err := it.h.Baseline(level)
	if err != nil {
		return engine.Baseline{}, err
	}
	if !ok {
		return engine.Baseline{}, fmt.Errorf("baseline: %w", ErrNoBaseline)
	}
	return bl, nil
}

// Orientation reports orientation facts for the current block.
func (it *LayoutIterator) Orientation() (engine.BlockOrientation, error) {
	return it.h.Orientation()
}

// BlockType returns the classification of the current block.
func (it *LayoutIterator) BlockType() (engine.PolyBlockType, error) {
	return it.h.BlockType()
}

// RecognitionResultsIterator extends LayoutIterator with the accessors that
// only recognition produces: text, confidence and typography.
type RecognitionResultsIterator struct {
	LayoutIterator
	rh *handle.ResultCursor
}

func newResultsIterator(rc *handle.ResultCursor) *RecognitionResultsIterator {
	return &RecognitionResultsIterator{
		LayoutIterator: LayoutIterator{h: &rc.Cursor},
		rh:             rc,
	}
}

// Clone returns an independent results iterator at the same position.
func (it *RecognitionResultsIterator) Clone() (*RecognitionResultsIterator, error) {
	dup, err := it.rh.Clone()
	if err != nil {
		return nil, err
	}
	return newResultsIterator(dup), nil
}

// Text returns the recognized UTF-8 text of the current element.
func (it *RecognitionResultsIterator) Text(level engine.Level) (string, error) {
	return it.rh.Text(level)
}

// Confidence returns the mean confidence of the current element as a
// percent probability.
func (it *RecognitionResultsIterator) Confidence(level engine.Level) (float64, error) {
	return it.rh.Confidence(level)
}

// FontAttributes reports the font of the current word.
func (it *RecognitionResultsIterator) FontAttributes() (engine.FontAttributes, error) {
	return it.rh.FontAttributes()
}

// IsDictionaryWord reports whether the current word was found in a
// dictionary.
func (it *RecognitionResultsIterator) IsDictionaryWord() (bool, error) {
	return it.rh.IsDictionaryWord()
}

// IsNumeric reports whether the current word is numeric.
func (it *RecognitionResultsIterator) IsNumeric() (bool, error) {
	return it.rh.IsNumeric()
}

// IsSubscript reports whether the current symbol is a subscript.
func (it *RecognitionResultsIterator) IsSubscript() (bool, error) {
	return it.rh.IsSubscript()
}

// IsSuperscript reports whether the current symbol is a superscript.
func (it *RecognitionResultsIterator) IsSuperscript() (bool, error) {
	return it.rh.IsSuperscript()
}

// IsDropcap reports whether the current symbol is a dropcap.
func (it *RecognitionResultsIterator) IsDropcap() (bool, error) {
	return it.rh.IsDropcap()
}
