package engine

// Native boolean sentinels. The native engine reports success and truth as
// these two integer values; anything else is a broken boundary contract.
const (
	False = 0
	True  = 1
)

// API is one native engine instance. Implementations do not validate call
// ordering: calling SetRectangle before SetImage, or any method after
// Delete, is undefined behavior at this layer. Package handle provides the
// ordering guarantees.
type API interface {
	// Init loads traineddata for the given language from datapath and
	// prepares the instance. It returns a native boolean reporting success.
	// The error return is reserved for faults in the binding itself (for
	// example a failed client allocation), not recognition problems.
	Init(datapath, language string, mode EngineMode) (int, error)

	// SetVariable sets a named engine parameter, exactly as it would appear
	// in a config file. Returns a native boolean; False means the name
	// lookup failed.
	SetVariable(name, value string) int

	// IntVariable, BoolVariable, FloatVariable and StringVariable read
	// back a parameter value. The int return (bool for StringVariable) is
	// the native success sentinel.
	IntVariable(name string) (int, int)
	BoolVariable(name string) (int, int)
	FloatVariable(name string) (float64, int)
	StringVariable(name string) (string, bool)

	// ReadConfigFile loads a name/value config file, resolved relative to
	// the datapath's tessdata/configs directory unless absolute.
	ReadConfigFile(path string) error

	// SetPageSegMode selects the segmentation mode for subsequent analysis.
	SetPageSegMode(mode PageSegMode)
	// PageSegMode reports the mode currently in effect, as a raw int.
	PageSegMode() int

	// SetImage hands the engine a packed pixel buffer. The engine clears
	// all prior analysis state and resets the region to the full image.
	SetImage(pixels []byte, width, height, bytesPerPixel, bytesPerLine int)

	// SetSourceResolution declares the source image resolution in pixels
	// per inch. Must follow SetImage.
	SetSourceResolution(ppi int)

	// SetRectangle restricts subsequent analysis to a sub-region of the
	// current image.
	SetRectangle(x, y, width, height int)

	// AnalyseLayout runs page-layout analysis and returns the root cursor
	// over the results.
	AnalyseLayout() (Cursor, error)

	// GetIterator runs full recognition and returns the root cursor over
	// the recognition results.
	GetIterator() (ResultCursor, error)

	// Delete destroys the native instance. No method may be called after.
	Delete()
}

// Cursor is a native position indicator into the engine's current analysis
// results. Cursors point into engine-owned memory: they are valid only
// while the results they were created from are still the engine's current
// results, and every cursor obtained from the engine (including copies)
// must be released with Delete.
type Cursor interface {
	// Copy duplicates the cursor. The copy starts at the same position and
	// advances independently afterwards.
	Copy() (Cursor, error)
	// Delete destroys this cursor.
	Delete()

	// Begin repositions the cursor at the start of the page.
	Begin()

	// Next moves to the next element in reading order at the given level
	// and returns a native boolean: False once the page is exhausted.
	// Calls at different levels may be freely interleaved. At LevelSymbol
	// non-text blocks are skipped; at every other level a non-text block is
	// visited once, as a degenerate single-paragraph/line/word unit.
	Next(level Level) int

	// IsAtBeginningOf returns a native boolean reporting whether the
	// cursor sits at the first element of an object at the given level.
	IsAtBeginningOf(level Level) int

	// IsAtFinalElement returns a native boolean reporting whether the
	// current element of type element is the last one within level.
	IsAtFinalElement(level, element Level) int

	// BoundingBox returns a native boolean reporting whether the current
	// element has geometry at the given level, and the box when it does.
	BoundingBox(level Level) (int, BoundingBox)

	// Baseline returns a native boolean reporting whether a baseline
	// exists at the given level, and the segment when it does.
	Baseline(level Level) (int, Baseline)

	// Orientation reports block-level orientation facts as raw ints plus
	// the deskew angle. It always operates at LevelBlock.
	Orientation() (orientation, direction, order int, deskew float64)

	// BlockType returns the raw PolyBlockType of the current block.
	BlockType() int
}

// ResultCursor extends Cursor with accessors that exist only on recognition
// results. Word-level accessors invoked at a coarser level report the first
// word; symbol-level accessors invoked at a coarser level report the first
// symbol.
type ResultCursor interface {
	Cursor

	// Text returns the recognized UTF-8 text of the current element.
	Text(level Level) string

	// Confidence returns the mean confidence of the current element as a
	// percent probability (0-100).
	Confidence(level Level) float64

	// WordFontAttributes reports the current word's font, with boolean
	// flags still in native sentinel form.
	WordFontAttributes() RawFontAttributes

	WordIsFromDictionary() int
	WordIsNumeric() int
	SymbolIsSubscript() int
	SymbolIsSuperscript() int
	SymbolIsDropcap() int
}
