package engine

import "fmt"

// Level identifies a granularity in the page hierarchy. The numeric values
// match the native RIL_* constants and must not be reordered.
type Level int

const (
	// LevelBlock is a block of text, image or separator line.
	LevelBlock Level = iota
	// LevelPara is a paragraph within a block.
	LevelPara
	// LevelTextline is a line within a paragraph.
	LevelTextline
	// LevelWord is a word within a textline.
	LevelWord
	// LevelSymbol is a symbol/character within a word.
	LevelSymbol
)

func (l Level) String() string {
	switch l {
	case LevelBlock:
		return "block"
	case LevelPara:
		return "para"
	case LevelTextline:
		return "textline"
	case LevelWord:
		return "word"
	case LevelSymbol:
		return "symbol"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// EngineMode selects which recognition engine the native library runs.
// Values match the native TessOcrEngineMode numbering.
type EngineMode int

const (
	ModeTesseractOnly EngineMode = iota
	ModeCubeOnly
	ModeTesseractCubeCombined
	// ModeDefault infers the mode from the language traineddata, falling
	// back to ModeTesseractOnly.
	ModeDefault
)

// PageSegMode controls how the native engine segments the page before
// analysis. Values match the native TessPageSegMode numbering.
type PageSegMode int

const (
	PSMOSDOnly PageSegMode = iota
	PSMAutoOSD
	PSMAutoOnly
	PSMAuto
	PSMSingleColumn
	PSMSingleBlockVertText
	PSMSingleBlock
	PSMSingleLine
	PSMSingleWord
	PSMCircleWord
	PSMSingleChar

	pageSegModeCount
)

// Valid reports whether the mode is inside the native enum domain.
func (m PageSegMode) Valid() bool { return m >= PSMOSDOnly && m < pageSegModeCount }

// Orientation of a block, in 90-degree steps.
type Orientation int

const (
	OrientationPageUp Orientation = iota
	OrientationPageRight
	OrientationPageDown
	OrientationPageLeft

	orientationCount
)

// WritingDirection within a block.
type WritingDirection int

const (
	DirectionLeftToRight WritingDirection = iota
	DirectionRightToLeft
	DirectionTopToBottom

	writingDirectionCount
)

// TextlineOrder is the order in which textlines are read within a block.
type TextlineOrder int

const (
	OrderLeftToRight TextlineOrder = iota
	OrderRightToLeft
	OrderTopToBottom

	textlineOrderCount
)

// PolyBlockType classifies a layout block. Values match the native
// PolyBlockType numbering.
type PolyBlockType int

const (
	BlockUnknown PolyBlockType = iota
	BlockFlowingText
	BlockHeadingText
	BlockPulloutText
	BlockTable
	BlockVerticalText
	BlockCaptionText
	BlockFlowingImage
	BlockHeadingImage
	BlockPulloutImage
	BlockHorzLine
	BlockVertLine
	BlockNoise

	polyBlockTypeCount
)

// Valid reports whether the type is inside the native enum domain.
func (t PolyBlockType) Valid() bool { return t >= BlockUnknown && t < polyBlockTypeCount }

// IsText reports whether the block carries recognizable text.
func (t PolyBlockType) IsText() bool {
	switch t {
	case BlockFlowingText, BlockHeadingText, BlockPulloutText, BlockVerticalText, BlockCaptionText, BlockTable:
		return true
	}
	return false
}

// Rect is a region of interest in pixel coordinates, origin at the top-left
// corner of the image.
type Rect struct {
	X, Y          int
	Width, Height int
}

// BoundingBox is the axis-aligned box of a page element. Coordinates are at
// the cracks between pixels: the box of the single top-left pixel is
// (0,0)-(1,1). When a region of interest has been set, coordinates still
// relate to the full image.
type BoundingBox struct {
	Left, Top, Right, Bottom int
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() int { return b.Right - b.Left }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() int { return b.Bottom - b.Top }

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.Left, b.Top, b.Right, b.Bottom)
}

// Baseline is the line passing through (X1,Y1) and (X2,Y2). With vertical
// text, baselines may be vertical.
type Baseline struct {
	X1, Y1, X2, Y2 int
}

func (b Baseline) String() string {
	return fmt.Sprintf("baseline (%d,%d)x(%d,%d)", b.X1, b.Y1, b.X2, b.Y2)
}

// BlockOrientation bundles the orientation facts reported for a block:
// orientation, writing direction, textline order and the deskew angle in
// radians (-pi/4 <= angle <= pi/4, measured after upright rotation).
type BlockOrientation struct {
	Orientation Orientation
	Direction   WritingDirection
	Order       TextlineOrder
	DeskewAngle float64
}

// FontAttributes describes the font of the current word. When queried at a
// coarser level the native engine reports the first word's attributes.
type FontAttributes struct {
	Name       string
	Bold       bool
	Italic     bool
	Underlined bool
	Monospace  bool
	Serif      bool
	SmallCaps  bool
	PointSize  int
	FontID     int
}

// RawFontAttributes is the unconverted form produced at the native boundary:
// flags are still integer sentinels.
type RawFontAttributes struct {
	Name       string
	Bold       int
	Italic     int
	Underlined int
	Monospace  int
	Serif      int
	SmallCaps  int
	PointSize  int
	FontID     int
}
