// Package tesseract adapts the gosseract client to the native engine
// contract. gosseract exposes whole-page recognition rather than a live
// result cursor, so the adapter runs recognition once per analysis call,
// snapshots the verbose bounding boxes into a pagetree.Page and serves
// cursor traversal from that immutable tree.
package tesseract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/pagetree"
)

// Engine implements engine.API over a gosseract client. It is not safe for
// concurrent use; the lifecycle layer above serializes access.
type Engine struct {
	client *gosseract.Client

	vars    map[string]string
	psm     engine.PageSegMode
	img     image.Image
	rect    *engine.Rect
	pending error
}

// New wraps a fresh gosseract client.
func New() *Engine {
	return &Engine{
		client: gosseract.NewClient(),
		vars:   make(map[string]string),
		psm:    engine.PSMAuto,
	}
}

// stash records the first error from a native call whose contract has no
// error return; it surfaces at the next analysis.
func (e *Engine) stash(err error) {
	if err != nil && e.pending == nil {
		e.pending = err
	}
}

func (e *Engine) takePending() error {
	err := e.pending
	e.pending = nil
	return err
}

func (e *Engine) Init(datapath, language string, mode engine.EngineMode) (int, error) {
	if datapath != "" {
		if err := e.client.SetTessdataPrefix(datapath); err != nil {
			return engine.False, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := e.client.SetLanguage(strings.Split(language, "+")...); err != nil {
		return engine.False, fmt.Errorf("set language: %w", err)
	}
	// gosseract offers no engine-mode selector; the library default (LSTM
	// with legacy fallback) covers every mode but bare legacy.
	_ = mode
	return engine.True, nil
}

func (e *Engine) SetVariable(name, value string) int {
	if err := e.client.SetVariable(gosseract.SettableVariable(name), value); err != nil {
		return engine.False
	}
	e.vars[name] = value
	return engine.True
}

func (e *Engine) IntVariable(name string) (int, int) {
	raw, ok := e.vars[name]
	if !ok {
		return 0, engine.False
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, engine.False
	}
	return v, engine.True
}

func (e *Engine) BoolVariable(name string) (int, int) {
	switch e.vars[name] {
	case "1", "T", "true":
		return engine.True, engine.True
	case "0", "F", "false":
		return engine.False, engine.True
	}
	return 0, engine.False
}

func (e *Engine) FloatVariable(name string) (float64, int) {
	raw, ok := e.vars[name]
	if !ok {
		return 0, engine.False
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, engine.False
	}
	return v, engine.True
}

func (e *Engine) StringVariable(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *Engine) ReadConfigFile(path string) error {
	return e.client.SetConfigFile(path)
}

func (e *Engine) SetPageSegMode(mode engine.PageSegMode) {
	e.psm = mode
	e.stash(e.client.SetPageSegMode(gosseract.PageSegMode(mode)))
}

func (e *Engine) PageSegMode() int { return int(e.psm) }

// SetImage reconstructs an image from the packed raster. The client gets it
// lazily at analysis time so a pending region restriction can be applied as
// a crop first.
func (e *Engine) SetImage(pixels []byte, width, height, bytesPerPixel, bytesPerLine int) {
	e.rect = nil
	switch bytesPerPixel {
	case 1:
		e.img = &image.Gray{Pix: pixels, Stride: bytesPerLine, Rect: image.Rect(0, 0, width, height)}
	case 4:
		e.img = &image.RGBA{Pix: pixels, Stride: bytesPerLine, Rect: image.Rect(0, 0, width, height)}
	default:
		e.img = nil
		e.stash(fmt.Errorf("unsupported pixel stride %d", bytesPerPixel))
	}
}

func (e *Engine) SetSourceResolution(ppi int) {
	if e.SetVariable("user_defined_dpi", strconv.Itoa(ppi)) == engine.False {
		e.stash(fmt.Errorf("set source resolution %d rejected", ppi))
	}
}

func (e *Engine) SetRectangle(x, y, width, height int) {
	e.rect = &engine.Rect{X: x, Y: y, Width: width, Height: height}
}

func (e *Engine) AnalyseLayout() (engine.Cursor, error) {
	return e.snapshot()
}

func (e *Engine) GetIterator() (engine.ResultCursor, error) {
	return e.snapshot()
}

// snapshot pushes the configured image to the client, runs recognition and
// materializes the result hierarchy.
func (e *Engine) snapshot() (*pagetree.Cursor, error) {
	if err := e.takePending(); err != nil {
		return nil, err
	}
	if e.img == nil {
		return nil, errors.New("no image set")
	}

	img := e.img
	var offset image.Point
	if e.rect != nil {
		cropped, err := crop(img, *e.rect)
		if err != nil {
			return nil, err
		}
		img = cropped
		offset = image.Pt(e.rect.X, e.rect.Y)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	page := buildPage(boxes, offset)
	return pagetree.NewCursor(&page, nil), nil
}

func (e *Engine) Delete() {
	e.client.Close()
}

func crop(img image.Image, r engine.Rect) (image.Image, error) {
	rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, errors.New("region outside image bounds")
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, errors.New("image does not support sub-image")
	}
	return sub.SubImage(rect), nil
}

// buildPage groups the verbose word boxes into the page hierarchy using the
// block, paragraph and line numbering the engine assigns. Boxes arrive in
// reading order; a change in any coordinate starts a new branch. Geometry
// for the coarser levels is the union of word geometry, and the baseline is
// derived from the line bottom, which is all gosseract exposes.
func buildPage(boxes []gosseract.BoundingBox, offset image.Point) pagetree.Page {
	upright := engine.BlockOrientation{
		Orientation: engine.OrientationPageUp,
		Direction:   engine.DirectionLeftToRight,
		Order:       engine.OrderTopToBottom,
	}

	var page pagetree.Page
	prev := struct{ block, par, line int }{-1, -1, -1}
	for _, b := range boxes {
		if b.BlockNum != prev.block {
			page.Blocks = append(page.Blocks, pagetree.Block{
				Type:        engine.BlockFlowingText,
				Orientation: upright,
			})
			prev = struct{ block, par, line int }{b.BlockNum, -1, -1}
		}
		block := &page.Blocks[len(page.Blocks)-1]
		if b.ParNum != prev.par {
			block.Paras = append(block.Paras, pagetree.Para{})
			prev.par, prev.line = b.ParNum, -1
		}
		para := &block.Paras[len(block.Paras)-1]
		if b.LineNum != prev.line {
			para.Lines = append(para.Lines, pagetree.Line{})
			prev.line = b.LineNum
		}
		line := &para.Lines[len(para.Lines)-1]
		line.Words = append(line.Words, makeWord(b, offset))
	}

	for bi := range page.Blocks {
		block := &page.Blocks[bi]
		for pi := range block.Paras {
			para := &block.Paras[pi]
			for li := range para.Lines {
				l := &para.Lines[li]
				l.Box = unionBoxes(wordBoxes(l.Words))
				if l.Box != nil {
					l.Baseline = &engine.Baseline{
						X1: l.Box.Left, Y1: l.Box.Bottom,
						X2: l.Box.Right, Y2: l.Box.Bottom,
					}
				}
			}
			para.Box = unionBoxes(lineBoxes(para.Lines))
		}
		block.Box = unionBoxes(paraBoxes(block.Paras))
	}
	return page
}

func makeWord(b gosseract.BoundingBox, offset image.Point) pagetree.Word {
	box := &engine.BoundingBox{
		Left:   b.Box.Min.X + offset.X,
		Top:    b.Box.Min.Y + offset.Y,
		Right:  b.Box.Max.X + offset.X,
		Bottom: b.Box.Max.Y + offset.Y,
	}
	w := pagetree.Word{
		Text:       b.Word,
		Box:        box,
		Confidence: b.Confidence,
	}
	if _, err := strconv.ParseFloat(b.Word, 64); err == nil {
		w.Numeric = true
	}
	for _, r := range b.Word {
		w.Symbols = append(w.Symbols, pagetree.Symbol{Text: string(r)})
	}
	return w
}

func wordBoxes(words []pagetree.Word) []*engine.BoundingBox {
	out := make([]*engine.BoundingBox, len(words))
	for i := range words {
		out[i] = words[i].Box
	}
	return out
}

func lineBoxes(lines []pagetree.Line) []*engine.BoundingBox {
	out := make([]*engine.BoundingBox, len(lines))
	for i := range lines {
		out[i] = lines[i].Box
	}
	return out
}

func paraBoxes(paras []pagetree.Para) []*engine.BoundingBox {
	out := make([]*engine.BoundingBox, len(paras))
	for i := range paras {
		out[i] = paras[i].Box
	}
	return out
}

func unionBoxes(boxes []*engine.BoundingBox) *engine.BoundingBox {
	var u *engine.BoundingBox
	for _, b := range boxes {
		if b == nil {
			continue
		}
		if u == nil {
			c := *b
			u = &c
			continue
		}
		if b.Left < u.Left {
			u.Left = b.Left
		}
		if b.Top < u.Top {
			u.Top = b.Top
		}
		if b.Right > u.Right {
			u.Right = b.Right
		}
		if b.Bottom > u.Bottom {
			u.Bottom = b.Bottom
		}
	}
	return u
}
