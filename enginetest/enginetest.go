// Package enginetest provides a scripted in-memory implementation of the
// native engine contract. It serves a pagetree.Page through real cursor
// semantics, records every call for assertions, and can inject the failure
// modes the lifecycle layer has to survive: failing initialization,
// rejected variables and out-of-domain boolean responses. It exists so the
// handle and analyzer packages are testable without a native tesseract
// installation.
package enginetest

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/pagetree"
)

// Engine is a scripted engine.API. The exported knob fields must be set
// before the engine is handed to the code under test.
type Engine struct {
	// FailInit makes Init return the native False sentinel.
	FailInit bool
	// InitErr is returned from Init as a binding-level fault.
	InitErr error
	// CorruptNext, when non-zero, is returned verbatim from every cursor
	// Next call, simulating an engine that breaks the boolean contract.
	CorruptNext int
	// UnknownVariables lists names SetVariable rejects.
	UnknownVariables map[string]bool

	mu   sync.Mutex
	page pagetree.Page
	live atomic.Int32

	deleted    bool
	datapath   string
	language   string
	mode       engine.EngineMode
	vars       map[string]string
	psm        engine.PageSegMode
	resolution int
	rect       *engine.Rect
	images     int
	configs    []string
}

// New returns an engine serving the given page.
func New(page pagetree.Page) *Engine {
	return &Engine{page: page, vars: make(map[string]string), psm: engine.PSMAuto}
}

// NewThreeBlock returns an engine serving the canonical three-block page.
func NewThreeBlock() *Engine { return New(ThreeBlockPage()) }

// LiveCursors reports how many native cursors are currently undeleted.
func (e *Engine) LiveCursors() int { return int(e.live.Load()) }

// Deleted reports whether the engine instance has been destroyed.
func (e *Engine) Deleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleted
}

// Language reports the language recorded at Init.
func (e *Engine) Language() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// Vars returns a copy of every variable accepted so far.
func (e *Engine) Vars() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out
}

// Images reports how many times SetImage was called.
func (e *Engine) Images() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.images
}

// Rect reports the last region of interest set, or nil.
func (e *Engine) Rect() *engine.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

// Resolution reports the last source resolution set.
func (e *Engine) Resolution() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolution
}

// Configs reports every config file loaded, in order.
func (e *Engine) Configs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.configs...)
}

func (e *Engine) checkAlive() {
	if e.deleted {
		panic("enginetest: use of deleted engine")
	}
}

func (e *Engine) Init(datapath, language string, mode engine.EngineMode) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	if e.InitErr != nil {
		return engine.False, e.InitErr
	}
	if e.FailInit {
		return engine.False, nil
	}
	e.datapath = datapath
	e.language = language
	e.mode = mode
	return engine.True, nil
}

func (e *Engine) SetVariable(name, value string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	if e.UnknownVariables[name] {
		return engine.False
	}
	e.vars[name] = value
	return engine.True
}

func (e *Engine) IntVariable(name string) (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
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
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	switch e.vars[name] {
	case "1", "T", "true":
		return engine.True, engine.True
	case "0", "F", "false":
		return engine.False, engine.True
	}
	return 0, engine.False
}

func (e *Engine) FloatVariable(name string) (float64, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
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
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	v, ok := e.vars[name]
	return v, ok
}

func (e *Engine) ReadConfigFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	e.configs = append(e.configs, path)
	return nil
}

func (e *Engine) SetPageSegMode(mode engine.PageSegMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	e.psm = mode
}

func (e *Engine) PageSegMode() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	return int(e.psm)
}

func (e *Engine) SetImage(pixels []byte, width, height, bytesPerPixel, bytesPerLine int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	e.images++
	e.rect = nil
}

func (e *Engine) SetSourceResolution(ppi int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	e.resolution = ppi
}

func (e *Engine) SetRectangle(x, y, width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	e.rect = &engine.Rect{X: x, Y: y, Width: width, Height: height}
}

func (e *Engine) AnalyseLayout() (engine.Cursor, error) {
	return e.newCursor()
}

func (e *Engine) GetIterator() (engine.ResultCursor, error) {
	return e.newCursor()
}

func (e *Engine) newCursor() (*cursor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	if len(e.page.Blocks) == 0 {
		return nil, errors.New("no page scripted")
	}
	e.live.Add(1)
	return &cursor{
		Cursor: pagetree.NewCursor(&e.page, func() { e.live.Add(-1) }),
		eng:    e,
	}, nil
}

func (e *Engine) Delete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAlive()
	e.deleted = true
}

// cursor wraps the pagetree cursor so copies are counted and the
// CorruptNext knob applies to clones as well.
type cursor struct {
	*pagetree.Cursor
	eng *Engine
}

func (c *cursor) Copy() (engine.Cursor, error) {
	dup, err := c.Cursor.Copy()
	if err != nil {
		return nil, err
	}
	c.eng.live.Add(1)
	return &cursor{Cursor: dup.(*pagetree.Cursor), eng: c.eng}, nil
}

func (c *cursor) Next(level engine.Level) int {
	if v := c.eng.CorruptNext; v != 0 {
		return v
	}
	return c.Cursor.Next(level)
}
