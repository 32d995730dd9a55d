package handle

import (
	"fmt"
	"sync"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/observability"
)

// State of an Engine. Transitions are one-directional except for the
// ImageSet <-> Analyzing cycle:
//
//	Uninitialized -> Initialized -> ImageSet <-> Analyzing
//
// with Closed reachable from everywhere and terminal.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateImageSet
	StateAnalyzing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateImageSet:
		return "image-set"
	case StateAnalyzing:
		return "analyzing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// activeStates are the states in which the engine holds loaded traineddata.
var activeStates = []State{StateInitialized, StateImageSet, StateAnalyzing}

// Engine wraps one native engine instance behind a state machine. Every
// method performs its precondition check and state update as one
// mutex-guarded step, so concurrent callers cannot both observe a
// permissive state and proceed. An Engine must be closed after use; the
// native instance is never reclaimed by the garbage collector.
type Engine struct {
	mu    sync.Mutex
	api   engine.API
	state State

	// fixed at Init
	language string
	mode     engine.EngineMode

	log observability.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log observability.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New wraps a native instance. The caller transfers ownership: the engine
// will call Delete on Close and the instance must not be used directly
// afterwards.
func New(api engine.API, opts ...Option) *Engine {
	e := &Engine{api: api, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) requireLocked(op string, sentinel error, want ...State) error {
	for _, s := range want {
		if e.state == s {
			return nil
		}
	}
	if sentinel == nil && e.state == StateClosed {
		sentinel = ErrClosed
	}
	return &StateError{Op: op, State: e.state, Want: want, sentinel: sentinel}
}

// Init loads traineddata and moves the engine to Initialized. Language and
// mode are fixed from here on. On native failure the engine stays
// uninitialized and ErrInitFailed is returned.
func (e *Engine) Init(datapath, language string, mode engine.EngineMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var sentinel error
	if e.state != StateUninitialized && e.state != StateClosed {
		sentinel = ErrAlreadyInitialized
	}
	if err := e.requireLocked("init", sentinel, StateUninitialized); err != nil {
		return err
	}

	rv, err := e.api.Init(datapath, language, mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	ok, err := nativeBool("init", rv)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: language %q, datapath %q", ErrInitFailed, language, datapath)
	}

	e.language = language
	e.mode = mode
	e.state = StateInitialized
	e.log.Debug("engine initialized", observability.String("language", language))
	return nil
}

// InitLanguage returns the language string the engine was initialized with.
// Languages loaded as dependencies of that string are not included.
func (e *Engine) InitLanguage() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("init language", nil, activeStates...); err != nil {
		return "", err
	}
	return e.language, nil
}

// SetVariable sets a named engine parameter. Variables may change between
// images but are frozen while analysis cursors are open: the native engine
// does not support reconfiguration mid-analysis, so the attempt is rejected
// rather than discouraged.
func (e *Engine) SetVariable(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("set variable", nil, StateInitialized, StateImageSet); err != nil {
		return err
	}
	ok, err := nativeBool("set variable", e.api.SetVariable(name, value))
	if err != nil {
		return err
	}
	if !ok {
		return &engine.BadVariablesError{Vars: map[string]string{name: value}}
	}
	return nil
}

// IntVariable reads back an integer parameter.
func (e *Engine) IntVariable(name string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("get variable", nil, activeStates...); err != nil {
		return 0, err
	}
	v, rv := e.api.IntVariable(name)
	if err := e.checkVariableRead(name, rv); err != nil {
		return 0, err
	}
	return v, nil
}

// BoolVariable reads back a boolean parameter.
func (e *Engine) BoolVariable(name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("get variable", nil, activeStates...); err != nil {
		return false, err
	}
	v, rv := e.api.BoolVariable(name)
	if err := e.checkVariableRead(name, rv); err != nil {
		return false, err
	}
	return nativeBool("get bool variable", v)
}

// FloatVariable reads back a floating-point parameter.
func (e *Engine) FloatVariable(name string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("get variable", nil, activeStates...); err != nil {
		return 0, err
	}
	v, rv := e.api.FloatVariable(name)
	if err := e.checkVariableRead(name, rv); err != nil {
		return 0, err
	}
	return v, nil
}

// StringVariable reads back a string parameter.
func (e *Engine) StringVariable(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("get variable", nil, activeStates...); err != nil {
		return "", err
	}
	v, ok := e.api.StringVariable(name)
	if !ok {
		return "", &engine.BadVariablesError{Vars: map[string]string{name: ""}}
	}
	return v, nil
}

func (e *Engine) checkVariableRead(name string, rv int) error {
	ok, err := nativeBool("get variable", rv)
	if err != nil {
		return err
	}
	if !ok {
		return &engine.BadVariablesError{Vars: map[string]string{name: ""}}
	}
	return nil
}

// ReadConfigFile loads a name/value config file through the native engine.
func (e *Engine) ReadConfigFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("read config file", nil, StateInitialized, StateImageSet); err != nil {
		return err
	}
	if err := e.api.ReadConfigFile(path); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// SetPageSegMode selects the segmentation mode for subsequent analysis.
func (e *Engine) SetPageSegMode(mode engine.PageSegMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("set page seg mode", nil, StateInitialized, StateImageSet); err != nil {
		return err
	}
	e.api.SetPageSegMode(mode)
	return nil
}

// PageSegMode reports the segmentation mode currently in effect.
func (e *Engine) PageSegMode() (engine.PageSegMode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("page seg mode", nil, activeStates...); err != nil {
		return 0, err
	}
	mode := engine.PageSegMode(e.api.PageSegMode())
	if !mode.Valid() {
		return 0, &engine.InvalidResponseError{Op: "page seg mode", Value: int(mode)}
	}
	return mode, nil
}

// SetImage hands the engine a packed pixel buffer and moves to ImageSet.
// Re-setting the image is always legal from Initialized or ImageSet; the
// native engine clears prior analysis state when it happens. Calling this
// while cursors are open would silently redirect them to the new image,
// which is why the Analyzing state rejects it.
func (e *Engine) SetImage(pixels []byte, width, height, bytesPerPixel, bytesPerLine int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("set image", nil, StateInitialized, StateImageSet); err != nil {
		return err
	}
	e.api.SetImage(pixels, width, height, bytesPerPixel, bytesPerLine)
	e.state = StateImageSet
	e.log.Debug("image set",
		observability.Int("width", width),
		observability.Int("height", height),
		observability.Int(observability.MetricImageBytes, len(pixels)))
	return nil
}

// SetSourceResolution declares the source image resolution in pixels per
// inch. Must follow SetImage.
func (e *Engine) SetSourceResolution(ppi int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("set source resolution", nil, StateImageSet); err != nil {
		return err
	}
	if ppi < 0 {
		return &engine.BadVariablesError{Vars: map[string]string{"source resolution": fmt.Sprint(ppi)}}
	}
	e.api.SetSourceResolution(ppi)
	return nil
}

// SetRectangle restricts subsequent analysis to a sub-region of the image.
// It does not change state.
func (e *Engine) SetRectangle(r engine.Rect) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLocked("set rectangle", nil, StateImageSet); err != nil {
		return err
	}
	e.api.SetRectangle(r.X, r.Y, r.Width, r.Height)
	return nil
}

// AnalyseLayout runs page-layout analysis and returns the root cursor over
// the results. The engine stays in Analyzing until that cursor and every
// clone of it have been disposed.
func (e *Engine) AnalyseLayout() (*Cursor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAnalysisLocked("analyse layout"); err != nil {
		return nil, err
	}
	cur, err := e.api.AnalyseLayout()
	if err != nil {
		return nil, fmt.Errorf("analyse layout: %w", err)
	}
	ctx := newContext(e, cur)
	e.state = StateAnalyzing
	e.log.Debug("layout analysis started")
	return &Cursor{ctx: ctx, cur: cur}, nil
}

// Recognize runs full recognition and returns the root cursor over the
// recognition results. Release semantics match AnalyseLayout.
func (e *Engine) Recognize() (*ResultCursor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAnalysisLocked("recognize"); err != nil {
		return nil, err
	}
	cur, err := e.api.GetIterator()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	ctx := newContext(e, cur)
	e.state = StateAnalyzing
	e.log.Debug("recognition started")
	return &ResultCursor{Cursor: Cursor{ctx: ctx, cur: cur}, res: cur}, nil
}

func (e *Engine) requireAnalysisLocked(op string) error {
	var sentinel error
	if e.state == StateAnalyzing {
		sentinel = ErrSessionActive
	}
	return e.requireLocked(op, sentinel, StateImageSet)
}

// analysisReleased is invoked by the context when the last cursor derived
// from an analysis call has been released. It is the only path out of
// Analyzing other than Close.
func (e *Engine) analysisReleased() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateAnalyzing {
		e.state = StateImageSet
		e.log.Debug("analysis results released")
	}
}

// Close destroys the native instance. It succeeds from any state except
// Closed; a second Close returns ErrAlreadyClosed, and every other
// operation afterwards returns ErrClosed. Cursors still open at close time
// are native leaks the caller is responsible for; they are reported, not
// recovered.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateClosed {
		return &StateError{
			Op:       "close",
			State:    e.state,
			Want:     []State{StateUninitialized, StateInitialized, StateImageSet, StateAnalyzing},
			sentinel: ErrAlreadyClosed,
		}
	}
	if e.state == StateAnalyzing {
		e.log.Warn("engine closed with analysis cursors still open; native cursors leak")
	}
	e.api.Delete()
	e.state = StateClosed
	e.log.Debug("engine closed")
	return nil
}
