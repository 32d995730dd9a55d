// Package analyzer is the high-level entry point of the library. A Factory
// owns one native engine instance configured for a traineddata directory
// and language; it hands out one Analyzer at a time, each bound to a single
// image, and each Analyzer hands out one result iterator at a time. The
// package enforces the engine's sharing discipline so callers get fail-fast
// errors instead of native crashes.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/handle"
	"github.com/dharts/tesskit/observability"
	"github.com/dharts/tesskit/pixels"
)

// Factory creates Analyzers over one shared engine instance. Factories are
// safe for concurrent use; the analyzers they produce are not, and only one
// may exist at a time.
type Factory struct {
	mu       sync.Mutex
	eng      *handle.Engine
	active   *Analyzer
	sessions int
	closed   bool

	log    observability.Logger
	tracer observability.Tracer
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger attaches a logger to the factory, its engine and every
// analyzer it creates.
func WithLogger(log observability.Logger) Option {
	return func(f *Factory) { f.log = log }
}

// WithTracer attaches a tracer; analysis operations run inside spans.
func WithTracer(tracer observability.Tracer) Option {
	return func(f *Factory) { f.tracer = tracer }
}

// New initializes an engine over the traineddata directory and returns a
// factory bound to it. The directory is checked before the engine is
// touched: the native layer reports a missing datapath as a bare
// initialization failure, and the I/O error is the more useful diagnosis.
// The factory takes ownership of api and destroys it on Close.
func New(api engine.API, datapath, language string, mode engine.EngineMode, opts ...Option) (*Factory, error) {
	info, err := os.Stat(datapath)
	if err != nil {
		return nil, fmt.Errorf("traineddata path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("traineddata path %s: not a directory", datapath)
	}

	f := &Factory{
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.eng = handle.New(api, handle.WithLogger(f.log))

	if err := f.eng.Init(datapath, language, mode); err != nil {
		return nil, err
	}
	if err := f.eng.SetPageSegMode(engine.PSMAuto); err != nil {
		return nil, err
	}
	f.log.Info("analyzer factory ready",
		observability.String("language", language),
		observability.String("datapath", datapath))
	return f, nil
}

// Engine exposes the underlying lifecycle engine for variable reads and
// diagnostics. Mutating it directly while an analyzer is active breaks the
// sharing discipline the factory exists to enforce.
func (f *Factory) Engine() *handle.Engine { return f.eng }

// NewAnalyzer configures the engine for one image and returns the analyzer
// bound to it. Only one analyzer may be active; close it before requesting
// the next. Rejected variables are collected and reported together.
func (f *Factory) NewAnalyzer(ctx context.Context, img image.Image, opts ...PageOption) (*Analyzer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFactoryClosed
	}
	if f.active != nil {
		return nil, ErrAnalyzerActive
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg pageConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := f.configure(cfg); err != nil {
		return nil, err
	}

	buf := pixels.FromImage(img)
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := f.eng.SetImage(buf.Data, buf.Width, buf.Height, buf.BytesPerPixel, buf.BytesPerLine); err != nil {
		return nil, err
	}
	if cfg.resolution != 0 {
		if err := f.eng.SetSourceResolution(cfg.resolution); err != nil {
			return nil, err
		}
	}

	a := &Analyzer{
		factory: f,
		eng:     f.eng,
		img:     img,
		log:     f.log,
		tracer:  f.tracer,
	}
	f.active = a
	f.sessions++
	f.log.Debug("analyzer created", observability.Int(observability.MetricSessionCount, f.sessions))
	return a, nil
}

// configure applies per-page settings before the image is set. Variable
// rejections are merged so the caller learns about all of them at once.
func (f *Factory) configure(cfg pageConfig) error {
	if cfg.psmSet {
		if err := f.eng.SetPageSegMode(cfg.psm); err != nil {
			return err
		}
	}
	for _, path := range cfg.configs {
		if err := f.eng.ReadConfigFile(path); err != nil {
			return err
		}
	}

	bad := make(map[string]string)
	for name, value := range cfg.vars {
		err := f.eng.SetVariable(name, value)
		if err == nil {
			continue
		}
		var bv *engine.BadVariablesError
		if !errors.As(err, &bv) {
			return err
		}
		for k, v := range bv.Vars {
			bad[k] = v
		}
	}
	if len(bad) > 0 {
		return &engine.BadVariablesError{Vars: bad}
	}
	return nil
}

// release is called by Analyzer.Close.
func (f *Factory) release(a *Analyzer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == a {
		f.active = nil
	}
}

// Close destroys the engine. The active analyzer, if any, must be closed
// first.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("close factory: %w", ErrFactoryClosed)
	}
	if f.active != nil {
		return fmt.Errorf("close factory: %w", ErrAnalyzerActive)
	}
	f.closed = true
	return f.eng.Close()
}
