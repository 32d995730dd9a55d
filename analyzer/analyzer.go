package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/handle"
	"github.com/dharts/tesskit/observability"
)

// Analyzer runs layout analysis and recognition over the single image it
// was created for. One analysis at a time: the iterator returned by an
// analysis call must be closed before the next call, and the analyzer
// itself must be closed before the factory will produce another.
type Analyzer struct {
	mu      sync.Mutex
	factory *Factory
	eng     *handle.Engine
	img     image.Image
	open    *LayoutIterator
	closed  bool

	log    observability.Logger
	tracer observability.Tracer
}

// Image returns the image this analyzer was created for.
func (a *Analyzer) Image() image.Image { return a.img }

// AnalyzeLayout segments the page without recognizing text and returns an
// iterator over the detected regions.
func (a *Analyzer) AnalyzeLayout(ctx context.Context) (*LayoutIterator, error) {
	return a.analyzeLayout(ctx, nil)
}

// AnalyzeLayoutRegion is AnalyzeLayout restricted to a sub-region of the
// image.
func (a *Analyzer) AnalyzeLayoutRegion(ctx context.Context, region engine.Rect) (*LayoutIterator, error) {
	return a.analyzeLayout(ctx, &region)
}

func (a *Analyzer) analyzeLayout(ctx context.Context, region *engine.Rect) (*LayoutIterator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.beginAnalysisLocked(ctx, "analyze layout", region); err != nil {
		return nil, err
	}

	_, span := a.tracer.StartSpan(ctx, "analyzer.AnalyzeLayout")
	defer span.Finish()

	start := time.Now()
	root, err := a.eng.AnalyseLayout()
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag(observability.MetricAnalyzeTime, time.Since(start))
	it := &LayoutIterator{h: root}
	it.OnClose(func() { a.rootClosed(it) })
	a.open = it
	a.log.Debug("layout analysis complete")
	return it, nil
}

// Recognize runs full character recognition and returns an iterator over
// the results.
func (a *Analyzer) Recognize(ctx context.Context) (*RecognitionResultsIterator, error) {
	return a.recognize(ctx, nil)
}

// RecognizeRegion is Recognize restricted to a sub-region of the image.
func (a *Analyzer) RecognizeRegion(ctx context.Context, region engine.Rect) (*RecognitionResultsIterator, error) {
	return a.recognize(ctx, &region)
}

func (a *Analyzer) recognize(ctx context.Context, region *engine.Rect) (*RecognitionResultsIterator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.beginAnalysisLocked(ctx, "recognize", region); err != nil {
		return nil, err
	}

	_, span := a.tracer.StartSpan(ctx, "analyzer.Recognize")
	defer span.Finish()

	start := time.Now()
	root, err := a.eng.Recognize()
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag(observability.MetricRecognizeTime, time.Since(start))
	it := newResultsIterator(root)
	it.OnClose(func() { a.rootClosed(&it.LayoutIterator) })
	a.open = &it.LayoutIterator
	a.log.Debug("recognition complete")
	return it, nil
}

func (a *Analyzer) beginAnalysisLocked(ctx context.Context, op string, region *engine.Rect) error {
	if a.closed {
		return fmt.Errorf("%s: %w", op, ErrAnalyzerClosed)
	}
	if a.open != nil {
		return fmt.Errorf("%s: %w", op, handle.ErrSessionActive)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if region != nil {
		if err := a.eng.SetRectangle(*region); err != nil {
			// A surviving clone keeps the engine analyzing after the root
			// iterator is closed; report that the same way the analysis
			// calls themselves would.
			var se *handle.StateError
			if errors.As(err, &se) && se.State == handle.StateAnalyzing {
				return fmt.Errorf("%s: %w", op, handle.ErrSessionActive)
			}
			return err
		}
	}
	return nil
}

// rootClosed runs when the iterator of the current analysis is closed.
// Clones of that iterator keep the engine in its analyzing state until they
// too are closed, but the analyzer itself is free again.
func (a *Analyzer) rootClosed(it *LayoutIterator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open == it {
		a.open = nil
	}
}

// Close releases the analyzer so the factory can produce the next one. The
// iterator of the current analysis must be closed first.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return fmt.Errorf("close analyzer: %w", ErrAnalyzerClosed)
	}
	if a.open != nil {
		a.mu.Unlock()
		return fmt.Errorf("close analyzer: %w", ErrIteratorOpen)
	}
	a.closed = true
	a.mu.Unlock()

	a.factory.release(a)
	return nil
}
