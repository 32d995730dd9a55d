package analyzer

import "errors"

var (
	// ErrAnalyzerActive is returned by Factory.NewAnalyzer while a previous
	// analyzer has not been closed. The factory owns a single native engine
	// and analyzers serialize access to it.
	ErrAnalyzerActive = errors.New("an analyzer is already active")

	// ErrAnalyzerClosed is returned by operations on a closed analyzer.
	ErrAnalyzerClosed = errors.New("analyzer closed")

	// ErrFactoryClosed is returned by operations on a closed factory.
	ErrFactoryClosed = errors.New("factory closed")

	// ErrIteratorOpen is returned by Analyzer.Close while the iterator of
	// the current analysis has not been closed.
	ErrIteratorOpen = errors.New("result iterator still open")

	// ErrNoBaseline is returned by Baseline for elements without one, such
	// as the degenerate line of an image block.
	ErrNoBaseline = errors.New("element has no baseline")
)
