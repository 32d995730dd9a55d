package handle

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/enginetest"
	"github.com/dharts/tesskit/observability"
)

func setImage(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.SetImage(make([]byte, 64*64), 64, 64, 1, 64); err != nil {
		t.Fatalf("set image: %v", err)
	}
}

func initialized(t *testing.T, fake *enginetest.Engine) *Engine {
	t.Helper()
	e := New(fake)
	if err := e.Init("/usr/share/tessdata", "eng", engine.ModeDefault); err != nil {
		t.Fatalf("init: %v", err)
	}
	return e
}

func TestLifecycleStates(t *testing.T) {
	fake := enginetest.NewThreeBlock()
	e := New(fake)

	if got := e.State(); got != StateUninitialized {
		t.Fatalf("fresh engine in state %v", got)
	}
	if err := e.SetImage(nil, 0, 0, 0, 0); err == nil {
		t.Fatal("set image before init succeeded")
	}
	if err := e.Init("/usr/share/tessdata", "eng", engine.ModeDefault); err != nil {
		t.Fatalf("init: %v", err)
	}
	if got := e.State(); got != StateInitialized {
		t.Fatalf("after init in state %v", got)
	}
	if err := e.Init("/usr/share/tessdata", "deu", engine.ModeDefault); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second init: %v", err)
	}

	setImage(t, e)
	if got := e.State(); got != StateImageSet {
		t.Fatalf("after set image in state %v", got)
	}
	// Re-setting the image stays legal until analysis begins.
	setImage(t, e)

	cur, err := e.AnalyseLayout()
	if err != nil {
		t.Fatalf("analyse layout: %v", err)
	}
	if got := e.State(); got != StateAnalyzing {
		t.Fatalf("after analyse layout in state %v", got)
	}
	if err := e.SetImage(nil, 0, 0, 0, 0); err == nil {
		t.Fatal("set image with open cursors succeeded")
	}

	if err := cur.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if got := e.State(); got != StateImageSet {
		t.Fatalf("after release in state %v", got)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !fake.Deleted() {
		t.Fatal("close did not destroy the native instance")
	}
	if _, err := e.InitLanguage(); !errors.Is(err, ErrClosed) {
		t.Fatalf("operation after close: %v", err)
	}
	if err := e.Close(); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("second close: %v", err)
	}
}

func TestInitNativeFailure(t *testing.T) {
	fake := enginetest.NewThreeBlock()
	fake.FailInit = true
	e := New(fake)

	err := e.Init("/usr/share/tessdata", "xyz", engine.ModeDefault)
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("expected init failure, got %v", err)
	}
	if got := e.State(); got != StateUninitialized {
		t.Fatalf("failed init left engine in state %v", got)
	}

	// The engine is reusable once the cause is gone.
	fake.FailInit = false
	if err := e.Init("/usr/share/tessdata", "eng", engine.ModeDefault); err != nil {
		t.Fatalf("retry init: %v", err)
	}
}

func TestInitBindingError(t *testing.T) {
	fake := enginetest.NewThreeBlock()
	fake.InitErr = errors.New("liblept missing")
	e := New(fake)

	err := e.Init("/usr/share/tessdata", "eng", engine.ModeDefault)
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("expected init failure, got %v", err)
	}
}

func TestVariables(t *testing.T) {
	fake := enginetest.NewThreeBlock()
	fake.UnknownVariables = map[string]bool{"no_such_variable": true}
	e := initialized(t, fake)

	var bad *engine.BadVariablesError
	err := e.SetVariable("no_such_variable", "1")
	if !errors.As(err, &bad) {
		t.Fatalf("expected BadVariablesError, got %v", err)
	}
	if bad.Vars["no_such_variable"] != "1" {
		t.Fatalf("rejected variable not reported: %v", bad.Vars)
	}

	if err := e.SetVariable("classify_enable_learning", "0"); err != nil {
		t.Fatalf("set variable: %v", err)
	}
	v, err := e.BoolVariable("classify_enable_learning")
	if err != nil || v {
		t.Fatalf("bool read-back: %v %v", v, err)
	}
	if err := e.SetVariable("tessedit_pageseg_mode", "6"); err != nil {
		t.Fatalf("set variable: %v", err)
	}
	n, err := e.IntVariable("tessedit_pageseg_mode")
	if err != nil || n != 6 {
		t.Fatalf("int read-back: %v %v", n, err)
	}
	if _, err := e.IntVariable("never_set"); !errors.As(err, &bad) {
		t.Fatalf("unset variable read: %v", err)
	}
}

func TestVariablesChangeBetweenImages(t *testing.T) {
	e := initialized(t, enginetest.NewThreeBlock())
	setImage(t, e)
	if err := e.SetVariable("user_defined_dpi", "300"); err != nil {
		t.Fatalf("set variable after image: %v", err)
	}

	cur, err := e.AnalyseLayout()
	if err != nil {
		t.Fatalf("analyse layout: %v", err)
	}
	if err := e.SetVariable("user_defined_dpi", "70"); err == nil {
		t.Fatal("set variable with open cursors succeeded")
	}
	cur.Dispose()
}

func TestReadConfigFile(t *testing.T) {
	fake := enginetest.NewThreeBlock()
	e := initialized(t, fake)

	if err := e.ReadConfigFile("digits"); err != nil {
		t.Fatalf("read config file: %v", err)
	}
	setImage(t, e)
	if err := e.ReadConfigFile("quiet"); err != nil {
		t.Fatalf("read config file after image: %v", err)
	}
	if got := fake.Configs(); len(got) != 2 || got[0] != "digits" || got[1] != "quiet" {
		t.Fatalf("configs not forwarded: %v", got)
	}

	cur, err := e.AnalyseLayout()
	if err != nil {
		t.Fatalf("analyse layout: %v", err)
	}
	defer cur.Dispose()
	if err := e.ReadConfigFile("digits"); err == nil {
		t.Fatal("read config file with open cursors succeeded")
	}
}

func TestSessionActive(t *testing.T) {
	e := initialized(t, enginetest.NewThreeBlock())
	setImage(t, e)

	cur, err := e.AnalyseLayout()
	if err != nil {
		t.Fatalf("analyse layout: %v", err)
	}
	if _, err := e.Recognize(); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second analysis: %v", err)
	}

	if err := cur.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	rc, err := e.Recognize()
	if err != nil {
		t.Fatalf("recognize after release: %v", err)
	}
	rc.Dispose()
}

func TestPageSegMode(t *testing.T) {
	e := initialized(t, enginetest.NewThreeBlock())
	if err := e.SetPageSegMode(engine.PSMSingleLine); err != nil {
		t.Fatalf("set page seg mode: %v", err)
	}
	mode, err := e.PageSegMode()
	if err != nil || mode != engine.PSMSingleLine {
		t.Fatalf("page seg mode read-back: %v %v", mode, err)
	}
}

func TestSetSourceResolutionValidation(t *testing.T) {
	e := initialized(t, enginetest.NewThreeBlock())
	if err := e.SetSourceResolution(300); err == nil {
		t.Fatal("resolution before image succeeded")
	}
	setImage(t, e)
	var bad *engine.BadVariablesError
	if err := e.SetSourceResolution(-1); !errors.As(err, &bad) {
		t.Fatalf("negative resolution: %v", err)
	}
	if err := e.SetSourceResolution(300); err != nil {
		t.Fatalf("set resolution: %v", err)
	}
}

func TestLifecycleMetricsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fake := enginetest.NewThreeBlock()
	e := New(fake, WithLogger(observability.Zap(zap.New(core))))
	if err := e.Init("/usr/share/tessdata", "eng", engine.ModeDefault); err != nil {
		t.Fatalf("init: %v", err)
	}
	setImage(t, e)

	root, err := e.AnalyseLayout()
	if err != nil {
		t.Fatalf("analyse layout: %v", err)
	}
	clone, err := root.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	clone.Dispose()
	root.Dispose()

	imageSet := logs.FilterMessage("image set").All()
	if len(imageSet) != 1 {
		t.Fatalf("expected 1 image-set entry, got %d", len(imageSet))
	}
	if got := imageSet[0].ContextMap()[observability.MetricImageBytes]; got != int64(64*64) {
		t.Fatalf("image bytes field: %#v", got)
	}

	cloned := logs.FilterMessage("cursor cloned").All()
	if len(cloned) != 1 || cloned[0].ContextMap()[observability.MetricCursorsLive] != int64(2) {
		t.Fatalf("cursor clone gauge wrong: %v", cloned)
	}
	released := logs.FilterMessage("cursor released").All()
	if len(released) != 2 {
		t.Fatalf("expected 2 release entries, got %d", len(released))
	}
	if released[1].ContextMap()[observability.MetricCursorsLive] != int64(0) {
		t.Fatalf("final cursor gauge wrong: %v", released[1].ContextMap())
	}
}

func TestInvalidNativeResponse(t *testing.T) {
	fake := enginetest.NewThreeBlock()
	fake.CorruptNext = 7
	e := initialized(t, fake)
	setImage(t, e)

	cur, err := e.AnalyseLayout()
	if err != nil {
		t.Fatalf("analyse layout: %v", err)
	}
	defer cur.Dispose()

	_, err = cur.Next(engine.LevelWord)
	var inv *engine.InvalidResponseError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
	if inv.Value != 7 {
		t.Fatalf("value not preserved: %d", inv.Value)
	}
}
