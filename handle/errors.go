package handle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dharts/tesskit/engine"
)

var (
	// ErrAlreadyInitialized is returned by Init on an initialized engine.
	// Initialization is irreversible; language and mode cannot change.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrInitFailed is returned when the native engine rejects
	// initialization. The engine stays uninitialized.
	ErrInitFailed = errors.New("engine initialization failed")

	// ErrSessionActive is returned when an analysis is requested while the
	// cursors of a previous analysis are still open.
	ErrSessionActive = errors.New("analysis session already active")

	// ErrClosed is returned by every operation on a closed engine.
	ErrClosed = errors.New("engine closed")

	// ErrAlreadyClosed is returned by Close on a closed engine. Double
	// close is an error so the logic bug surfaces early.
	ErrAlreadyClosed = errors.New("engine already closed")

	// ErrCursorDisposed is returned by every operation on a disposed view.
	ErrCursorDisposed = errors.New("cursor disposed")

	// ErrAlreadyDisposed is returned when a view is disposed twice. Silent
	// double release would mask use-after-free bugs in the native layer.
	ErrAlreadyDisposed = errors.New("cursor already disposed")

	// ErrForeignCursor is returned when a cursor is offered to a context
	// that does not own it.
	ErrForeignCursor = errors.New("cursor does not belong to this context")
)

// StateError reports an operation issued in a state that does not permit
// it. It wraps the matching sentinel so callers can test with errors.Is.
type StateError struct {
	Op    string
	State State
	Want  []State

	sentinel error
}

func (e *StateError) Error() string {
	want := make([]string, len(e.Want))
	for i, s := range e.Want {
		want[i] = s.String()
	}
	return fmt.Sprintf("%s: illegal in state %s (requires %s)", e.Op, e.State, strings.Join(want, " or "))
}

func (e *StateError) Unwrap() error { return e.sentinel }

// nativeBool converts a native sentinel, tagging the originating call on
// failure.
func nativeBool(op string, v int) (bool, error) {
	b, err := engine.Bool(v)
	if err != nil {
		return false, &engine.InvalidResponseError{Op: op, Value: v}
	}
	return b, nil
}
