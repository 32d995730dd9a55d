package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Bool converts a native boolean sentinel. Any value outside the documented
// 0/1 domain means the native boundary contract itself is broken; such
// values are never coerced to a default.
func Bool(v int) (bool, error) {
	switch v {
	case True:
		return true, nil
	case False:
		return false, nil
	}
	return false, &InvalidResponseError{Value: v}
}

// InvalidResponseError reports a native return value outside its documented
// boolean or enum domain. It indicates a broken native/Go boundary, not a
// caller mistake, and is deliberately distinct from the state-violation
// errors in packages handle and analyzer.
type InvalidResponseError struct {
	// Op names the native call that produced the value, when known.
	Op string
	// Value is the out-of-domain value as returned by the engine.
	Value int
}

func (e *InvalidResponseError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("invalid native response: expected %d or %d, got %d", True, False, e.Value)
	}
	return fmt.Sprintf("invalid native response from %s: got %d", e.Op, e.Value)
}

// BadVariablesError reports engine parameters the native engine rejected,
// keyed by variable name with the offending value.
type BadVariablesError struct {
	Vars map[string]string
}

func (e *BadVariablesError) Error() string {
	names := make([]string, 0, len(e.Vars))
	for name := range e.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%q", name, e.Vars[name])
	}
	return "rejected engine variables: " + strings.Join(parts, ", ")
}
