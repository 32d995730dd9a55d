package handle

import (
	"fmt"
	"sync"

	"github.com/dharts/tesskit/engine"
	"github.com/dharts/tesskit/observability"
)

// Context tracks every native cursor derived from one analysis or
// recognition call. All of them point into the same engine-owned result
// set, so the set may only be invalidated once every cursor has been
// released; the context notifies the owning Engine exactly once when that
// happens. Cursor membership changes are atomic with respect to concurrent
// copy and release calls from other clones.
type Context struct {
	mu       sync.Mutex
	owner    *Engine
	live     map[engine.Cursor]struct{}
	released bool
}

func newContext(owner *Engine, root engine.Cursor) *Context {
	return &Context{
		owner: owner,
		live:  map[engine.Cursor]struct{}{root: {}},
	}
}

// Live reports the number of cursors currently tracked.
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// copy duplicates a member cursor and registers the duplicate. Offering a
// cursor the context does not own is a programming error in the caller.
func (c *Context) copy(cur engine.Cursor) (engine.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.live[cur]; !ok {
		return nil, fmt.Errorf("copy cursor: %w", ErrForeignCursor)
	}
	dup, err := cur.Copy()
	if err != nil {
		return nil, fmt.Errorf("copy cursor: %w", err)
	}
	c.live[dup] = struct{}{}
	c.owner.log.Debug("cursor cloned", observability.Int(observability.MetricCursorsLive, len(c.live)))
	return dup, nil
}

// release removes a cursor from the tracked set and destroys it natively.
// When the set empties the owner is notified, outside the context lock and
// exactly once: two goroutines releasing the last two cursors cannot both
// observe themselves as last.
func (c *Context) release(cur engine.Cursor) error {
	c.mu.Lock()
	if _, ok := c.live[cur]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("release cursor: %w", ErrAlreadyDisposed)
	}
	delete(c.live, cur)
	cur.Delete()
	last := len(c.live) == 0 && !c.released
	if last {
		c.released = true
	}
	c.owner.log.Debug("cursor released", observability.Int(observability.MetricCursorsLive, len(c.live)))
	c.mu.Unlock()

	if last {
		c.owner.analysisReleased()
	}
	return nil
}
