package dom

import "sync/atomic"

var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// Callback is an event handler with a stable identity.
//
// Go functions cannot be compared, so listeners are matched by Callback
// pointer (and its ID) instead of by function value. The Callback used to
// add a listener must be the one used to remove it.
type Callback struct {
	id uint64
	fn func(*Event)
}

// NewCallback wraps fn in a Callback with a fresh ID.
func NewCallback(fn func(*Event)) *Callback {
	return &Callback{
		id: nextID(),
		fn: fn,
	}
}

// ID returns the unique identifier for this callback.
func (c *Callback) ID() uint64 {
	return c.id
}

// Call invokes the wrapped function with e.
func (c *Callback) Call(e *Event) {
	if c.fn != nil {
		c.fn(e)
	}
}
