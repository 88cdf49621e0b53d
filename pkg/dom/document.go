package dom

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Target is an event target supporting listener registration.
// Listeners are matched by event type and callback identity.
type Target interface {
	AddEventListener(t EventType, cb *Callback)
	RemoveEventListener(t EventType, cb *Callback)
}

// Observer is notified of changes to a Document's listener set and of
// listener panics. count is the number of listeners registered for t after
// the change, so count == 1 on add means t gained its first listener and
// count == 0 on remove means t lost its last one.
//
// Observers are called synchronously, outside the Document's lock.
type Observer interface {
	ListenerAdded(t EventType, count int)
	ListenerRemoved(t EventType, count int)
	ListenerPanicked(t EventType, recovered any)
}

// DispatchFunc delivers an event and returns the number of listeners invoked.
type DispatchFunc func(ctx context.Context, e *Event) int

// Middleware wraps event dispatch, e.g. for metrics or tracing.
type Middleware func(next DispatchFunc) DispatchFunc

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver adds an Observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(d *Document) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// WithMiddleware appends dispatch middleware. The first middleware given is
// the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(d *Document) {
		d.middleware = append(d.middleware, mw...)
	}
}

// entry is one registered listener. removed is set when the listener is
// removed so that in-flight dispatches skip it.
type entry struct {
	cb      *Callback
	removed atomic.Bool
}

// Document is a document-level event target. It is safe for concurrent use.
type Document struct {
	listeners map[EventType][]*entry
	mu        sync.RWMutex

	observers  []Observer
	middleware []Middleware
	dispatch   DispatchFunc
	logger     *slog.Logger
}

var _ Target = (*Document)(nil)

// NewDocument creates an empty Document.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		listeners: make(map[EventType][]*entry),
		logger:    slog.Default().With("component", "dom"),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.dispatch = d.invoke
	for i := len(d.middleware) - 1; i >= 0; i-- {
		d.dispatch = d.middleware[i](d.dispatch)
	}

	return d
}

// AddEventListener registers cb for events of type t.
// Adding a callback that is already registered for t does nothing.
func (d *Document) AddEventListener(t EventType, cb *Callback) {
	if cb == nil {
		return
	}

	d.mu.Lock()
	for _, e := range d.listeners[t] {
		if e.cb == cb {
			d.mu.Unlock()
			return
		}
	}
	d.listeners[t] = append(d.listeners[t], &entry{cb: cb})
	count := len(d.listeners[t])
	d.mu.Unlock()

	d.logger.Debug("listener added", "event", string(t), "callback", cb.ID(), "count", count)
	for _, o := range d.observers {
		o.ListenerAdded(t, count)
	}
}

// RemoveEventListener unregisters cb for events of type t.
// Removing a callback that is not registered for t does nothing.
func (d *Document) RemoveEventListener(t EventType, cb *Callback) {
	if cb == nil {
		return
	}

	d.mu.Lock()
	list := d.listeners[t]
	idx := -1
	for i, e := range list {
		if e.cb == cb {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.mu.Unlock()
		return
	}

	list[idx].removed.Store(true)
	// Build a new slice so snapshots held by in-flight dispatches stay intact.
	next := make([]*entry, 0, len(list)-1)
	next = append(next, list[:idx]...)
	next = append(next, list[idx+1:]...)
	if len(next) == 0 {
		delete(d.listeners, t)
	} else {
		d.listeners[t] = next
	}
	count := len(next)
	d.mu.Unlock()

	d.logger.Debug("listener removed", "event", string(t), "callback", cb.ID(), "count", count)
	for _, o := range d.observers {
		o.ListenerRemoved(t, count)
	}
}

// Has reports whether cb is registered for events of type t.
func (d *Document) Has(t EventType, cb *Callback) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.listeners[t] {
		if e.cb == cb {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for t.
func (d *Document) ListenerCount(t EventType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[t])
}

// EventTypes returns the event types that have at least one listener, sorted.
func (d *Document) EventTypes() []EventType {
	d.mu.RLock()
	types := make([]EventType, 0, len(d.listeners))
	for t := range d.listeners {
		types = append(types, t)
	}
	d.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Dispatch delivers e to the listeners registered for e.Type, in registration
// order, and returns the number of listeners invoked.
func (d *Document) Dispatch(ctx context.Context, e *Event) int {
	if e == nil {
		return 0
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if e.TimeStamp.IsZero() {
		e.TimeStamp = time.Now()
	}
	return d.dispatch(ctx, e)
}

// invoke is the innermost DispatchFunc.
func (d *Document) invoke(_ context.Context, e *Event) int {
	d.mu.RLock()
	snapshot := d.listeners[e.Type]
	d.mu.RUnlock()

	invoked := 0
	for _, ent := range snapshot {
		if ent.removed.Load() {
			continue
		}
		d.call(ent.cb, e)
		invoked++
	}
	return invoked
}

// call runs one listener, recovering from panics.
func (d *Document) call(cb *Callback, e *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("listener panicked",
				"event", string(e.Type),
				"callback", cb.ID(),
				"panic", r,
			)
			for _, o := range d.observers {
				o.ListenerPanicked(e.Type, r)
			}
		}
	}()
	cb.Call(e)
}
