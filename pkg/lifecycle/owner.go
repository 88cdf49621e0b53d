package lifecycle

import (
	"sync"
	"sync/atomic"
)

// Hooks is the pair of lifecycle hook points a component exposes during setup.
type Hooks interface {
	// OnMount registers fn to run once after the component is initialized.
	OnMount(fn func())

	// OnUnmount registers fn to run once before the component is torn down.
	OnUnmount(fn func())
}

var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// Owner represents a component scope that owns lifecycle hooks.
// When an Owner is disposed, all child owners are disposed too.
type Owner struct {
	id uint64

	// parent is nil for a root Owner.
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	mounts   []func()
	mountsMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	mounted  atomic.Bool
	disposed atomic.Bool
}

var _ Hooks = (*Owner)(nil)

// NewOwner creates a new Owner with the given parent.
// The new Owner is registered as a child of the parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsMounted returns true once Mount has run.
func (o *Owner) IsMounted() bool {
	return o.mounted.Load()
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) snapshotChildren() []*Owner {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	return children
}

// OnMount registers a function to run when this Owner is mounted.
// If the Owner is already mounted, fn runs immediately.
// Hooks registered on a disposed Owner are dropped.
func (o *Owner) OnMount(fn func()) {
	if o.disposed.Load() {
		return
	}

	o.mountsMu.Lock()
	if !o.mounted.Load() {
		o.mounts = append(o.mounts, fn)
		o.mountsMu.Unlock()
		return
	}
	o.mountsMu.Unlock()

	fn()
}

// OnUnmount registers a function to run when this Owner is disposed.
// If the Owner is already disposed, fn runs immediately when the Owner had
// mounted and is dropped otherwise.
func (o *Owner) OnUnmount(fn func()) {
	if o.disposed.Load() {
		if o.mounted.Load() {
			fn()
		}
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// Mount runs the mount hooks in registration order, then mounts children in
// creation order. Calling Mount more than once, or after Dispose, does nothing.
func (o *Owner) Mount() {
	if o.disposed.Load() {
		return
	}

	o.mountsMu.Lock()
	if o.mounted.Swap(true) {
		o.mountsMu.Unlock()
		return
	}
	mounts := o.mounts
	o.mounts = nil
	o.mountsMu.Unlock()

	for _, fn := range mounts {
		fn()
	}

	for _, child := range o.snapshotChildren() {
		child.Mount()
	}
}

// Dispose disposes this Owner and all its children.
// Children are disposed in reverse order (last created first), then unmount
// hooks run in reverse registration order. Unmount hooks are skipped when the
// Owner was never mounted. After disposal, the Owner cannot be used.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.mountsMu.Lock()
	o.mounts = nil
	wasMounted := o.mounted.Load()
	o.mountsMu.Unlock()

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	if !wasMounted {
		return
	}

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
