package listen

import (
	"context"
	"errors"
	"reflect"
	"testing"

	docerrors "github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/lifecycle"
)

// call is one recorded target operation.
type call struct {
	Op    string
	Event dom.EventType
	ID    uint64
}

// recordingTarget records every add and remove without any dedup semantics.
type recordingTarget struct {
	calls []call
}

func (r *recordingTarget) AddEventListener(t dom.EventType, cb *dom.Callback) {
	r.calls = append(r.calls, call{"add", t, cb.ID()})
}

func (r *recordingTarget) RemoveEventListener(t dom.EventType, cb *dom.Callback) {
	r.calls = append(r.calls, call{"remove", t, cb.ID()})
}

func (r *recordingTarget) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func noop() *dom.Callback {
	return dom.NewCallback(func(*dom.Event) {})
}

func TestUseDoesNothingUntilMount(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}

	Use(owner, target, []Listener{{Event: dom.KeyDown, Callback: noop(), When: Both}})

	if len(target.calls) != 0 {
		t.Errorf("expected no calls before mount, got %v", target.calls)
	}
}

func TestUseBoth(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}
	onKey := noop()

	Use(owner, target, []Listener{{Event: dom.KeyDown, Callback: onKey, When: Both}})

	owner.Mount()
	want := []call{{"add", dom.KeyDown, onKey.ID()}}
	if !reflect.DeepEqual(target.calls, want) {
		t.Fatalf("after mount: got %v, want %v", target.calls, want)
	}

	owner.Dispose()
	want = append(want, call{"remove", dom.KeyDown, onKey.ID()})
	if !reflect.DeepEqual(target.calls, want) {
		t.Fatalf("after unmount: got %v, want %v", target.calls, want)
	}
}

func TestUseMountedOnly(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	doc := dom.NewDocument()
	onResize := noop()

	Use(owner, doc, []Listener{{Event: dom.Resize, Callback: onResize, When: Mounted}})

	owner.Mount()
	if !doc.Has(dom.Resize, onResize) {
		t.Fatal("listener should be attached after mount")
	}

	owner.Dispose()
	if !doc.Has(dom.Resize, onResize) {
		t.Error("mounted-only listener should stay attached after unmount")
	}
}

func TestUseMountedOnlyNeverRemoves(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}

	Use(owner, target, []Listener{{Event: dom.Resize, Callback: noop(), When: Mounted}})
	owner.Mount()
	owner.Dispose()

	if got := target.count("add"); got != 1 {
		t.Errorf("add called %d times, want 1", got)
	}
	if got := target.count("remove"); got != 0 {
		t.Errorf("remove called %d times, want 0", got)
	}
}

func TestUseUnmountedOnly(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}
	cb := noop()

	Use(owner, target, []Listener{{Event: dom.Scroll, Callback: cb, When: Unmounted}})

	owner.Mount()
	if len(target.calls) != 0 {
		t.Fatalf("unmounted-only listener must not be added, got %v", target.calls)
	}

	owner.Dispose()
	want := []call{{"remove", dom.Scroll, cb.ID()}}
	if !reflect.DeepEqual(target.calls, want) {
		t.Errorf("got %v, want %v", target.calls, want)
	}
}

func TestUseUnmountedOnlyDetachesExternalListener(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	doc := dom.NewDocument()
	cb := noop()

	// Attached elsewhere, e.g. by a parent component.
	doc.AddEventListener(dom.Scroll, cb)

	Use(owner, doc, []Listener{{Event: dom.Scroll, Callback: cb, When: Unmounted}})
	owner.Mount()
	if !doc.Has(dom.Scroll, cb) {
		t.Fatal("listener should still be attached after mount")
	}

	owner.Dispose()
	if doc.Has(dom.Scroll, cb) {
		t.Error("unmounted-only listener should be detached at unmount")
	}
}

func TestUsePreservesOrder(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}
	a, b := noop(), noop()

	Use(owner, target, []Listener{
		{Event: dom.Click, Callback: a, When: Both},
		{Event: dom.Click, Callback: b, When: Both},
	})
	owner.Mount()
	owner.Dispose()

	want := []call{
		{"add", dom.Click, a.ID()},
		{"add", dom.Click, b.ID()},
		{"remove", dom.Click, a.ID()},
		{"remove", dom.Click, b.ID()},
	}
	if !reflect.DeepEqual(target.calls, want) {
		t.Errorf("got %v, want %v", target.calls, want)
	}
}

func TestUseDispatchFollowsDeclarationOrder(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	doc := dom.NewDocument()

	var fired []string
	a := dom.NewCallback(func(*dom.Event) { fired = append(fired, "a") })
	b := dom.NewCallback(func(*dom.Event) { fired = append(fired, "b") })

	Use(owner, doc, []Listener{
		{Event: dom.Click, Callback: a, When: Both},
		{Event: dom.Click, Callback: b, When: Both},
	})
	owner.Mount()
	doc.Dispatch(context.Background(), dom.NewEvent(dom.Click, nil))
	owner.Dispose()
	doc.Dispatch(context.Background(), dom.NewEvent(dom.Click, nil))

	if !reflect.DeepEqual(fired, []string{"a", "b"}) {
		t.Errorf("fired = %v, want [a b]", fired)
	}
}

func TestUseEmptyList(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}

	Use(owner, target, nil)
	owner.Mount()
	owner.Dispose()

	if len(target.calls) != 0 {
		t.Errorf("expected no calls, got %v", target.calls)
	}
}

func TestUseTwiceSchedulesIndependentPairs(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}
	cb := noop()
	listeners := []Listener{{Event: dom.KeyUp, Callback: cb, When: Both}}

	Use(owner, target, listeners)
	Use(owner, target, listeners)

	owner.Mount()
	if got := target.count("add"); got != 2 {
		t.Errorf("add called %d times, want 2", got)
	}

	owner.Dispose()
	if got := target.count("remove"); got != 2 {
		t.Errorf("remove called %d times, want 2", got)
	}
}

func TestUseSeparateOwnersAreIndependent(t *testing.T) {
	doc := dom.NewDocument()
	cbA, cbB := noop(), noop()

	first := lifecycle.NewOwner(nil)
	second := lifecycle.NewOwner(nil)
	Use(first, doc, []Listener{{Event: dom.KeyUp, Callback: cbA, When: Both}})
	Use(second, doc, []Listener{{Event: dom.KeyUp, Callback: cbB, When: Both}})

	first.Mount()
	second.Mount()
	first.Dispose()

	if doc.Has(dom.KeyUp, cbA) {
		t.Error("first owner's listener should be removed")
	}
	if !doc.Has(dom.KeyUp, cbB) {
		t.Error("second owner's listener should remain")
	}
}

func TestUseCopiesListeners(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	target := &recordingTarget{}
	original, replacement := noop(), noop()

	listeners := []Listener{{Event: dom.Click, Callback: original, When: Mounted}}
	Use(owner, target, listeners)
	listeners[0].Callback = replacement

	owner.Mount()
	if len(target.calls) != 1 || target.calls[0].ID != original.ID() {
		t.Errorf("got %v, want add of original callback", target.calls)
	}
}

func TestUseDuplicateDescriptors(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	doc := dom.NewDocument()

	calls := 0
	cb := dom.NewCallback(func(*dom.Event) { calls++ })
	Use(owner, doc, []Listener{
		{Event: dom.Click, Callback: cb, When: Both},
		{Event: dom.Click, Callback: cb, When: Both},
	})

	owner.Mount()
	doc.Dispatch(context.Background(), dom.NewEvent(dom.Click, nil))
	if calls != 1 {
		t.Errorf("document should ignore the repeated add, callback ran %d times", calls)
	}

	owner.Dispose()
	if doc.ListenerCount(dom.Click) != 0 {
		t.Error("listener should be removed at unmount")
	}
}

func TestUseOnDisposedOwnerNeverMounted(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	owner.Dispose()
	target := &recordingTarget{}

	Use(owner, target, []Listener{{Event: dom.KeyDown, Callback: noop(), When: Both}})

	if len(target.calls) != 0 {
		t.Errorf("expected no calls on a never-mounted owner, got %v", target.calls)
	}
}

func TestUseOnDisposedOwnerLeavesNothingAttached(t *testing.T) {
	owner := lifecycle.NewOwner(nil)
	owner.Mount()
	owner.Dispose()
	doc := dom.NewDocument()

	Use(owner, doc, []Listener{
		{Event: dom.KeyDown, Callback: noop(), When: Both},
		{Event: dom.Resize, Callback: noop(), When: Mounted},
	})

	if types := doc.EventTypes(); len(types) != 0 {
		t.Errorf("EventTypes() = %v after Use on a disposed owner, want empty", types)
	}
}

func TestUseNilTargetPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, docerrors.New("L001")) {
			t.Errorf("panic value = %v, want L001 error", r)
		}
	}()

	Use(lifecycle.NewOwner(nil), nil, nil)
}

func TestValidate(t *testing.T) {
	if err := Validate([]Listener{{Event: dom.KeyDown, Callback: noop(), When: Both}}); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := Validate(nil); err != nil {
		t.Errorf("Validate(nil) = %v, want nil", err)
	}

	err := Validate([]Listener{
		{Event: "bogus", Callback: noop(), When: Mounted},
		{Event: dom.Click, When: When(9)},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, code := range []string{"L002", "L003", "L004"} {
		if !errors.Is(err, docerrors.New(code)) {
			t.Errorf("expected %s in %v", code, err)
		}
	}
	if !errors.Is(err, ErrInvalidWhen) {
		t.Error("expected ErrInvalidWhen in chain")
	}
}

func TestCheck(t *testing.T) {
	if errs := Check("listeners[0]", dom.Click, Mounted); len(errs) != 0 {
		t.Errorf("Check() = %v, want none", errs)
	}

	errs := Check("listeners[4]", "bogus", When(0))
	if len(errs) != 2 {
		t.Fatalf("Check() returned %d errors, want 2: %v", len(errs), errs)
	}
	var e *docerrors.Error
	if !errors.As(errs[0], &e) || e.Code != "L002" || e.Field != "listeners[4].event" {
		t.Errorf("first error = %v, want L002 at listeners[4].event", errs[0])
	}
	if !errors.Is(errs[1], ErrInvalidWhen) {
		t.Errorf("second error = %v, want ErrInvalidWhen", errs[1])
	}
}
