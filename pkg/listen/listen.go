package listen

import (
	"errors"
	"fmt"

	docerrors "github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/lifecycle"
)

// ErrInvalidWhen is returned when a phase is not mounted, unmounted or both.
var ErrInvalidWhen = errors.New("listen: invalid phase")

// Listener declares one document event listener.
type Listener struct {
	// Event is the document event type to listen for.
	Event dom.EventType

	// Callback is the handler. The same pointer is used to add and remove it.
	Callback *dom.Callback

	// When selects which lifecycle transitions add or remove the listener.
	When When
}

// Use schedules listeners to be added to target when hooks mounts and removed
// when hooks unmounts. Nothing is added or removed until the host reaches
// those points.
//
// listeners is copied; changes to the caller's slice after Use returns have no
// effect. Use panics if target is nil.
func Use(hooks lifecycle.Hooks, target dom.Target, listeners []Listener) {
	if target == nil {
		panic(docerrors.New("L001").
			WithSuggestion("Pass the component's *dom.Document to listen.Use"))
	}

	list := make([]Listener, len(listeners))
	copy(list, listeners)

	hooks.OnMount(func() {
		for _, l := range list {
			if l.When.OnMount() {
				target.AddEventListener(l.Event, l.Callback)
			}
		}
	})

	hooks.OnUnmount(func() {
		for _, l := range list {
			if l.When.OnUnmount() {
				target.RemoveEventListener(l.Event, l.Callback)
			}
		}
	})
}

// Validate checks listeners for an unknown phase, a missing callback or an
// event name that is not a recognized document event. All problems are
// returned, joined.
func Validate(listeners []Listener) error {
	var errs []error
	for i, l := range listeners {
		field := fmt.Sprintf("listeners[%d]", i)
		errs = append(errs, Check(field, l.Event, l.When)...)
		if l.Callback == nil {
			errs = append(errs, docerrors.New("L004").WithField(field+".callback"))
		}
	}
	return errors.Join(errs...)
}

// Check reports what is wrong with one declaration's event and phase.
// field is the declaration's path, e.g. "listeners[2]".
func Check(field string, event dom.EventType, when When) []error {
	var errs []error
	if !dom.Known(event) {
		errs = append(errs, docerrors.New("L002").
			WithField(field+".event").
			WithSuggestion(fmt.Sprintf("%q is not a document event; try one of keydown, click, scroll", event)))
	}
	if !when.Valid() {
		errs = append(errs, docerrors.New("L003").
			WithField(field+".when").
			WithSuggestion("Use mounted, unmounted or both").
			Wrap(ErrInvalidWhen))
	}
	return errs
}
