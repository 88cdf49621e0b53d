// Package actions turns declared listeners into listen.Listener values backed
// by built-in callbacks.
package actions

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vango-dev/doclisten/internal/config"
	"github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/listen"
)

// Sender delivers an event back to the client that produced it.
type Sender interface {
	SendEvent(e *dom.Event) error
}

// Options supplies what the built-in actions write to.
type Options struct {
	// Logger receives "log" events. Defaults to slog.Default().
	Logger *slog.Logger

	// Tally receives "count" events. Required if any listener counts.
	Tally *Tally

	// Sender receives "echo" events. Required if any listener echoes.
	Sender Sender
}

// Listeners builds one listen.Listener per declaration, each with its own
// callback. Declarations are not validated beyond the action name; run
// config.Validate first.
func Listeners(decls []config.ListenerConfig, opts Options) ([]listen.Listener, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	listeners := make([]listen.Listener, 0, len(decls))
	for i, d := range decls {
		var fn func(*dom.Event)

		switch d.Action {
		case config.ActionLog:
			fn = func(e *dom.Event) {
				logger.Info("document event", "event", string(e.Type), "data", e.Data)
			}
		case config.ActionCount:
			if opts.Tally == nil {
				return nil, errors.New("L005").
					WithField(fmt.Sprintf("listeners[%d].action", i)).
					WithDetail("count needs a tally")
			}
			tally := opts.Tally
			fn = func(e *dom.Event) {
				tally.Add(e.Type)
			}
		case config.ActionEcho:
			if opts.Sender == nil {
				return nil, errors.New("L005").
					WithField(fmt.Sprintf("listeners[%d].action", i)).
					WithDetail("echo is only available when serving WebSocket clients")
			}
			sender := opts.Sender
			fn = func(e *dom.Event) {
				if err := sender.SendEvent(e); err != nil {
					logger.Debug("echo failed", "event", string(e.Type), "error", err)
				}
			}
		default:
			return nil, errors.New("L005").
				WithField(fmt.Sprintf("listeners[%d].action", i)).
				WithDetail(fmt.Sprintf("unknown action %q", d.Action))
		}

		listeners = append(listeners, listen.Listener{
			Event:    dom.EventType(d.Event),
			Callback: dom.NewCallback(fn),
			When:     d.When,
		})
	}

	return listeners, nil
}

// Tally counts events per type. It is safe for concurrent use.
type Tally struct {
	mu     sync.Mutex
	counts map[dom.EventType]int
}

// NewTally creates an empty Tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[dom.EventType]int)}
}

// Add counts one event of type t.
func (t *Tally) Add(et dom.EventType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[et]++
}

// Count returns the number of events of type et seen so far.
func (t *Tally) Count(et dom.EventType) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[et]
}

// Types returns the counted event types, sorted.
func (t *Tally) Types() []dom.EventType {
	t.mu.Lock()
	types := make([]dom.EventType, 0, len(t.counts))
	for et := range t.counts {
		types = append(types, et)
	}
	t.mu.Unlock()

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
