package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/vango-dev/doclisten/internal/actions"
	"github.com/vango-dev/doclisten/internal/config"
	"github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/bridge"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/lifecycle"
	"github.com/vango-dev/doclisten/pkg/listen"
)

func replayCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Replay recorded events through the configured listeners",
		Long: `Mount a component with the configured listeners, dispatch events read
from a file (or stdin) one JSON object per line, then tear the component
down and print a summary.

Each line has the same shape as a WebSocket client frame:

  {"type":"keydown","data":{"key":"Enter"},"ts":1700000000000}

The echo action is not available when replaying.

Examples:
  doclisten replay events.jsonl
  cat events.jsonl | doclisten replay`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.New("L060").WithField(args[0]).Wrap(err)
				}
				defer f.Close()
				in = f
			}

			summary, err := replay(cmd.Context(), cfg, in, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			summary.write(cmd.OutOrStdout())
			return nil
		},
	}

	return cmd
}

// replayStats is what a single event type saw during a replay.
type replayStats struct {
	dispatches int
	calls      int
}

// replaySummary is the outcome of a replay.
type replaySummary struct {
	events   int
	stats    map[dom.EventType]*replayStats
	tally    *actions.Tally
	attached []dom.EventType
}

// replay runs one component lifetime over the events in r. Log output from
// the "log" action goes to logOut.
func replay(ctx context.Context, cfg *config.Config, r io.Reader, logOut io.Writer) (*replaySummary, error) {
	logger := newLogger(logOut, cfg).With("component", "replay")

	summary := &replaySummary{
		stats: make(map[dom.EventType]*replayStats),
		tally: actions.NewTally(),
	}

	listeners, err := actions.Listeners(cfg.Listeners, actions.Options{
		Logger: logger,
		Tally:  summary.tally,
	})
	if err != nil {
		return nil, err
	}

	doc := dom.NewDocument(
		dom.WithLogger(logger),
		dom.WithMiddleware(summary.record),
	)
	owner := lifecycle.NewOwner(nil)
	listen.Use(owner, doc, listeners)

	owner.Mount()
	err = dispatchLines(ctx, doc, r, summary)
	owner.Dispose()

	if err != nil {
		return nil, err
	}

	summary.attached = doc.EventTypes()
	return summary, nil
}

func dispatchLines(ctx context.Context, doc *dom.Document, r io.Reader, summary *replaySummary) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		e, err := bridge.DecodeEvent([]byte(text))
		if err != nil {
			return errors.New("L060").WithField(fmt.Sprintf("line %d", line)).Wrap(err)
		}
		doc.Dispatch(ctx, e)
		summary.events++
	}
	if err := scanner.Err(); err != nil {
		return errors.New("L060").Wrap(err)
	}
	return nil
}

// record is dispatch middleware counting dispatches and listener calls.
func (s *replaySummary) record(next dom.DispatchFunc) dom.DispatchFunc {
	return func(ctx context.Context, e *dom.Event) int {
		n := next(ctx, e)
		st, ok := s.stats[e.Type]
		if !ok {
			st = &replayStats{}
			s.stats[e.Type] = st
		}
		st.dispatches++
		st.calls += n
		return n
	}
}

func (s *replaySummary) write(w io.Writer) {
	types := make([]dom.EventType, 0, len(s.stats))
	for t := range s.stats {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("EVENT", "DISPATCHES", "LISTENER CALLS", "COUNTED")
	for _, t := range types {
		st := s.stats[t]
		table.AddRow(string(t), st.dispatches, st.calls, s.tally.Count(t))
	}
	fmt.Fprintln(w, table)

	fmt.Fprintf(w, "\n%d events replayed\n", s.events)
	if len(s.attached) > 0 {
		names := make([]string, len(s.attached))
		for i, t := range s.attached {
			names[i] = string(t)
		}
		fmt.Fprintf(w, "still attached after teardown: %s\n", strings.Join(names, ", "))
	}
}
