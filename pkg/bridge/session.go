package bridge

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/lifecycle"
)

// Session is one connected client and the component lifetime bound to it.
type Session struct {
	id    string
	conn  *websocket.Conn
	owner *lifecycle.Owner
	doc   *dom.Document

	writeTimeout time.Duration
	logger       *slog.Logger

	// mu serializes writes; gorilla/websocket allows one concurrent writer.
	mu     sync.Mutex
	closed atomic.Bool
}

var _ dom.Observer = (*Session)(nil)

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Owner returns the lifecycle owner of the session's component. It mounts
// after the Component setup function returns and is disposed when the
// connection closes.
func (s *Session) Owner() *lifecycle.Owner {
	return s.owner
}

// Document returns the session's document.
func (s *Session) Document() *dom.Document {
	return s.doc
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Send writes a frame to the client.
func (s *Session) Send(f OutboundFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := s.conn.WriteJSON(f); err != nil {
		return &SessionError{SessionID: s.id, Op: "send " + f.Op, Err: err}
	}
	return nil
}

// SendEvent echoes an event back to the client.
func (s *Session) SendEvent(e *dom.Event) error {
	return s.Send(OutboundFrame{Op: OpEvent, Type: e.Type, Data: e.Data})
}

// ListenerAdded implements dom.Observer. It asks the client to start
// forwarding an event type when the type gains its first listener.
func (s *Session) ListenerAdded(t dom.EventType, count int) {
	if count != 1 {
		return
	}
	if err := s.Send(OutboundFrame{Op: OpListen, Type: t}); err != nil {
		s.logger.Debug("listen frame not sent", "event", string(t), "error", err)
	}
}

// ListenerRemoved implements dom.Observer. It asks the client to stop
// forwarding an event type when the type loses its last listener.
func (s *Session) ListenerRemoved(t dom.EventType, count int) {
	if count != 0 {
		return
	}
	if err := s.Send(OutboundFrame{Op: OpUnlisten, Type: t}); err != nil {
		s.logger.Debug("unlisten frame not sent", "event", string(t), "error", err)
	}
}

// ListenerPanicked implements dom.Observer.
func (s *Session) ListenerPanicked(dom.EventType, any) {}

// readLoop dispatches client events into the document until the connection
// fails or is closed.
func (s *Session) readLoop(ctx context.Context) {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				s.logger.Warn("read error", "error", err)
			}
			return
		}

		e, err := DecodeEvent(msg)
		if err != nil {
			s.logger.Debug("rejected frame", "error", err)
			if err := s.Send(errorFrame(err)); err != nil {
				s.logger.Debug("error frame not sent", "error", err)
			}
			continue
		}

		s.doc.Dispatch(ctx, e)
	}
}

// interrupt asks the client to go away and unblocks the read loop.
func (s *Session) interrupt(reason string) {
	deadline := time.Now().Add(time.Second)
	err := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, reason), deadline)
	if err != nil {
		s.logger.Debug("close frame not sent", "reason", reason, "error", err)
	}
	if err := s.conn.SetReadDeadline(time.Now()); err != nil {
		s.logger.Debug("read deadline not set", "reason", reason, "error", err)
	}
}

// close marks the session closed and closes the connection.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Swap(true) {
		return
	}
	s.conn.Close()
}
