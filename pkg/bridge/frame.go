package bridge

import (
	"encoding/json"
	"time"

	docerrors "github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
)

// Server to client operations.
const (
	OpListen   = "listen"
	OpUnlisten = "unlisten"
	OpEvent    = "event"
	OpError    = "error"
)

// InboundFrame is an event sent by the client.
type InboundFrame struct {
	Type dom.EventType  `json:"type"`
	Data map[string]any `json:"data,omitempty"`

	// TS is the client timestamp in Unix milliseconds. Optional.
	TS int64 `json:"ts,omitempty"`
}

// OutboundFrame is a message sent to the client.
type OutboundFrame struct {
	Op      string         `json:"op"`
	Type    dom.EventType  `json:"type,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
}

// DecodeEvent parses a client frame into a dom.Event. Frames that are not
// JSON, have no type, or name an unrecognized document event are rejected
// with a coded error.
func DecodeEvent(msg []byte) (*dom.Event, error) {
	var in InboundFrame
	if err := json.Unmarshal(msg, &in); err != nil {
		return nil, docerrors.New("L040").Wrap(err)
	}
	if in.Type == "" {
		return nil, docerrors.New("L041")
	}
	if !dom.Known(in.Type) {
		return nil, docerrors.New("L002").WithField("type")
	}

	ts := time.Now()
	if in.TS > 0 {
		ts = time.UnixMilli(in.TS)
	}

	return &dom.Event{
		Type:      in.Type,
		Data:      in.Data,
		TimeStamp: ts,
	}, nil
}

func errorFrame(err error) OutboundFrame {
	f := OutboundFrame{Op: OpError, Message: err.Error()}
	if e, ok := err.(*docerrors.Error); ok {
		f.Code = e.Code
		f.Message = e.Message
	}
	return f
}
