package bridge

import (
	stderrors "errors"
	"testing"
	"time"

	docerrors "github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
)

func TestDecodeEvent(t *testing.T) {
	e, err := DecodeEvent([]byte(`{"type":"keydown","data":{"key":"a"},"ts":1700000000000}`))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if e.Type != dom.KeyDown || e.String("key") != "a" {
		t.Errorf("got %+v", e)
	}
	if !e.TimeStamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("TimeStamp = %v", e.TimeStamp)
	}

	e, err = DecodeEvent([]byte(`{"type":"click"}`))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if e.TimeStamp.IsZero() {
		t.Error("missing ts should default to now")
	}
}

func TestDecodeEventErrors(t *testing.T) {
	tests := []struct {
		in   string
		code string
	}{
		{`[`, "L040"},
		{`{"type":""}`, "L041"},
		{`{"type":"explode"}`, "L002"},
	}

	for _, tt := range tests {
		_, err := DecodeEvent([]byte(tt.in))
		if !stderrors.Is(err, docerrors.New(tt.code)) {
			t.Errorf("DecodeEvent(%q) = %v, want %s", tt.in, err, tt.code)
		}
	}
}

func TestErrorFrame(t *testing.T) {
	f := errorFrame(docerrors.New("L040"))
	if f.Op != OpError || f.Code != "L040" || f.Message != "Malformed event frame" {
		t.Errorf("got %+v", f)
	}

	f = errorFrame(ErrSessionClosed)
	if f.Code != "" || f.Message != ErrSessionClosed.Error() {
		t.Errorf("got %+v", f)
	}
}
