package listen

import (
	"fmt"
	"strings"
)

// When selects which lifecycle transitions act on a listener.
type When uint8

const (
	// Mounted adds the listener on mount and never removes it.
	Mounted When = iota + 1

	// Unmounted removes the listener on unmount without adding it on mount.
	Unmounted

	// Both adds the listener on mount and removes it on unmount.
	Both
)

// String returns the text form of w.
func (w When) String() string {
	switch w {
	case Mounted:
		return "mounted"
	case Unmounted:
		return "unmounted"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("When(%d)", uint8(w))
	}
}

// Valid reports whether w is one of Mounted, Unmounted or Both.
func (w When) Valid() bool {
	return w >= Mounted && w <= Both
}

// OnMount reports whether a listener with phase w is added on mount.
func (w When) OnMount() bool {
	return w == Mounted || w == Both
}

// OnUnmount reports whether a listener with phase w is removed on unmount.
func (w When) OnUnmount() bool {
	return w == Unmounted || w == Both
}

// ParseWhen parses "mounted", "unmounted" or "both" (case-insensitive).
func ParseWhen(s string) (When, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mounted":
		return Mounted, nil
	case "unmounted":
		return Unmounted, nil
	case "both":
		return Both, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidWhen, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w When) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWhen, uint8(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *When) UnmarshalText(text []byte) error {
	parsed, err := ParseWhen(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
