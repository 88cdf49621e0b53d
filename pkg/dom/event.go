package dom

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// EventType is the name of a document-level event, e.g. "keydown".
type EventType string

// Recognized document event types.
const (
	Abort            EventType = "abort"
	AnimationEnd     EventType = "animationend"
	AnimationStart   EventType = "animationstart"
	BeforeInput      EventType = "beforeinput"
	Blur             EventType = "blur"
	Change           EventType = "change"
	Click            EventType = "click"
	ContextMenu      EventType = "contextmenu"
	Copy             EventType = "copy"
	Cut              EventType = "cut"
	DblClick         EventType = "dblclick"
	Drag             EventType = "drag"
	DragEnd          EventType = "dragend"
	DragOver         EventType = "dragover"
	DragStart        EventType = "dragstart"
	Drop             EventType = "drop"
	Focus            EventType = "focus"
	FocusIn          EventType = "focusin"
	FocusOut         EventType = "focusout"
	FullscreenChange EventType = "fullscreenchange"
	Input            EventType = "input"
	KeyDown          EventType = "keydown"
	KeyPress         EventType = "keypress"
	KeyUp            EventType = "keyup"
	MouseDown        EventType = "mousedown"
	MouseMove        EventType = "mousemove"
	MouseUp          EventType = "mouseup"
	Paste            EventType = "paste"
	PointerDown      EventType = "pointerdown"
	PointerMove      EventType = "pointermove"
	PointerUp        EventType = "pointerup"
	ReadyStateChange EventType = "readystatechange"
	Resize           EventType = "resize"
	Scroll           EventType = "scroll"
	ScrollEnd        EventType = "scrollend"
	SelectionChange  EventType = "selectionchange"
	Submit           EventType = "submit"
	TouchEnd         EventType = "touchend"
	TouchMove        EventType = "touchmove"
	TouchStart       EventType = "touchstart"
	TransitionEnd    EventType = "transitionend"
	VisibilityChange EventType = "visibilitychange"
	Wheel            EventType = "wheel"
)

var knownEventTypes = map[EventType]struct{}{
	Abort: {}, AnimationEnd: {}, AnimationStart: {}, BeforeInput: {}, Blur: {},
	Change: {}, Click: {}, ContextMenu: {}, Copy: {}, Cut: {}, DblClick: {},
	Drag: {}, DragEnd: {}, DragOver: {}, DragStart: {}, Drop: {}, Focus: {},
	FocusIn: {}, FocusOut: {}, FullscreenChange: {}, Input: {}, KeyDown: {},
	KeyPress: {}, KeyUp: {}, MouseDown: {}, MouseMove: {}, MouseUp: {},
	Paste: {}, PointerDown: {}, PointerMove: {}, PointerUp: {},
	ReadyStateChange: {}, Resize: {}, Scroll: {}, ScrollEnd: {},
	SelectionChange: {}, Submit: {}, TouchEnd: {}, TouchMove: {},
	TouchStart: {}, TransitionEnd: {}, VisibilityChange: {}, Wheel: {},
}

// Known reports whether t is a recognized document event type.
func Known(t EventType) bool {
	_, ok := knownEventTypes[t]
	return ok
}

// EventTypes returns all recognized document event types, sorted.
func EventTypes() []EventType {
	types := make([]EventType, 0, len(knownEventTypes))
	for t := range knownEventTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Event is a document event payload delivered to listeners.
// Listeners must not modify an Event.
type Event struct {
	Type      EventType
	Data      map[string]any
	TimeStamp time.Time
}

// NewEvent creates an Event stamped with the current time.
func NewEvent(t EventType, data map[string]any) *Event {
	return &Event{
		Type:      t,
		Data:      data,
		TimeStamp: time.Now(),
	}
}

// Accessors

func (e *Event) String(key string) string {
	if v, ok := e.Data[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func (e *Event) Int(key string) int {
	if v, ok := e.Data[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case int64:
			return int(val)
		case float64:
			return int(val)
		case string:
			i, _ := strconv.Atoi(val)
			return i
		}
	}
	return 0
}

func (e *Event) Float(key string) float64 {
	if v, ok := e.Data[key]; ok {
		switch val := v.(type) {
		case float64:
			return val
		case int:
			return float64(val)
		case string:
			f, _ := strconv.ParseFloat(val, 64)
			return f
		}
	}
	return 0.0
}

func (e *Event) Bool(key string) bool {
	if v, ok := e.Data[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
		b, _ := strconv.ParseBool(fmt.Sprintf("%v", v))
		return b
	}
	return false
}
