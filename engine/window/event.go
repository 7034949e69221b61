package window

import "fmt"

// EventKind identifies an input event.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventButtonDown
	EventButtonUp
	EventCursorMove
	EventScroll
)

func (k EventKind) String() string {
	switch k {
	case EventKeyDown:
		return "key-down"
	case EventKeyUp:
		return "key-up"
	case EventButtonDown:
		return "button-down"
	case EventButtonUp:
		return "button-up"
	case EventCursorMove:
		return "cursor-move"
	case EventScroll:
		return "scroll"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is one input event. Only the fields of its kind are set: Key for key events, Button for
// button events, Delta for scroll. X and Y always hold the cursor position in window pixels.
type Event struct {
	Kind   EventKind
	Key    int
	Button Button
	X      float32
	Y      float32
	Delta  float32
}
