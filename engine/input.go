package engine

import (
	"github.com/MKHenson/trike3d-sub000/engine/window"
)

// panScale converts cursor pixels to pan steps.
const panScale = 0.02

// inputState tracks the drag in progress. Left drags orbit the camera controller, right and
// middle drags pan it, and the wheel zooms.
type inputState struct {
	dragging bool
	button   window.Button
	x, y     float32
}

func (e *engine) handleEvent(ev window.Event) {
	c := e.Camera()
	if c == nil || c.Controller() == nil {
		return
	}
	ctrl := c.Controller()

	switch ev.Kind {
	case window.EventButtonDown:
		if !e.input.dragging {
			e.input = inputState{dragging: true, button: ev.Button, x: ev.X, y: ev.Y}
		}
	case window.EventButtonUp:
		if e.input.dragging && ev.Button == e.input.button {
			e.input.dragging = false
		}
	case window.EventCursorMove:
		if !e.input.dragging {
			return
		}
		dx, dy := ev.X-e.input.x, ev.Y-e.input.y
		e.input.x, e.input.y = ev.X, ev.Y
		if e.input.button == window.ButtonLeft {
			// Dragging right moves the camera left around the target.
			ctrl.Orbit(-dx, dy)
		} else {
			ctrl.Pan(-dx*panScale, dy*panScale, 0)
		}
	case window.EventScroll:
		ctrl.Zoom(ev.Delta)
	}
}
