// Package resource holds the process-wide queue of GPU objects waiting to be destroyed. Producers enqueue
// themselves when they are disposed and the renderer drains the queue at the start of each frame, so a
// resource is never destroyed while a frame may still reference it.
package resource

import (
	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
)

// Releaser is implemented by anything that owns backend objects.
type Releaser interface {
	// Release destroys the backend objects held by the receiver.
	//
	// Parameters:
	//   - b: the backend that created the objects
	Release(b backend.Backend)
}

// ReleaseFunc adapts a plain function to the Releaser interface.
type ReleaseFunc func(b backend.Backend)

func (f ReleaseFunc) Release(b backend.Backend) {
	f(b)
}

// pending is only touched from the render goroutine.
var pending []Releaser

// Enqueue schedules r for destruction at the next drain.
//
// Parameters:
//   - r: the resource to release, ignored when nil
func Enqueue(r Releaser) {
	if r == nil {
		return
	}
	pending = append(pending, r)
}

// Drain releases every queued resource in the order it was enqueued and empties the queue.
// Releasers enqueued while draining are released in the same call.
//
// Parameters:
//   - b: the backend to release against
//
// Returns:
//   - int: the number of resources released
func Drain(b backend.Backend) int {
	n := 0
	for len(pending) > 0 {
		batch := pending
		pending = nil
		for i, r := range batch {
			r.Release(b)
			batch[i] = nil
			n++
		}
	}
	if n > 0 {
		common.Logger().Debug("resource: drained disposal queue", "released", n)
	}
	return n
}

// Pending returns the number of resources waiting to be released.
func Pending() int {
	return len(pending)
}
