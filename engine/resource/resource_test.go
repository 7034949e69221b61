package resource

import (
	"testing"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
)

func TestDrainReleasesInOrder(t *testing.T) {
	assert := assert.New(t)
	b := backend.NewRecordingBackend()

	var order []int
	for i := range 3 {
		Enqueue(ReleaseFunc(func(backend.Backend) { order = append(order, i) }))
	}
	Enqueue(nil)

	assert.Equal(3, Pending())
	assert.Equal(3, Drain(b))
	assert.Equal([]int{0, 1, 2}, order)
	assert.Zero(Pending())
}

func TestDrainFollowsNestedEnqueue(t *testing.T) {
	assert := assert.New(t)
	b := backend.NewRecordingBackend()

	released := 0
	Enqueue(ReleaseFunc(func(backend.Backend) {
		released++
		Enqueue(ReleaseFunc(func(backend.Backend) { released++ }))
	}))

	assert.Equal(2, Drain(b))
	assert.Equal(2, released)
	assert.Zero(Pending())
	assert.Zero(Drain(b))
}
