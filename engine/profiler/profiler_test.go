package profiler

import (
	"testing"
	"time"

	"github.com/MKHenson/trike3d-sub000/engine/renderer"
	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	assert := assert.New(t)

	now := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithMemoryStats(false),
		WithClock(func() time.Time { return now }),
	)

	for i := range 3 {
		now = now.Add(250 * time.Millisecond)
		assert.False(p.Tick(renderer.Stats{DrawCalls: 10 * (i + 1)}))
	}
	now = now.Add(250 * time.Millisecond)
	assert.True(p.Tick(renderer.Stats{DrawCalls: 40, SolidVisuals: 3}))

	r := p.LastReport()
	assert.InDelta(4.0, r.FPS, 1e-9)
	assert.InDelta(25.0, r.DrawCallsPerFrame, 1e-9)
	assert.Equal(3, r.Stats.SolidVisuals)
	assert.Zero(r.HeapMB)

	now = now.Add(100 * time.Millisecond)
	assert.False(p.Tick(renderer.Stats{}), "counters restart after a report")
}

func TestTickReadsMemoryStats(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }))

	now = now.Add(2 * time.Second)
	assert.True(t, p.Tick(renderer.Stats{}))
	assert.Positive(t, p.LastReport().HeapMB)
}
