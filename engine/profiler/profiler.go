package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer"
)

// Report summarizes the frames of one profiling interval.
type Report struct {
	FPS float64

	// Stats holds the renderer counters of the last frame in the interval.
	Stats renderer.Stats

	// DrawCallsPerFrame averages the draw calls over the interval.
	DrawCallsPerFrame float64

	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	MaxPause    time.Duration
}

func (r Report) attrs() []any {
	return []any{
		slog.Float64("fps", r.FPS),
		slog.Float64("drawsPerFrame", r.DrawCallsPerFrame),
		slog.Int("programBinds", r.Stats.ProgramBinds),
		slog.Int("uniformUploads", r.Stats.UniformUploads),
		slog.Int("skippedUploads", r.Stats.SkippedUploads),
		slog.Int("solids", r.Stats.SolidVisuals),
		slog.Int("culled", r.Stats.CulledVisuals),
		slog.Int("transparentUnits", r.Stats.TransparentUnits),
		slog.Float64("heapMB", r.HeapMB),
		slog.Float64("allocRateMB", r.AllocRateMB),
		slog.Uint64("gc", uint64(r.GCCount)),
		slog.Duration("maxPause", r.MaxPause),
	}
}

// Profiler tracks frame rate, renderer counters and memory statistics. A report is logged once per
// interval.
type Profiler struct {
	interval time.Duration
	clock    func() time.Time
	memory   bool

	frames     int
	drawCalls  int
	last       time.Time
	memStats   runtime.MemStats
	lastGC     uint32
	lastAlloc  uint64
	lastReport Report
}

// NewProfiler creates a profiler reporting every second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		clock:    time.Now,
		memory:   true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.last = p.clock()
	return p
}

// Tick counts one frame. When the interval has elapsed the report is logged and the counters restart.
//
// Parameters:
//   - stats: the renderer counters of the frame
//
// Returns:
//   - bool: true if a report was produced by this tick
func (p *Profiler) Tick(stats renderer.Stats) bool {
	p.frames++
	p.drawCalls += stats.DrawCalls

	now := p.clock()
	elapsed := now.Sub(p.last)
	if elapsed < p.interval {
		return false
	}

	r := Report{
		FPS:               float64(p.frames) / elapsed.Seconds(),
		Stats:             stats,
		DrawCallsPerFrame: float64(p.drawCalls) / float64(p.frames),
	}
	if p.memory {
		p.readMemory(&r, elapsed)
	}
	common.Logger().Info("profiler", r.attrs()...)

	p.lastReport = r
	p.frames = 0
	p.drawCalls = 0
	p.last = now
	return true
}

// readMemory fills the heap, allocation rate and GC pause fields. PauseNs is a ring of the last
// 256 pauses.
func (p *Profiler) readMemory(r *Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastAlloc) / 1024 / 1024 / elapsed.Seconds()
	r.GCCount = p.memStats.NumGC

	start := p.lastGC
	if r.GCCount-start > 256 {
		start = r.GCCount - 256
	}
	for i := start; i < r.GCCount; i++ {
		r.MaxPause = max(r.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
	}
	p.lastGC = r.GCCount
	p.lastAlloc = p.memStats.TotalAlloc
}

// LastReport returns the most recent report, or the zero Report before the first interval ends.
//
// Returns:
//   - Report: the report
func (p *Profiler) LastReport() Report {
	return p.lastReport
}
