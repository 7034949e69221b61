package renderer

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultParallelCullThreshold is the visual count from which frustum tests are split across workers.
	DefaultParallelCullThreshold = 512

	// minCullChunk keeps each task large enough to be worth submitting.
	minCullChunk = 64
)

// Keep reports whether a mesh survives culling against a frustum:
//   - invisible meshes are culled
//   - meshes with scene culling disabled are always kept
//   - meshes whose bounding sphere intersects the frustum are kept
//   - otherwise a custom cull predicate decides, and without one the mesh is culled
//
// Parameters:
//   - m: the mesh
//   - frustum: the camera frustum
//   - farCorners: the view space far plane corners of the camera
//
// Returns:
//   - bool: true if the mesh is drawn
func Keep(m *scene.Mesh, frustum *common.Frustum, farCorners [4]mgl32.Vec3) bool {
	if !m.Visible() {
		return false
	}
	if !m.SceneCull() {
		return true
	}
	if frustum.IntersectsSphere(m.BoundingSphere()) {
		return true
	}
	if fn := m.CullFunc(); fn != nil {
		return fn(m, frustum, farCorners)
	}
	return false
}

// culler evaluates Keep over a list of meshes, splitting large lists across a worker pool. Results
// are written by input index, so the outcome does not depend on scheduling.
type culler struct {
	workers   int
	threshold int
	pool      worker.DynamicWorkerPool
	started   bool
	results   []bool
	taskID    int
}

func newCuller(workers, threshold int) *culler {
	return &culler{workers: max(workers, 1), threshold: threshold}
}

// cull returns one keep flag per mesh. The slice is reused by the next call.
func (c *culler) cull(meshes []*scene.Mesh, frustum *common.Frustum, farCorners [4]mgl32.Vec3) []bool {
	n := len(meshes)
	if cap(c.results) < n {
		c.results = make([]bool, n)
	}
	c.results = c.results[:n]

	if c.workers < 2 || c.threshold <= 0 || n < c.threshold {
		for i, m := range meshes {
			c.results[i] = Keep(m, frustum, farCorners)
		}
		return c.results
	}

	if !c.started {
		c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
		c.started = true
	}

	// A WaitGroup is the frame barrier. pool.Wait only returns once workers idle out.
	chunk := max((n+c.workers-1)/c.workers, minCullChunk)
	f := *frustum
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		c.taskID++
		c.pool.SubmitTask(worker.Task{
			ID: c.taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i := start; i < end; i++ {
					c.results[i] = Keep(meshes[i], &f, farCorners)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return c.results
}

// stop shuts the worker pool down. A later parallel cull starts a new one.
func (c *culler) stop() {
	if !c.started {
		return
	}
	c.pool.Stop()
	c.pool = nil
	c.started = false
}
