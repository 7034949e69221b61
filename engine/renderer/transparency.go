package renderer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// TransparencyQuality selects how the transparent bucket is lit.
type TransparencyQuality int

const (
	// TransparencyQualityLow lights every transparent mesh in one batch. Overlapping transparent
	// surfaces only receive the light of the front-most one.
	TransparencyQualityLow TransparencyQuality = iota

	// TransparencyQualityHigh lights and composites transparent meshes one at a time, back to front.
	TransparencyQualityHigh
)

func (q TransparencyQuality) String() string {
	switch q {
	case TransparencyQualityLow:
		return "low"
	case TransparencyQualityHigh:
		return "high"
	default:
		return fmt.Sprintf("TransparencyQuality(%d)", int(q))
	}
}

type depthEntry struct {
	mesh  *scene.Mesh
	depth float32
}

// TransparencySorter orders meshes back to front by the projected depth of their world origin.
// The scratch buffer is reused, so sorting does not allocate once it has grown to the bucket size.
type TransparencySorter struct {
	scratch []depthEntry
}

// NewTransparencySorter creates a sorter with an empty scratch buffer.
func NewTransparencySorter() *TransparencySorter {
	return &TransparencySorter{}
}

// Sort reorders meshes in place, farthest first. Meshes at equal depth keep their input order.
//
// Parameters:
//   - meshes: the meshes to order
//   - viewProjection: the projection * view matrix of the camera
func (s *TransparencySorter) Sort(meshes []*scene.Mesh, viewProjection mgl32.Mat4) {
	if len(meshes) < 2 {
		return
	}
	s.scratch = s.scratch[:0]
	for _, m := range meshes {
		s.scratch = append(s.scratch, depthEntry{mesh: m, depth: common.ProjectDepth(viewProjection, m.WorldPosition())})
	}
	slices.SortStableFunc(s.scratch, func(a, b depthEntry) int {
		return cmp.Compare(b.depth, a.depth)
	})
	for i, e := range s.scratch {
		meshes[i] = e.mesh
		s.scratch[i].mesh = nil
	}
}
