package material

import (
	"fmt"

	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
)

// CompileError reports a material whose program could not be assembled, linked or resolved.
type CompileError struct {
	Material   string
	Pass       string
	Stage      backend.Stage
	Diagnostic string
	Err        error
}

func (e *CompileError) Error() string {
	if e.Pass == "" {
		return fmt.Sprintf("material %s: %s: %s", e.Material, e.Stage, e.Diagnostic)
	}
	return fmt.Sprintf("material %s (%s pass): %s: %s", e.Material, e.Pass, e.Stage, e.Diagnostic)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
