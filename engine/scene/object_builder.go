package scene

import "github.com/go-gl/mathgl/mgl32"

// ObjectBuilderOption is a functional option for configuring an Object during construction.
type ObjectBuilderOption func(*Object)

// WithName sets the name of the Object.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - ObjectBuilderOption: functional option to set the name
func WithName(name string) ObjectBuilderOption {
	return func(o *Object) {
		o.name = name
	}
}

// WithVisible sets whether the Object is drawn.
//
// Parameters:
//   - visible: false to cull the object and its meshes
//
// Returns:
//   - ObjectBuilderOption: functional option to set the visibility
func WithVisible(visible bool) ObjectBuilderOption {
	return func(o *Object) {
		o.visible = visible
	}
}

// WithPosition sets the initial local position of the Object.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - ObjectBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) ObjectBuilderOption {
	return func(o *Object) {
		o.SetPosition(p)
	}
}

// WithRotation sets the initial local rotation of the Object.
//
// Parameters:
//   - q: the rotation
//
// Returns:
//   - ObjectBuilderOption: functional option to set the rotation
func WithRotation(q mgl32.Quat) ObjectBuilderOption {
	return func(o *Object) {
		o.SetRotation(q)
	}
}

// WithScale sets the initial local scale of the Object.
//
// Parameters:
//   - s: the scale factors
//
// Returns:
//   - ObjectBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) ObjectBuilderOption {
	return func(o *Object) {
		o.SetScale(s)
	}
}

// WithUpdate installs the per-frame update hook of the Object.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - ObjectBuilderOption: functional option to set the hook
func WithUpdate(fn UpdateFunc) ObjectBuilderOption {
	return func(o *Object) {
		o.onUpdate = fn
	}
}

// WithChildren attaches children to the Object.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - ObjectBuilderOption: functional option to attach the children
func WithChildren(children ...Node) ObjectBuilderOption {
	return func(o *Object) {
		o.Add(children...)
	}
}
