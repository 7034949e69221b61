// Package scene holds the scene graph the renderer draws: transform nodes, meshes, light nodes and the
// sub-render nodes (skyboxes, mirrors, cube renderers and convolvers).
package scene

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is anything that can be placed in the scene graph.
type Node interface {
	// Base returns the transform node of n.
	//
	// Returns:
	//   - *Object: the transform node
	Base() *Object
}

// UpdateFunc is a per-object update hook run once per frame before world matrices are updated.
type UpdateFunc func(n Node, elapsed, delta time.Duration)

var nextObjectID atomic.Uint64

// Object is a transform node. Meshes, lights and the other scene nodes embed it. The world matrix is
// only valid after UpdateWorldMatrix has run for the current frame.
type Object struct {
	id       uint64
	name     string
	visible  bool
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	local      mgl32.Mat4
	world      mgl32.Mat4
	localDirty bool
	worldDirty bool

	owner    Node
	parent   *Object
	children []Node
	onUpdate UpdateFunc
}

var _ Node = &Object{}

// NewObject creates an empty transform node, typically used to group other nodes.
//
// Parameters:
//   - options: variadic list of ObjectBuilderOption functions to configure the object
//
// Returns:
//   - *Object: the object
func NewObject(options ...ObjectBuilderOption) *Object {
	o := newObject(nil, "object")
	for _, opt := range options {
		opt(o)
	}
	return o
}

func newObject(owner Node, name string) *Object {
	o := &Object{
		id:         nextObjectID.Add(1),
		name:       name,
		visible:    true,
		rotation:   mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		local:      mgl32.Ident4(),
		world:      mgl32.Ident4(),
		localDirty: true,
		worldDirty: true,
	}
	o.owner = owner
	if o.owner == nil {
		o.owner = o
	}
	return o
}

func (o *Object) Base() *Object {
	return o
}

// Owner returns the node embedding o, or o itself for plain objects.
func (o *Object) Owner() Node {
	return o.owner
}

func (o *Object) ID() uint64 {
	return o.id
}

func (o *Object) Name() string {
	return o.name
}

func (o *Object) SetName(name string) {
	o.name = name
}

// Visible reports whether the node is drawn. Invisible meshes are always culled.
func (o *Object) Visible() bool {
	return o.visible
}

func (o *Object) SetVisible(visible bool) {
	o.visible = visible
}

func (o *Object) Position() mgl32.Vec3 {
	return o.position
}

func (o *Object) SetPosition(p mgl32.Vec3) {
	if o.position == p {
		return
	}
	o.position = p
	o.localDirty = true
}

func (o *Object) Rotation() mgl32.Quat {
	return o.rotation
}

func (o *Object) SetRotation(q mgl32.Quat) {
	o.rotation = q.Normalize()
	o.localDirty = true
}

// SetRotationEuler sets the rotation from angles in radians applied in X, Y, Z order.
func (o *Object) SetRotationEuler(rx, ry, rz float32) {
	o.SetRotation(mgl32.AnglesToQuat(rx, ry, rz, mgl32.XYZ))
}

func (o *Object) Scale() mgl32.Vec3 {
	return o.scale
}

func (o *Object) SetScale(s mgl32.Vec3) {
	if o.scale == s {
		return
	}
	o.scale = s
	o.localDirty = true
}

// LocalMatrix returns translation * rotation * scale.
func (o *Object) LocalMatrix() mgl32.Mat4 {
	if o.localDirty {
		t := mgl32.Translate3D(o.position.X(), o.position.Y(), o.position.Z())
		s := mgl32.Scale3D(o.scale.X(), o.scale.Y(), o.scale.Z())
		o.local = t.Mul4(o.rotation.Mat4()).Mul4(s)
		o.localDirty = false
		o.worldDirty = true
	}
	return o.local
}

// World returns the world matrix computed by the last UpdateWorldMatrix.
func (o *Object) World() mgl32.Mat4 {
	return o.world
}

// WorldPosition returns the translation of the world matrix.
func (o *Object) WorldPosition() mgl32.Vec3 {
	return o.world.Col(3).Vec3()
}

// SetWorld overrides the world matrix until the next local change. Nodes driven by external
// transforms (physics, sub-render cameras) use it.
func (o *Object) SetWorld(world mgl32.Mat4) {
	o.world = world
	o.worldDirty = false
}

func (o *Object) Parent() *Object {
	return o.parent
}

func (o *Object) Children() []Node {
	return o.children
}

// Add attaches children to o, detaching each from its previous parent first. It panics if a child is
// nil, is o itself or is an ancestor of o.
//
// Parameters:
//   - children: the nodes to attach
func (o *Object) Add(children ...Node) {
	for _, child := range children {
		if child == nil {
			panic("scene: cannot add a nil node")
		}
		c := child.Base()
		if c == o {
			panic(fmt.Sprintf("scene: %q cannot be added as a child of itself", o.name))
		}
		for p := o.parent; p != nil; p = p.parent {
			if p == c {
				panic(fmt.Sprintf("scene: %q is an ancestor of %q and cannot be added as its child", c.name, o.name))
			}
		}
		if c.parent != nil {
			c.parent.Remove(child)
		}
		c.parent = o
		c.worldDirty = true
		o.children = append(o.children, child)
	}
}

// Remove detaches child from o.
//
// Parameters:
//   - child: the node to detach
//
// Returns:
//   - bool: false if child was not a child of o
func (o *Object) Remove(child Node) bool {
	c := child.Base()
	i := slices.IndexFunc(o.children, func(n Node) bool { return n.Base() == c })
	if i < 0 {
		return false
	}
	o.children = slices.Delete(o.children, i, i+1)
	c.parent = nil
	c.worldDirty = true
	return true
}

// OnUpdate installs the per-frame update hook. Nil removes it.
func (o *Object) OnUpdate(fn UpdateFunc) {
	o.onUpdate = fn
}

// Update runs the update hooks of o and its descendants, parents first.
//
// Parameters:
//   - elapsed: the time since the renderer started
//   - delta: the time since the previous frame
func (o *Object) Update(elapsed, delta time.Duration) {
	if o.onUpdate != nil {
		o.onUpdate(o.owner, elapsed, delta)
	}
	for _, child := range o.children {
		child.Base().Update(elapsed, delta)
	}
}

// UpdateWorldMatrix recomputes the world matrices of o and its descendants whose local matrix or
// ancestry changed.
//
// Parameters:
//   - force: recompute regardless of dirty state
func (o *Object) UpdateWorldMatrix(force bool) {
	local := o.LocalMatrix()
	if o.worldDirty || force {
		if o.parent != nil {
			o.world = o.parent.world.Mul4(local)
		} else {
			o.world = local
		}
		o.worldDirty = false
		force = true
	}
	for _, child := range o.children {
		child.Base().UpdateWorldMatrix(force)
	}
}

// Traverse visits o and its descendants depth first in insertion order. Returning false from fn skips
// the node's children.
//
// Parameters:
//   - fn: the visitor, called with the owning node
func (o *Object) Traverse(fn func(Node) bool) {
	if !fn(o.owner) {
		return
	}
	for _, child := range o.children {
		child.Base().Traverse(fn)
	}
}
