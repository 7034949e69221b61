package material

// Attribute maps a geometry attribute name to the vertex input slot it feeds.
type Attribute struct {
	name       string
	components int
	slot       int
}

// NewAttribute declares a vertex attribute.
//
// Parameters:
//   - name: the geometry attribute and vertex input name
//   - components: the number of floats per vertex
//
// Returns:
//   - *Attribute: the unresolved attribute
func NewAttribute(name string, components int) *Attribute {
	return &Attribute{name: name, components: components, slot: -1}
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.name
}

// Components returns the number of floats per vertex.
func (a *Attribute) Components() int {
	return a.components
}

// Slot returns the resolved vertex input slot. It is false before compile and for attributes a
// pass material dropped because its program does not read them.
func (a *Attribute) Slot() (int, bool) {
	return a.slot, a.slot >= 0
}

// Clone returns an unresolved copy.
func (a *Attribute) Clone() *Attribute {
	return NewAttribute(a.name, a.components)
}
