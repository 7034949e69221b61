package material

// PassMaterial is the program a CompositeMaterial draws with in one pass. Attributes its program
// does not read are dropped at compile time instead of failing it.
type PassMaterial interface {
	Material

	// Pass retrieves the pass type the material is bound to.
	//
	// Returns:
	//   - PassType: the pass type
	Pass() PassType
}

// passMaterial is the implementation of the PassMaterial interface.
type passMaterial struct {
	*material
	passType PassType
}

var _ PassMaterial = &passMaterial{}

// NewPassMaterial creates a material bound to a single pass type.
//
// Parameters:
//   - pass: the pass type
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - PassMaterial: a new PassMaterial instance
func NewPassMaterial(pass PassType, options ...MaterialBuilderOption) PassMaterial {
	m := newMaterial(options...)
	m.pass = pass.String()
	m.dropMissingAttributes = true
	return &passMaterial{material: m, passType: pass}
}

func (p *passMaterial) Pass() PassType {
	return p.passType
}
