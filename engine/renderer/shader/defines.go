package shader

import (
	"slices"
	"strconv"
	"strings"
)

// Define is one shader-variant flag. A Define with an empty Value is a plain flag; a valued define
// is emitted as a module-scope constant so WGSL code can size arrays with it.
type Define struct {
	Name  string
	Value string
}

// Flag returns a define without a value.
func Flag(name string) Define {
	return Define{Name: name}
}

// Int returns a define carrying an integer value.
func Int(name string, v int) Define {
	return Define{Name: name, Value: strconv.Itoa(v)}
}

// IntValue parses the define value as an integer. Flags report 1.
func (d Define) IntValue() (int, bool) {
	if d.Value == "" {
		return 1, true
	}
	v, err := strconv.Atoi(d.Value)
	return v, err == nil
}

// DefineSet is an ordered set of defines keyed by name. The zero value is an empty set.
// Iteration order is sorted by name so the same set always assembles the same source.
type DefineSet struct {
	defs []Define
}

// NewDefineSet returns a set holding the given defines. Later duplicates replace earlier ones.
func NewDefineSet(defs ...Define) DefineSet {
	var s DefineSet
	for _, d := range defs {
		s.Add(d)
	}
	return s
}

func (s *DefineSet) index(name string) (int, bool) {
	return slices.BinarySearchFunc(s.defs, name, func(d Define, n string) int {
		return strings.Compare(d.Name, n)
	})
}

// Add inserts or replaces a define.
//
// Parameters:
//   - d: the define to set
//
// Returns:
//   - bool: true if the set changed
func (s *DefineSet) Add(d Define) bool {
	i, found := s.index(d.Name)
	if found {
		if s.defs[i] == d {
			return false
		}
		s.defs[i] = d
		return true
	}
	s.defs = slices.Insert(s.defs, i, d)
	return true
}

// Remove deletes a define by name.
//
// Parameters:
//   - name: the define name
//
// Returns:
//   - bool: true if the define was present
func (s *DefineSet) Remove(name string) bool {
	i, found := s.index(name)
	if !found {
		return false
	}
	s.defs = slices.Delete(s.defs, i, i+1)
	return true
}

// Has reports whether a define is present.
func (s DefineSet) Has(name string) bool {
	_, found := s.index(name)
	return found
}

// Get returns a define by name.
func (s DefineSet) Get(name string) (Define, bool) {
	i, found := s.index(name)
	if !found {
		return Define{}, false
	}
	return s.defs[i], true
}

// Len returns the number of defines.
func (s DefineSet) Len() int {
	return len(s.defs)
}

// All returns the defines sorted by name. The slice must not be modified.
func (s DefineSet) All() []Define {
	return s.defs
}

// Names returns the define names sorted.
func (s DefineSet) Names() []string {
	names := make([]string, len(s.defs))
	for i, d := range s.defs {
		names[i] = d.Name
	}
	return names
}

// Clone returns an independent copy of the set.
func (s DefineSet) Clone() DefineSet {
	return DefineSet{defs: slices.Clone(s.defs)}
}

// Equal reports whether two sets hold the same defines.
func (s DefineSet) Equal(other DefineSet) bool {
	return slices.Equal(s.defs, other.defs)
}

// Key returns a deterministic string identifying the set.
func (s DefineSet) Key() string {
	var sb strings.Builder
	for i, d := range s.defs {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(d.Name)
		if d.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(d.Value)
		}
	}
	return sb.String()
}
