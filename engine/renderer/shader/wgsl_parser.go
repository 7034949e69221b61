package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name and parameter list
	vertexEntryRegex = regexp.MustCompile(`@vertex\s+fn\s+(\w+)\s*\(((?:[^()]|\([^()]*\))*)\)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\s+fn\s+(\w+)`)

	// computeEntryRegex matches @compute functions and captures the entry point name
	computeEntryRegex = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> modelViewMatrix: mat4x4<f32>;
	// or handle types: @group(1) @binding(0) var diffuseMap: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	// constDeclRegex captures module-scope integer constants: const MAX_SHADOWS = 4;
	constDeclRegex = regexp.MustCompile(`(?m)^\s*const\s+(\w+)\s*(?::\s*\w+\s*)?=\s*(\d+)u?\s*;`)
)

// Reflect validates WGSL source and extracts the entry point, resource bindings and vertex inputs
// for one stage. The source must already be pre-processed.
//
// Parameters:
//   - source: the assembled WGSL source
//   - stage: the stage whose entry point must be present
//
// Returns:
//   - *Reflection: the reflected stage
//   - error: an error if the source is malformed or the entry point is missing
func Reflect(source string, stage ShaderType) (*Reflection, error) {
	if err := Validate(source); err != nil {
		return nil, err
	}

	cleaned := stripComments(source)
	entry := parseEntryPoint(cleaned, stage)
	if entry == "" {
		return nil, fmt.Errorf("no @%s entry point", stage)
	}

	consts := parseConsts(cleaned)
	structs := parseStructBlocks(cleaned)
	bindings, err := parseBindings(cleaned, computeStructSizes(structs, consts), consts)
	if err != nil {
		return nil, err
	}

	r := &Reflection{
		Stage:      stage,
		EntryPoint: entry,
		Bindings:   bindings,
	}
	if stage == ShaderTypeVertex {
		r.Attributes = parseVertexAttributes(cleaned, structs)
	}
	return r, nil
}

// parseBindings extracts all @group(N) @binding(M) resource declarations and classifies them.
// Two declarations sharing a group and binding are reported as an error.
//
// Parameters:
//   - cleaned: WGSL source with comments stripped
//   - structSizes: resolved struct layouts
//   - consts: module-scope integer constants
//
// Returns:
//   - []Binding: the bindings sorted by group then binding
//   - error: an error if a slot is declared twice
func parseBindings(cleaned string, structSizes map[string]wgslTypeLayout, consts map[string]uint64) ([]Binding, error) {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	bindings := make([]Binding, 0, len(matches))

	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		b := Binding{
			Group:        group,
			Binding:      binding,
			AddressSpace: strings.TrimSpace(match[3]),
			Name:         strings.TrimSpace(match[4]),
			Type:         strings.TrimSpace(match[5]),
		}
		b.Base, b.Param = splitTypeParams(b.Type)
		b.Kind = classifyResource(b.AddressSpace, b.Type)

		if b.Kind == BindingUniform || b.Kind == BindingStorage {
			if layout, stride, ok := resolveTypeLayout(b.Type, structSizes, consts); ok {
				b.Size = layout.size
				b.Stride = stride
			}
		}

		for _, other := range bindings {
			if other.Group == b.Group && other.Binding == b.Binding {
				return nil, fmt.Errorf("%s and %s both bind %s", other.Name, b.Name, fmt.Sprintf("@group(%d) @binding(%d)", group, binding))
			}
		}
		bindings = append(bindings, b)
	}

	slices.SortFunc(bindings, func(a, b Binding) int {
		if a.Group != b.Group {
			return a.Group - b.Group
		}
		return a.Binding - b.Binding
	})
	return bindings, nil
}

// classifyResource determines the resource category from the address space qualifier and type name.
func classifyResource(addressSpace, typeName string) BindingKind {
	if addressSpace != "" {
		if strings.HasPrefix(addressSpace, "storage") {
			return BindingStorage
		}
		return BindingUniform
	}

	switch {
	case typeName == "sampler":
		return BindingSampler
	case typeName == "sampler_comparison":
		return BindingComparisonSampler
	case strings.HasPrefix(typeName, "texture_storage_"):
		return BindingStorageTexture
	case strings.HasPrefix(typeName, "texture_depth_"):
		return BindingDepthTexture
	default:
		return BindingTexture
	}
}

// parseConsts collects module-scope integer constants so array counts such as MAX_SHADOWS resolve.
func parseConsts(cleaned string) map[string]uint64 {
	consts := make(map[string]uint64)
	for _, m := range constDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		if v, err := strconv.ParseUint(m[2], 10, 64); err == nil {
			consts[m[1]] = v
		}
	}
	return consts
}

// parseEntryPoint extracts the entry point function name for the given shader type
// from WGSL source. Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - cleaned: WGSL source with comments stripped
//   - shaderType: the shader type to search for (ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute)
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(cleaned string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	case ShaderTypeCompute:
		re = computeEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseVertexAttributes returns the @location inputs of the vertex entry point. Inputs may be
// declared directly as parameters or through a vertex input struct passed as a parameter.
func parseVertexAttributes(cleaned string, structs []parsedStruct) []Attribute {
	match := vertexEntryRegex.FindStringSubmatch(cleaned)
	if match == nil {
		return nil
	}

	var attrs []Attribute
	add := func(f parsedField) {
		if f.isBuiltin || f.location < 0 {
			return
		}
		attrs = append(attrs, Attribute{
			Name:       f.name,
			Location:   f.location,
			Type:       f.typeName,
			Components: wgslComponentMap[f.typeName],
		})
	}

	for _, param := range parseStructFields(match[2]) {
		if param.location >= 0 {
			add(param)
			continue
		}
		for _, ps := range structs {
			if ps.name != param.typeName || !isVertexInputStruct(ps) {
				continue
			}
			for _, f := range ps.fields {
				add(f)
			}
		}
	}

	slices.SortFunc(attrs, func(a, b Attribute) int { return a.Location - b.Location })
	return attrs
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block (or a parameter list) into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField

		// check for @builtin
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		// check for @location(N)
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			loc, err := strconv.Atoi(locMatch[1])
			if err == nil {
				field.location = loc
			}
		} else {
			field.location = -1
		}

		// extract field name and type
		if fm := fieldRegex.FindStringSubmatch(line); fm != nil {
			field.name = fm[1]
			field.typeName = strings.TrimSpace(fm[2])
		} else {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}
