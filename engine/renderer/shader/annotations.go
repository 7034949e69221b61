// annotations.go defines the annotation types and parser for the Oxy WGSL shader pre-processor.
// Annotations are single-line WGSL comments prefixed with @trike: that inject registered source
// chunks and select or repeat blocks of source based on the active define set.
package shader

import (
	"fmt"
	"regexp"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@trike:"

// repeatIndex is replaced with the iteration index inside a repeat block.
const repeatIndex = "${i}"

// identRegex matches a define or chunk name.
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the source of a registered chunk at the annotation site.
	// Chunks are pre-processed with the same define set, so they may contain annotations themselves.
	//
	// Syntax: //@trike:include <chunk>
	//
	// Example: //@trike:include shadow
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeIfdef keeps the following lines only when the define is present.
	//
	// Syntax: //@trike:ifdef <DEFINE>
	AnnotationTypeIfdef AnnotationType = "ifdef"

	// AnnotationTypeIfndef keeps the following lines only when the define is absent.
	//
	// Syntax: //@trike:ifndef <DEFINE>
	AnnotationTypeIfndef AnnotationType = "ifndef"

	// AnnotationTypeElse inverts the innermost open ifdef or ifndef.
	//
	// Syntax: //@trike:else
	AnnotationTypeElse AnnotationType = "else"

	// AnnotationTypeEndif closes the innermost open ifdef or ifndef.
	//
	// Syntax: //@trike:endif
	AnnotationTypeEndif AnnotationType = "endif"

	// AnnotationTypeRepeat emits the enclosed lines once per value of the named integer define,
	// replacing ${i} with the iteration index. Used to declare one texture binding per shadow map.
	//
	// Syntax: //@trike:repeat <DEFINE>
	//
	// Example: //@trike:repeat MAX_SHADOWS
	AnnotationTypeRepeat AnnotationType = "repeat"

	// AnnotationTypeEndRepeat closes a repeat block.
	//
	// Syntax: //@trike:endrepeat
	AnnotationTypeEndRepeat AnnotationType = "endrepeat"
)

// Annotation represents a single parsed @trike: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Arg is the chunk or define name, empty for else, endif and endrepeat.
	Arg string

	// Line is the 1-based line number in the source where this annotation was found.
	Line int
}

// parseAnnotation attempts to parse a single line of WGSL source as an @trike: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @trike annotation", lineNum)
	}

	a := &Annotation{Type: AnnotationType(args[0]), Line: lineNum}
	switch a.Type {
	case AnnotationTypeInclude, AnnotationTypeIfdef, AnnotationTypeIfndef, AnnotationTypeRepeat:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @trike %s annotation requires exactly one argument", lineNum, args[0])
		}
		if !identRegex.MatchString(args[1]) {
			return nil, fmt.Errorf("line %d: invalid name %q in @trike %s annotation", lineNum, args[1], args[0])
		}
		a.Arg = args[1]
	case AnnotationTypeElse, AnnotationTypeEndif, AnnotationTypeEndRepeat:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: @trike %s annotation takes no arguments", lineNum, args[0])
		}
	default:
		return nil, fmt.Errorf("line %d: unknown @trike annotation type %q", lineNum, args[0])
	}
	return a, nil
}
