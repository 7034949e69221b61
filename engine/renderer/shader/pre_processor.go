// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @trike: annotations, injects registered source chunks, and keeps,
// drops or repeats blocks of lines depending on the active define set.
package shader

import (
	"fmt"
	"strings"
)

// maxIncludeDepth bounds nested includes so a chunk that includes itself fails instead of recursing forever.
const maxIncludeDepth = 8

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// chunkRegistry maps include names to WGSL source chunks.
	chunkRegistry map[string]string
}

// PreProcessor processes raw WGSL shader source code containing @trike: annotations.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and resolves every annotation. Include annotations
	// are replaced with the registered chunk source, conditional blocks are kept or dropped based on
	// the define set, and repeat blocks are unrolled.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//   - defines: the active define set
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations resolved
	//   - error: an error if any annotation is malformed, unbalanced or references an unknown chunk
	Process(source string, defines DefineSet) (string, error)

	// Register adds or replaces a named chunk available to include annotations.
	//
	// Parameters:
	//   - name: the chunk name used in //@trike:include <name>
	//   - source: the WGSL chunk source
	Register(name, source string)

	// Chunk returns the source of a registered chunk.
	//
	// Parameters:
	//   - name: the chunk name
	//
	// Returns:
	//   - string: the chunk source
	//   - bool: false if no chunk is registered under the name
	Chunk(name string) (string, bool)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the engine's built-in chunks registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	p := &preProcessor{chunkRegistry: make(map[string]string)}
	for name, src := range builtinChunks() {
		p.chunkRegistry[name] = src
	}
	return p
}

func (p *preProcessor) Register(name, source string) {
	if !identRegex.MatchString(name) {
		panic(fmt.Sprintf("shader: invalid chunk name %q", name))
	}
	p.chunkRegistry[name] = source
}

func (p *preProcessor) Chunk(name string) (string, bool) {
	src, ok := p.chunkRegistry[name]
	return src, ok
}

func (p *preProcessor) Process(source string, defines DefineSet) (string, error) {
	out := make([]string, 0, strings.Count(source, "\n")+1)
	if err := p.process(strings.Split(source, "\n"), defines, 0, &out); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

// condFrame is one open ifdef or ifndef block.
type condFrame struct {
	parentActive bool
	cond         bool
	inElse       bool
	line         int
}

func (f condFrame) active() bool {
	if f.inElse {
		return f.parentActive && !f.cond
	}
	return f.parentActive && f.cond
}

func (p *preProcessor) process(lines []string, defines DefineSet, depth int, out *[]string) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("include depth exceeds %d", maxIncludeDepth)
	}

	var stack []condFrame
	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active()
	}

	for i := 0; i < len(lines); i++ {
		lineNum := i + 1
		a, err := parseAnnotation(lines[i], lineNum)
		if err != nil {
			return err
		}
		if a == nil {
			if active() {
				*out = append(*out, lines[i])
			}
			continue
		}

		switch a.Type {
		case AnnotationTypeIfdef, AnnotationTypeIfndef:
			cond := defines.Has(a.Arg)
			if a.Type == AnnotationTypeIfndef {
				cond = !cond
			}
			stack = append(stack, condFrame{parentActive: active(), cond: cond, line: lineNum})
		case AnnotationTypeElse:
			if len(stack) == 0 {
				return fmt.Errorf("line %d: @trike else without ifdef", lineNum)
			}
			top := &stack[len(stack)-1]
			if top.inElse {
				return fmt.Errorf("line %d: duplicate @trike else for block opened on line %d", lineNum, top.line)
			}
			top.inElse = true
		case AnnotationTypeEndif:
			if len(stack) == 0 {
				return fmt.Errorf("line %d: @trike endif without ifdef", lineNum)
			}
			stack = stack[:len(stack)-1]
		case AnnotationTypeInclude:
			if !active() {
				continue
			}
			chunk, ok := p.chunkRegistry[a.Arg]
			if !ok {
				return fmt.Errorf("line %d: unknown @trike include chunk %q", lineNum, a.Arg)
			}
			if err := p.process(strings.Split(chunk, "\n"), defines, depth+1, out); err != nil {
				return fmt.Errorf("include %s: %w", a.Arg, err)
			}
		case AnnotationTypeRepeat:
			end, err := findEndRepeat(lines, i)
			if err != nil {
				return err
			}
			body := lines[i+1 : end]
			i = end
			if !active() {
				continue
			}
			count := 0
			if d, ok := defines.Get(a.Arg); ok {
				if count, ok = d.IntValue(); !ok {
					return fmt.Errorf("line %d: define %s is not an integer", lineNum, a.Arg)
				}
			}
			for n := range count {
				expanded := make([]string, len(body))
				for j, l := range body {
					expanded[j] = strings.ReplaceAll(l, repeatIndex, fmt.Sprint(n))
				}
				if err := p.process(expanded, defines, depth+1, out); err != nil {
					return fmt.Errorf("line %d: %w", lineNum, err)
				}
			}
		case AnnotationTypeEndRepeat:
			return fmt.Errorf("line %d: @trike endrepeat without repeat", lineNum)
		}
	}

	if len(stack) > 0 {
		return fmt.Errorf("line %d: unterminated @trike %s block", stack[len(stack)-1].line, "ifdef")
	}
	return nil
}

// findEndRepeat returns the index of the endrepeat closing the repeat at start. Repeats do not nest.
func findEndRepeat(lines []string, start int) (int, error) {
	for j := start + 1; j < len(lines); j++ {
		a, err := parseAnnotation(lines[j], j+1)
		if err != nil {
			return 0, err
		}
		if a == nil {
			continue
		}
		switch a.Type {
		case AnnotationTypeEndRepeat:
			return j, nil
		case AnnotationTypeRepeat:
			return 0, fmt.Errorf("line %d: nested @trike repeat", j+1)
		}
	}
	return 0, fmt.Errorf("line %d: unterminated @trike repeat block", start+1)
}
