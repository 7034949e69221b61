package shader

import (
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed assets/chunks/*.wgsl
var chunkFS embed.FS

// builtinChunks loads the engine's include chunks keyed by file name without extension.
func builtinChunks() map[string]string {
	entries, err := chunkFS.ReadDir("assets/chunks")
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read embedded chunks: %v", err))
	}
	chunks := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := chunkFS.ReadFile(path.Join("assets/chunks", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("shader: failed to read chunk %s: %v", e.Name(), err))
		}
		chunks[strings.TrimSuffix(e.Name(), ".wgsl")] = string(data)
	}
	return chunks
}

var defaultPreProcessor = NewPreProcessor()

// RegisterChunk makes a WGSL chunk available to //@trike:include in every assembled shader.
//
// Parameters:
//   - name: the chunk name
//   - source: the chunk source
func RegisterChunk(name, source string) {
	defaultPreProcessor.Register(name, source)
}

// Assemble produces the final source of one shader stage variant. The result starts with a header
// naming the variant followed by one module-scope constant per define, then the pre-processed body.
// Equal inputs always produce byte-identical output, so the result can key a program cache.
//
// Parameters:
//   - label: a name for the variant, written into the header comment
//   - defines: the active define set
//   - source: the raw stage source with @trike: annotations
//
// Returns:
//   - string: the assembled source
//   - error: an error if pre-processing failed
func Assemble(label string, defines DefineSet, source string) (string, error) {
	body, err := defaultPreProcessor.Process(source, defines)
	if err != nil {
		return "", fmt.Errorf("%s: %w", label, err)
	}

	var sb strings.Builder
	sb.Grow(len(body) + 64*defines.Len())
	sb.WriteString("// ")
	sb.WriteString(strings.ReplaceAll(label, "\n", " "))
	sb.WriteByte('\n')
	for _, d := range defines.All() {
		if d.Value == "" {
			fmt.Fprintf(&sb, "const %s = true;\n", d.Name)
		} else {
			fmt.Fprintf(&sb, "const %s = %s;\n", d.Name, d.Value)
		}
	}
	sb.WriteString(body)
	return sb.String(), nil
}
