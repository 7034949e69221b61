package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	var out []string
	for l := range strings.SplitSeq(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestPreProcessorConditionals(t *testing.T) {
	src := `a
//@trike:ifdef FOO
b
//@trike:ifndef BAR
c
//@trike:else
d
//@trike:endif
//@trike:else
e
//@trike:endif
f`
	p := NewPreProcessor()

	out, err := p.Process(src, DefineSet{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "e", "f"}, lines(out))

	out, err = p.Process(src, NewDefineSet(Flag("FOO")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "f"}, lines(out))

	out, err = p.Process(src, NewDefineSet(Flag("FOO"), Flag("BAR")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "f"}, lines(out))
}

func TestPreProcessorIncludeAndRepeat(t *testing.T) {
	p := NewPreProcessor()
	p.Register("decl", "//@trike:repeat COUNT\nvar t_${i};\n//@trike:endrepeat")

	out, err := p.Process("//@trike:include decl\nend", NewDefineSet(Int("COUNT", 3)))
	require.NoError(t, err)
	assert.Equal(t, []string{"var t_0;", "var t_1;", "var t_2;", "end"}, lines(out))

	out, err = p.Process("//@trike:include decl\nend", DefineSet{})
	require.NoError(t, err)
	assert.Equal(t, []string{"end"}, lines(out))
}

func TestPreProcessorErrors(t *testing.T) {
	p := NewPreProcessor()
	p.Register("loop", "//@trike:include loop")

	cases := map[string]string{
		"//@trike:include missing": "unknown @trike include chunk",
		"//@trike:ifdef A\nx":      "unterminated",
		"//@trike:endif":           "without ifdef",
		"//@trike:ifdef A\n//@trike:else\n//@trike:else\n//@trike:endif": "duplicate",
		"//@trike:repeat N\nx": "unterminated @trike repeat",
		"//@trike:repeat N\n//@trike:repeat M\n//@trike:endrepeat": "nested",
		"//@trike:bogus":        "unknown @trike annotation type",
		"//@trike:include":      "exactly one argument",
		"//@trike:include loop": "include depth",
	}
	for src, want := range cases {
		_, err := p.Process(src, DefineSet{})
		assert.ErrorContains(t, err, want, src)
	}
}

func TestBuiltinShadowChunk(t *testing.T) {
	assert := assert.New(t)
	p := NewPreProcessor()

	out, err := p.Process("//@trike:include shadow", DefineSet{})
	require.NoError(t, err)
	assert.Contains(out, "return 1.0;")
	assert.NotContains(out, "shadowMap_0")

	out, err = p.Process("//@trike:include shadow", NewDefineSet(Flag("SHADOW_MAPPING"), Int("MAX_SHADOWS", 2), Flag("SHADOW_PCF")))
	require.NoError(t, err)
	assert.Contains(out, "var shadowMap_1: texture_2d<f32>;")
	assert.NotContains(out, "shadowMap_2")
	assert.Contains(out, "lit * 0.25")
	assert.NotContains(out, "variance")
}
