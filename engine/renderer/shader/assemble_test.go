package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineSetOrdering(t *testing.T) {
	assert := assert.New(t)

	var s DefineSet
	assert.True(s.Add(Flag("B")))
	assert.True(s.Add(Int("A", 2)))
	assert.False(s.Add(Flag("B")))
	assert.True(s.Add(Int("A", 3)))

	assert.Equal([]string{"A", "B"}, s.Names())
	assert.Equal("A=3;B", s.Key())
	assert.True(s.Has("A"))

	c := s.Clone()
	assert.True(c.Remove("A"))
	assert.False(c.Remove("A"))
	assert.True(s.Has("A"))
	assert.False(s.Equal(c))

	d, ok := s.Get("A")
	require.True(t, ok)
	v, ok := d.IntValue()
	assert.True(ok)
	assert.Equal(3, v)
}

func TestAssembleIsDeterministic(t *testing.T) {
	assert := assert.New(t)
	src := "//@trike:ifdef LIT\nlit\n//@trike:endif\n@fragment\nfn fs_main() {}"

	a, err := Assemble("standard/gbuffer", NewDefineSet(Flag("LIT"), Int("MAX_SHADOWS", 2)), src)
	require.NoError(t, err)
	b, err := Assemble("standard/gbuffer", NewDefineSet(Int("MAX_SHADOWS", 2), Flag("LIT")), src)
	require.NoError(t, err)
	assert.Equal(a, b)

	header := strings.Split(a, "\n")
	assert.Equal("// standard/gbuffer", header[0])
	assert.Equal("const LIT = true;", header[1])
	assert.Equal("const MAX_SHADOWS = 2;", header[2])
	assert.Contains(a, "lit")

	plain, err := Assemble("standard/gbuffer", DefineSet{}, src)
	require.NoError(t, err)
	assert.NotContains(plain, "lit\n")
}

func TestAssembleReportsLabel(t *testing.T) {
	_, err := Assemble("sky", DefineSet{}, "//@trike:include nothing")
	assert.ErrorContains(t, err, "sky:")
}
