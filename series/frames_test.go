package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hit struct {
	Taken   int `json:"taken"`
	Blocked int `json:"blocked"`
}

func TestDecode_Ints(t *testing.T) {
	f := Decode[int](`{"30": 1, "900": 2, "60": 1}`)
	require.True(t, f.Present())
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []int{30, 60, 900}, f.Frames())

	last, ok := f.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last)

	m, ok := MaxInt(f)
	require.True(t, ok)
	assert.Equal(t, 2, m)
}

func TestDecode_Structs(t *testing.T) {
	f := Decode[hit](`{"120": {"taken": 0, "blocked": 3}}`)
	require.True(t, f.Present())
	v, ok := f.At(120)
	require.True(t, ok)
	assert.Equal(t, 3, v.Blocked)
	assert.True(t, f.All(func(h hit) bool { return h.Taken == 0 }))
}

func TestDecode_Absent(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"invalid json": `{"30": `,
		"wrong type":   `{"30": "not a number"}`,
		"bad key":      `{"frame30": 1}`,
		"array":        `[1,2,3]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f := Decode[int](raw)
			assert.False(t, f.Present())
			assert.Equal(t, 0, f.Len())
			assert.False(t, f.All(func(int) bool { return true }))
			assert.False(t, f.Any(func(int) bool { return true }))
			_, ok := MaxInt(f)
			assert.False(t, ok)
		})
	}
}

func TestDecode_EmptyObjectIsPresent(t *testing.T) {
	f := Decode[int](`{}`)
	assert.True(t, f.Present())
	assert.Equal(t, 0, f.Len())
	_, ok := f.Last()
	assert.False(t, ok)
}

func TestOf_Copies(t *testing.T) {
	src := map[int]int{1: 1}
	f := Of(src)
	src[2] = 2
	assert.Equal(t, 1, f.Len())
}
