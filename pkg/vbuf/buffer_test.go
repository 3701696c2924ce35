package vbuf

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	m := MaskOf(Position, Color, Slot(12))

	assert.True(t, m.Has(Position))
	assert.False(t, m.Has(TexCoord))
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, []Slot{Position, Color, 12}, slices.Collect(m.Slots()))
	assert.Equal(t, MaskOf(Color), m.Intersect(MaskOf(Color, Normal)))
	assert.False(t, m.Without(Color).Has(Color))
}

func TestBufferLen(t *testing.T) {
	tests := []struct {
		name string
		buf  Buffer
		want int
	}{
		{"empty", Buffer{}, 0},
		{"packed", Packed(make([]float32, 9), 3), 3},
		{"strided", Buffer{Data: make([]float32, 10), Components: 2, Stride: 4}, 3},
		{"short tail", Buffer{Data: make([]float32, 9), Components: 2, Stride: 4}, 2},
		{"too short", Packed(make([]float32, 2), 3), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.buf.Len())
		})
	}
}

func TestBufferValidate(t *testing.T) {
	assert.NoError(t, Packed(nil, 4).Validate())
	assert.ErrorIs(t, Packed(nil, 5).Validate(), ErrBadBuffer)
	assert.ErrorIs(t, Buffer{Components: 3, Stride: 2}.Validate(), ErrBadBuffer)
}

func TestSetActive(t *testing.T) {
	var s Set
	s.Bind(Position, Packed(make([]float32, 12), 3))
	s.Bind(TexCoord, Packed(make([]float32, 6), 2))
	s.Bind(Color, Packed(make([]float32, 16), 4))

	require.Equal(t, MaskOf(Position, TexCoord, Color), s.Present())

	active := s.Active(MaskOf(Position, TexCoord, Normal))
	assert.Equal(t, MaskOf(Position, TexCoord), active)
	assert.Equal(t, 3, s.VertexCount(active))
	assert.Equal(t, 4, s.VertexCount(MaskOf(Position, Color)))
	assert.NoError(t, s.Validate(active))

	s.Unbind(TexCoord)
	assert.False(t, s.Present().Has(TexCoord))
}

func TestTopologyTriangles(t *testing.T) {
	assert.Equal(t, 2, List.Triangles(7))
	assert.Equal(t, 4, Strip.Triangles(6))
	assert.Equal(t, 0, Fan.Triangles(2))
	assert.Equal(t, 4, Quad.Triangles(9))
	assert.Equal(t, "quad", Quad.String())
}

func TestTopologyEach(t *testing.T) {
	collect := func(topo Topology, idx []uint32) [][3]uint32 {
		var out [][3]uint32
		for _, tri := range topo.Each(idx) {
			out = append(out, tri)
		}
		return out
	}

	assert.Equal(t, [][3]uint32{{0, 1, 2}, {3, 4, 5}}, collect(List, []uint32{0, 1, 2, 3, 4, 5, 6}))
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}, collect(Strip, []uint32{0, 1, 2, 3, 4}))
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {0, 2, 3}}, collect(Fan, []uint32{0, 1, 2, 3}))
	assert.Equal(t, [][3]uint32{{4, 5, 6}, {4, 6, 7}}, collect(Quad, []uint32{4, 5, 6, 7}))
	assert.Empty(t, collect(Fan, []uint32{0, 1}))
}
