package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/softclip/pkg/blend"
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/math3d"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// newTestRenderer returns a 64x64 renderer with the camera at the origin
// looking down -Z.
func newTestRenderer() *Renderer {
	r := NewRenderer(NewCamera(), NewFramebuffer(64, 64))
	r.BeginFrame(ColorBlack)
	return r
}

// triangleCall draws a front-facing triangle at world depth z whose screen
// size does not depend on z when scale equals -z/5.
func triangleCall(scale, z float32, c Color) *DrawCall {
	set := &vbuf.Set{}
	set.Bind(vbuf.Position, vbuf.Packed([]float32{
		-scale, -scale, z,
		0, scale, z,
		scale, -scale, z,
	}, 3))
	return &DrawCall{
		Buffers:       set,
		Indices:       []uint32{0, 1, 2},
		Topology:      vbuf.List,
		ObjectToWorld: math3d.Identity(),
		Color:         c,
		Src:           blend.One,
		Dst:           blend.Zero,
	}
}

func TestDrawTriangle(t *testing.T) {
	r := newTestRenderer()
	require.NoError(t, r.Draw(triangleCall(1, -5, ColorRed)))

	assert.Equal(t, ColorRed, r.fb.GetPixel(32, 35))
	assert.Equal(t, ColorBlack, r.fb.GetPixel(2, 2))
	assert.Equal(t, ColorBlack, r.fb.GetPixel(32, 10))
	assert.Equal(t, 1, r.Stats.Triangles)
	assert.Equal(t, 1, r.Stats.Polygons)
}

func TestDrawErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(dc *DrawCall)
		want   error
	}{
		{"no position", func(dc *DrawCall) { dc.Desired = vbuf.MaskOf(vbuf.TexCoord) }, ErrNoPosition},
		{"position too narrow", func(dc *DrawCall) {
			dc.Buffers.Bind(vbuf.Position, vbuf.Packed([]float32{0, 0, 1, 1, 2, 2}, 2))
		}, ErrNoPosition},
		{"bad component count", func(dc *DrawCall) {
			dc.Buffers.Bind(vbuf.Normal, vbuf.Buffer{Data: make([]float32, 15), Components: 5})
		}, ErrBadBuffer},
		{"bad stride", func(dc *DrawCall) {
			dc.Buffers.Bind(vbuf.TexCoord, vbuf.Buffer{Data: make([]float32, 6), Components: 2, Stride: 1})
		}, ErrBadBuffer},
		{"index out of range", func(dc *DrawCall) { dc.Indices = []uint32{0, 1, 3} }, ErrIndexRange},
		{"too many triangles", func(dc *DrawCall) { dc.Triangles = 2 }, ErrTriangleCount},
		{"negative triangles", func(dc *DrawCall) { dc.Triangles = -1 }, ErrTriangleCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRenderer()
			dc := triangleCall(1, -5, ColorRed)
			tc.mutate(dc)
			err := r.Draw(dc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Zero(t, r.Stats.Triangles)
		})
	}

	t.Run("unknown blend factor", func(t *testing.T) {
		r := newTestRenderer()
		dc := triangleCall(1, -5, ColorRed)
		dc.Src = blend.Factor(200)
		assert.Error(t, r.Draw(dc))
	})
}

func TestDrawOutline(t *testing.T) {
	r := newTestRenderer()
	dc := triangleCall(1, -5, ColorRed)
	dc.Outline = clip.NewRectOutline(0, 0, 32, 64)
	require.NoError(t, r.Draw(dc))

	assert.Equal(t, ColorRed, r.fb.GetPixel(28, 38))
	assert.Equal(t, ColorBlack, r.fb.GetPixel(36, 38))
	assert.Equal(t, 1, r.Stats.Polygons)
}

func TestDrawDepth(t *testing.T) {
	near := triangleCall(1, -5, ColorRed)
	far := triangleCall(2, -10, ColorBlue)

	t.Run("far first", func(t *testing.T) {
		r := newTestRenderer()
		require.NoError(t, r.Draw(far))
		require.NoError(t, r.Draw(near))
		assert.Equal(t, ColorRed, r.fb.GetPixel(32, 35))
	})

	t.Run("near first", func(t *testing.T) {
		r := newTestRenderer()
		require.NoError(t, r.Draw(near))
		require.NoError(t, r.Draw(far))
		assert.Equal(t, ColorRed, r.fb.GetPixel(32, 35))
	})
}

func TestDrawNearSplit(t *testing.T) {
	r := newTestRenderer()
	dc := triangleCall(1, -5, ColorRed)
	// Pull the first corner behind the camera.
	dc.Buffers.Bind(vbuf.Position, vbuf.Packed([]float32{
		-1, -1, 1,
		0, 1, -5,
		1, -1, -5,
	}, 3))
	require.NoError(t, r.Draw(dc))

	assert.Equal(t, 1, r.Stats.Triangles)
	assert.Equal(t, 2, r.Stats.Polygons)
	assert.Equal(t, ColorRed, r.fb.GetPixel(30, 40))
}

func TestDrawFrustumCulled(t *testing.T) {
	r := newTestRenderer()
	dc := triangleCall(1, -5, ColorRed)
	dc.Bounds = &AABB{Min: math3d.V3(-1, -1, -5), Max: math3d.V3(1, 1, -5)}
	dc.ObjectToWorld = math3d.Translate(math3d.V3(0, 0, 20))
	require.NoError(t, r.Draw(dc))

	assert.Equal(t, 1, r.Stats.MeshesTested)
	assert.Equal(t, 1, r.Stats.MeshesCulled)
	assert.Zero(t, r.Stats.Triangles)
}

func TestDrawMirror(t *testing.T) {
	flip := math3d.Scale(math3d.V3(-1, 1, 1))

	t.Run("mirrored transform keeps front faces", func(t *testing.T) {
		r := newTestRenderer()
		dc := triangleCall(1, -5, ColorRed)
		dc.ObjectToWorld = flip
		require.NoError(t, r.Draw(dc))
		assert.Equal(t, 1, r.Stats.Polygons)
		assert.Equal(t, ColorRed, r.fb.GetPixel(32, 35))
	})

	t.Run("mirror flag on top culls", func(t *testing.T) {
		r := newTestRenderer()
		dc := triangleCall(1, -5, ColorRed)
		dc.ObjectToWorld = flip
		dc.Mirror = true
		require.NoError(t, r.Draw(dc))
		assert.Equal(t, 1, r.Stats.Backface)
		assert.Equal(t, ColorBlack, r.fb.GetPixel(32, 35))
	})
}

func TestDrawAlphaBlend(t *testing.T) {
	r := newTestRenderer()
	r.fb.Clear(RGB(0, 0, 200))
	dc := triangleCall(1, -5, RGBA(255, 0, 0, 128))
	dc.Src, dc.Dst = blend.SrcAlpha, blend.InvSrcAlpha
	require.NoError(t, r.Draw(dc))

	c := r.fb.GetPixel(32, 35)
	assert.InDelta(t, 128, int(c.R), 2)
	assert.InDelta(t, 100, int(c.B), 2)
	assert.Equal(t, RGB(0, 0, 200), r.fb.GetPixel(2, 2))
}

func TestDrawAttributes(t *testing.T) {
	t.Run("texture", func(t *testing.T) {
		r := newTestRenderer()
		dc := triangleCall(1, -5, ColorWhite)
		dc.Buffers.Bind(vbuf.TexCoord, vbuf.Packed([]float32{0, 0, 0.5, 1, 1, 0}, 2))
		dc.Texture = NewCheckerTexture(4, 4, 1, ColorGreen, ColorGreen)
		require.NoError(t, r.Draw(dc))
		assert.Equal(t, ColorGreen, r.fb.GetPixel(32, 35))
	})

	t.Run("texcoord not desired", func(t *testing.T) {
		r := newTestRenderer()
		dc := triangleCall(1, -5, ColorWhite)
		dc.Buffers.Bind(vbuf.TexCoord, vbuf.Packed([]float32{0, 0, 0.5, 1, 1, 0}, 2))
		dc.Texture = NewCheckerTexture(4, 4, 1, ColorGreen, ColorGreen)
		dc.Desired = vbuf.MaskOf(vbuf.Position)
		require.NoError(t, r.Draw(dc))
		assert.Equal(t, ColorWhite, r.fb.GetPixel(32, 35))
	})

	t.Run("vertex color", func(t *testing.T) {
		r := newTestRenderer()
		dc := triangleCall(1, -5, ColorWhite)
		dc.Buffers.Bind(vbuf.Color, vbuf.Packed([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, 3))
		require.NoError(t, r.Draw(dc))
		assert.Equal(t, ColorBlue, r.fb.GetPixel(32, 35))
	})
}

func TestDrawEdges(t *testing.T) {
	r := newTestRenderer()
	r.EdgeColor = ColorYellow
	require.NoError(t, r.Draw(triangleCall(1, -5, ColorRed)))

	// The apex of the triangle is on an edge.
	assert.Equal(t, ColorYellow, r.fb.GetPixel(32, 21))
	assert.Equal(t, ColorRed, r.fb.GetPixel(32, 35))
}

func BenchmarkDraw(b *testing.B) {
	r := newTestRenderer()
	dc := triangleCall(1, -5, ColorRed)
	dc.Outline = clip.NewRectOutline(0, 0, 32, 64)

	for b.Loop() {
		r.ClearDepth()
		if err := r.Draw(dc); err != nil {
			b.Fatal(err)
		}
	}
}
