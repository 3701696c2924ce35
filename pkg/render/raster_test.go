package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/softclip/pkg/blend"
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/vbuf"
)

func copyShader(t *testing.T, c Color) *shader {
	t.Helper()
	fn, err := blend.Select(blend.RGBA8888, blend.One, blend.Zero)
	require.NoError(t, err)
	return &shader{base: c, blend: fn}
}

func screenPolygon(pts ...clip.Point) *clip.Polygon {
	poly := &clip.Polygon{Count: len(pts), Screen: make([]clip.ScreenVertex, len(pts))}
	for i, p := range pts {
		poly.Screen[i] = clip.ScreenVertex{X: p.X, Y: p.Y, InvZ: 1}
	}
	return poly
}

func TestFillConcave(t *testing.T) {
	r := newTestRenderer()
	// A U opening downward.
	poly := screenPolygon(
		clip.Point{X: 10, Y: 10}, clip.Point{X: 50, Y: 10},
		clip.Point{X: 50, Y: 50}, clip.Point{X: 40, Y: 50},
		clip.Point{X: 40, Y: 20}, clip.Point{X: 20, Y: 20},
		clip.Point{X: 20, Y: 50}, clip.Point{X: 10, Y: 50},
	)
	r.fill(poly, copyShader(t, ColorRed))

	tests := []struct {
		x, y int
		want Color
	}{
		{30, 15, ColorRed},
		{15, 35, ColorRed},
		{45, 35, ColorRed},
		{30, 35, ColorBlack},
		{5, 5, ColorBlack},
		{55, 30, ColorBlack},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, r.fb.GetPixel(tc.x, tc.y), "pixel %d,%d", tc.x, tc.y)
	}
}

func TestFillPixelCenters(t *testing.T) {
	r := newTestRenderer()
	r.fill(screenPolygon(
		clip.Point{X: 4, Y: 4}, clip.Point{X: 8, Y: 4},
		clip.Point{X: 8, Y: 8}, clip.Point{X: 4, Y: 8},
	), copyShader(t, ColorRed))

	filled := 0
	for y := range 12 {
		for x := range 12 {
			if r.fb.GetPixel(x, y) == ColorRed {
				filled++
				assert.True(t, x >= 4 && x < 8 && y >= 4 && y < 8, "pixel %d,%d", x, y)
			}
		}
	}
	assert.Equal(t, 16, filled)
}

func TestFillClipsToFramebuffer(t *testing.T) {
	r := newTestRenderer()
	r.fill(screenPolygon(
		clip.Point{X: -100, Y: -100}, clip.Point{X: 200, Y: -100},
		clip.Point{X: 200, Y: 200}, clip.Point{X: -100, Y: 200},
	), copyShader(t, ColorRed))
	assert.Equal(t, ColorRed, r.fb.GetPixel(0, 0))
	assert.Equal(t, ColorRed, r.fb.GetPixel(63, 63))
}

func TestFillDegenerate(t *testing.T) {
	r := newTestRenderer()
	r.fill(screenPolygon(
		clip.Point{X: 0, Y: 0}, clip.Point{X: 10, Y: 10}, clip.Point{X: 20, Y: 20},
	), copyShader(t, ColorRed))
	assert.Equal(t, ColorBlack, r.fb.GetPixel(10, 10))
}

func TestFillPerspectiveCorrect(t *testing.T) {
	// u runs 0 to 1 across a span whose right end is three times as far.
	poly := &clip.Polygon{Count: 3, Screen: []clip.ScreenVertex{
		{X: 0, Y: 0, InvZ: 1},
		{X: 64, Y: 0, InvZ: 1.0 / 3},
		{X: 0, Y: 64, InvZ: 1},
	}}
	poly.Buffers.Bind(vbuf.TexCoord, vbuf.Packed([]float32{0, 0, 1, 0, 0, 0}, 2))

	sh := &shader{uv: true}
	var planes [numVaryings]plane
	require.True(t, setupPlanes(poly, sh, &planes))

	// Halfway across the screen 1/z is 2/3 and u/z is 1/6, so u is 1/4.
	q := planes[varU].at(32, 0) / planes[varInvZ].at(32, 0)
	assert.InDelta(t, 0.25, q, 1e-5)
}
