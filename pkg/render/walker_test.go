package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/vbuf"
)

var walkerProj = clip.Projection{HalfWidth: 50, HalfHeight: 50, Aspect: 50}

const walkerNear = 0.1

// newTestWalker binds a walker to eye-space positions.
func newTestWalker(t *testing.T, pos []float32, outline *clip.Outline, mirror bool) (*TriangleWalker, *DrawStats) {
	t.Helper()
	set := &vbuf.Set{}
	set.Bind(vbuf.Position, vbuf.Packed(pos, 3))

	persp := make([]clip.ScreenVertex, len(pos)/3)
	for i := range persp {
		x, y, z := pos[i*3], pos[i*3+1], pos[i*3+2]
		if z >= walkerNear {
			persp[i] = walkerProj.Project(x, y, z)
		}
	}

	clipper := &clip.BuffersClipper{}
	require.NoError(t, clipper.Setup(set, vbuf.MaskOf(vbuf.Position), vbuf.Position, outline, &clip.Scratch{}))

	stats := &DrawStats{}
	w := &TriangleWalker{}
	w.Setup(WalkerConfig{
		Clipper:    clipper,
		Persp:      persp,
		Projection: walkerProj,
		NearZ:      walkerNear,
		Mirror:     mirror,
		Stats:      stats,
	})
	return w, stats
}

// drain walks every polygon, checking each one keeps front-facing winding.
func drain(t *testing.T, w *TriangleWalker, mirror bool) int {
	t.Helper()
	n := 0
	for {
		poly, _, ok := w.NextTriangle()
		if !ok {
			return n
		}
		require.GreaterOrEqual(t, poly.Count, 3)
		area := clip.SignedArea(poly.Screen[0], poly.Screen[1], poly.Screen[2])
		assert.True(t, clip.FrontFacing(area, mirror), "polygon %d has area %v", n, area)
		n++
	}
}

func TestWalkerTopology(t *testing.T) {
	tests := []struct {
		name      string
		topology  vbuf.Topology
		indices   []uint32
		triangles int
		want      [][3]int
	}{
		{"list", vbuf.List, []uint32{0, 1, 2, 3, 4, 5}, 2, [][3]int{{0, 1, 2}, {3, 4, 5}}},
		{"list limited", vbuf.List, []uint32{0, 1, 2, 3, 4, 5}, 1, [][3]int{{0, 1, 2}}},
		{"strip", vbuf.Strip, []uint32{0, 1, 2, 3, 4}, 3, [][3]int{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}},
		{"fan", vbuf.Fan, []uint32{0, 1, 2, 3}, 2, [][3]int{{0, 1, 2}, {0, 2, 3}}},
		{"quad", vbuf.Quad, []uint32{0, 1, 2, 3, 4, 5, 6, 7}, 4, [][3]int{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}, {4, 6, 7}}},
		{"indirect", vbuf.List, []uint32{7, 3, 5}, 1, [][3]int{{7, 3, 5}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var w TriangleWalker
			w.BeginTriangulate(tc.indices, tc.topology, tc.triangles)
			var got [][3]int
			for {
				tri, ok := w.advance()
				if !ok {
					break
				}
				got = append(got, tri)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.triangles, len(got))
		})
	}
}

// A front-facing triangle at eye depth z, one unit across.
func frontTriangle(za, zb, zc float32) []float32 {
	return []float32{
		-1, -1, za,
		0, 1, zb,
		1, -1, zc,
	}
}

func TestWalkerNearPlane(t *testing.T) {
	tests := []struct {
		name     string
		pos      []float32
		polygons int
		culled   int
	}{
		{"all visible", frontTriangle(5, 5, 5), 1, 0},
		{"one visible", frontTriangle(-1, 5, -1), 1, 0},
		{"two visible splits", frontTriangle(-1, 5, 5), 2, 0},
		{"none visible", frontTriangle(-1, -1, -2), 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, stats := newTestWalker(t, tc.pos, nil, false)
			w.BeginTriangulate([]uint32{0, 1, 2}, vbuf.List, 1)
			assert.Equal(t, tc.polygons, drain(t, w, false))
			assert.Equal(t, 1, stats.Triangles)
			assert.Equal(t, tc.polygons, stats.Polygons)
			assert.Equal(t, tc.culled, stats.NearCulled)
		})
	}
}

func TestWalkerRejects(t *testing.T) {
	t.Run("backface", func(t *testing.T) {
		w, stats := newTestWalker(t, frontTriangle(5, 5, 5), nil, false)
		w.BeginTriangulate([]uint32{0, 2, 1}, vbuf.List, 1)
		assert.Zero(t, drain(t, w, false))
		assert.Equal(t, 1, stats.Backface)
	})

	t.Run("mirror accepts reversed winding", func(t *testing.T) {
		w, stats := newTestWalker(t, frontTriangle(5, 5, 5), nil, true)
		w.BeginTriangulate([]uint32{0, 2, 1}, vbuf.List, 1)
		assert.Equal(t, 1, drain(t, w, true))
		assert.Zero(t, stats.Backface)
	})

	t.Run("mirror rejects normal winding", func(t *testing.T) {
		w, stats := newTestWalker(t, frontTriangle(5, 5, 5), nil, true)
		w.BeginTriangulate([]uint32{0, 1, 2}, vbuf.List, 1)
		assert.Zero(t, drain(t, w, true))
		assert.Equal(t, 1, stats.Backface)
	})

	t.Run("degenerate", func(t *testing.T) {
		pos := []float32{0, 0, 5, 1, 1, 5, 2, 2, 5}
		w, stats := newTestWalker(t, pos, nil, false)
		w.BeginTriangulate([]uint32{0, 1, 2}, vbuf.List, 1)
		assert.Zero(t, drain(t, w, false))
		assert.Equal(t, 1, stats.Degenerate)
	})

	t.Run("outside outline", func(t *testing.T) {
		outline := clip.NewRectOutline(200, 200, 300, 300)
		w, stats := newTestWalker(t, frontTriangle(5, 5, 5), outline, false)
		w.BeginTriangulate([]uint32{0, 1, 2}, vbuf.List, 1)
		assert.Zero(t, drain(t, w, false))
		assert.Equal(t, 1, stats.OutlineCulled)
	})
}

func TestWalkerSplitThenOutline(t *testing.T) {
	// The near split yields two polygons; the outline trims both.
	outline := clip.NewRectOutline(0, 0, 50, 100)
	w, stats := newTestWalker(t, frontTriangle(-1, 5, 5), outline, false)
	w.BeginTriangulate([]uint32{0, 1, 2}, vbuf.List, 1)
	n := drain(t, w, false)
	assert.Equal(t, stats.Polygons, n)
	assert.Equal(t, 2, n+stats.OutlineCulled)
}

func TestWalkerStripContinues(t *testing.T) {
	// Two quads as a strip; every triangle faces the camera.
	pos := []float32{
		-1, -1, 5,
		-1, 1, 5,
		0, -1, 5,
		0, 1, 5,
		1, -1, 5,
		1, 1, 5,
	}
	w, stats := newTestWalker(t, pos, nil, false)
	w.BeginTriangulate([]uint32{0, 1, 2, 3, 4, 5}, vbuf.Strip, 4)
	assert.Equal(t, 4, drain(t, w, false))
	assert.Equal(t, 4, stats.Triangles)
	assert.Zero(t, stats.Backface)
}

func BenchmarkWalker(b *testing.B) {
	pos := frontTriangle(-1, 5, 5)
	set := &vbuf.Set{}
	set.Bind(vbuf.Position, vbuf.Packed(pos, 3))
	persp := make([]clip.ScreenVertex, 3)
	for i := range persp {
		if pos[i*3+2] >= walkerNear {
			persp[i] = walkerProj.Project(pos[i*3], pos[i*3+1], pos[i*3+2])
		}
	}
	var clipper clip.BuffersClipper
	if err := clipper.Setup(set, vbuf.MaskOf(vbuf.Position), vbuf.Position, clip.NewRectOutline(0, 0, 50, 100), &clip.Scratch{}); err != nil {
		b.Fatal(err)
	}
	var w TriangleWalker
	w.Setup(WalkerConfig{Clipper: &clipper, Persp: persp, Projection: walkerProj, NearZ: walkerNear})

	for b.Loop() {
		w.BeginTriangulate([]uint32{0, 1, 2}, vbuf.List, 1)
		for {
			if _, _, ok := w.NextTriangle(); !ok {
				break
			}
		}
	}
}
