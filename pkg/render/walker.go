package render

import (
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// DrawStats counts what happened to the geometry of the draws since the
// last reset.
type DrawStats struct {
	Triangles     int // Walked from index streams
	Degenerate    int // Zero screen area or failed near-plane intersection
	Backface      int
	NearCulled    int // Entirely behind the near plane
	OutlineCulled int // Rejected by the screen outline
	Polygons      int // Handed to the scanline stage
	MeshesTested  int
	MeshesCulled  int // Rejected by the view frustum
}

// WalkerConfig is the per-draw state a TriangleWalker clips with.
type WalkerConfig struct {
	Clipper    *clip.BuffersClipper
	Persp      []clip.ScreenVertex
	Projection clip.Projection
	NearZ      float32
	Mirror     bool
	// Texture enables mip selection when the TexCoord slot is active.
	Texture *Texture
	Stats   *DrawStats
}

// TriangleWalker turns an index stream into clipped polygons, one clip unit
// at a time.
type TriangleWalker struct {
	cfg WalkerConfig
	mip bool

	indices   []uint32
	topology  vbuf.Topology
	remaining int
	cursor    int
	prev      [2]int
	odd       bool

	near clip.NearResult
	sub  int
}

// Setup binds the walker to a draw call.
func (w *TriangleWalker) Setup(cfg WalkerConfig) {
	if cfg.Stats == nil {
		cfg.Stats = &DrawStats{}
	}
	w.cfg = cfg
	w.mip = cfg.Texture != nil && cfg.Clipper.Mask().Has(vbuf.TexCoord)
}

// BeginTriangulate starts walking triangles triangles of indices.
func (w *TriangleWalker) BeginTriangulate(indices []uint32, topology vbuf.Topology, triangles int) {
	w.indices = indices
	w.topology = topology
	w.remaining = triangles
	w.cursor = 0
	w.odd = false
	w.sub = -1
	if (topology == vbuf.Strip || topology == vbuf.Fan) && len(indices) >= 2 {
		w.prev = [2]int{int(indices[0]), int(indices[1])}
		w.cursor = 2
	}
}

// advance returns the next mesh triangle of the index stream.
func (w *TriangleWalker) advance() ([3]int, bool) {
	if w.remaining <= 0 {
		return [3]int{}, false
	}
	w.remaining--

	idx := w.indices
	c := w.cursor
	switch w.topology {
	case vbuf.Strip:
		next := int(idx[c])
		w.cursor++
		tri := [3]int{w.prev[0], w.prev[1], next}
		if w.odd {
			tri[0], tri[1] = tri[1], tri[0]
		}
		w.odd = !w.odd
		w.prev = [2]int{w.prev[1], next}
		return tri, true
	case vbuf.Fan:
		next := int(idx[c])
		w.cursor++
		tri := [3]int{w.prev[0], w.prev[1], next}
		w.prev[1] = next
		return tri, true
	case vbuf.Quad:
		if !w.odd {
			w.odd = true
			return [3]int{int(idx[c]), int(idx[c+1]), int(idx[c+2])}, true
		}
		w.odd = false
		w.cursor += 4
		return [3]int{int(idx[c]), int(idx[c+2]), int(idx[c+3])}, true
	default:
		w.cursor += 3
		return [3]int{int(idx[c]), int(idx[c+1]), int(idx[c+2])}, true
	}
}

// NextTriangle returns the next clipped polygon and its mip level. Rejected
// triangles are skipped. A triangle split by the near plane yields two
// polygons from consecutive calls. ok is false once the stream is done.
func (w *TriangleWalker) NextTriangle() (poly *clip.Polygon, mip int, ok bool) {
	stats := w.cfg.Stats
	for {
		if w.sub >= 0 {
			i := w.sub
			w.sub++
			if w.sub >= w.near.Triangles() {
				w.sub = -1
			}
			local := w.near.Triangle(i)
			sv := [3]clip.ScreenVertex{w.near.Screen[local[0]], w.near.Screen[local[1]], w.near.Screen[local[2]]}
			if p, hit := w.clip(clip.FromNear, local, sv); hit {
				return p, w.mipLevel(p), true
			}
			continue
		}

		tri, more := w.advance()
		if !more {
			return nil, 0, false
		}
		stats.Triangles++

		w.near = w.cfg.Clipper.Near(tri, w.cfg.Persp, w.cfg.Projection, w.cfg.NearZ)
		switch {
		case w.near.Degenerate:
			stats.Degenerate++
			Logger().Warn("dropping triangle with no near-plane intersection", "indices", tri)
		case w.near.Count == 0:
			stats.NearCulled++
		case w.near.Passthrough():
			sv := [3]clip.ScreenVertex{w.near.Screen[0], w.near.Screen[1], w.near.Screen[2]}
			if p, hit := w.clip(clip.FromMesh, tri, sv); hit {
				return p, w.mipLevel(p), true
			}
		default:
			w.cfg.Clipper.MaterializeNear(tri, &w.near)
			w.sub = 0
		}
	}
}

// clip applies the area tests and the outline clip to one clip unit.
func (w *TriangleWalker) clip(from clip.Source, tri [3]int, sv [3]clip.ScreenVertex) (*clip.Polygon, bool) {
	stats := w.cfg.Stats
	area := clip.SignedArea(sv[0], sv[1], sv[2])
	if area == 0 {
		stats.Degenerate++
		return nil, false
	}
	if !clip.FrontFacing(area, w.cfg.Mirror) {
		stats.Backface++
		return nil, false
	}
	poly := w.cfg.Clipper.Screen(from, tri, sv)
	if poly.Count == 0 {
		stats.OutlineCulled++
		return nil, false
	}
	stats.Polygons++
	return poly, true
}

func (w *TriangleWalker) mipLevel(poly *clip.Polygon) int {
	if !w.mip {
		return 0
	}
	return selectMip(poly, poly.Buffers.Get(vbuf.TexCoord), w.cfg.Texture)
}
