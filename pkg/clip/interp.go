package clip

import (
	"github.com/chewxy/math32"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// weights expresses a clip vertex as an interpolation of the triangle
// corners, so every attribute of the vertex can be produced the same way.
type weights struct {
	kind  Kind
	a, b  int
	t1    float32
	c, d  int
	t2, t float32
}

func cornerWeights(corner uint8) weights {
	return weights{kind: Original, a: int(corner)}
}

func edgeWeights(e uint8, t float32) weights {
	return weights{kind: OnEdge, a: int(e), b: int(e+1) % 3, t1: t}
}

type edgeHit struct {
	a, b int
	t, x float32
}

var triEdges = [3][2]int{{0, 1}, {1, 2}, {0, 2}}

// interiorWeights locates (x, y) between the two triangle edges that span
// its row: (0,1) and (1,2) are tried first, then (0,2). Two hits at the same
// x, as happens on a corner's row, are not enough to place the point, so the
// next spanning edge is used instead.
func interiorWeights(sv [3]ScreenVertex, x, y float32) weights {
	var hits [3]edgeHit
	n := 0
	for _, e := range triEdges {
		pa, pb := sv[e[0]], sv[e[1]]
		if pa.Y == pb.Y || y < min(pa.Y, pb.Y) || y > max(pa.Y, pb.Y) {
			continue
		}
		t := (y - pa.Y) / (pb.Y - pa.Y)
		hits[n] = edgeHit{a: e[0], b: e[1], t: t, x: pa.X + t*(pb.X-pa.X)}
		n++
	}

	const eps = 1e-4
	if n >= 2 {
		h1, h2 := hits[0], hits[1]
		if math32.Abs(h2.x-h1.x) < eps && n == 3 {
			h2 = hits[2]
		}
		if dx := h2.x - h1.x; math32.Abs(dx) >= eps {
			w := weights{kind: Interior, a: h1.a, b: h1.b, t1: h1.t}
			w.c, w.d, w.t2 = h2.a, h2.b, h2.t
			w.t = (x - h1.x) / dx
			return w
		}
	}
	return barycentricWeights(sv, x, y)
}

// barycentricWeights writes p = v0 + b1(v1-v0) + b2(v2-v0) as a Lerp3 along
// the edges leaving corner 0.
func barycentricWeights(sv [3]ScreenVertex, x, y float32) weights {
	area := SignedArea(sv[0], sv[1], sv[2])
	p := ScreenVertex{X: x, Y: y}
	b1 := SignedArea(sv[0], p, sv[2]) / area
	b2 := SignedArea(sv[0], sv[1], p) / area
	s := b1 + b2
	if math32.Abs(s) < 1e-6 {
		return cornerWeights(0)
	}
	return weights{kind: Interior, a: 0, b: 1, t1: s, c: 0, d: 2, t2: s, t: b2 / s}
}

func lerp(a, b, t float32) float32 { return a*(1-t) + b*t }

// apply evaluates the weights over one scalar per corner.
func (w weights) apply(v [3]float32) float32 {
	switch w.kind {
	case Original:
		return v[w.a]
	case OnEdge:
		return lerp(v[w.a], v[w.b], w.t1)
	}
	return lerp(lerp(v[w.a], v[w.b], w.t1), lerp(v[w.c], v[w.d], w.t2), w.t)
}

// emit writes the weighted vertex of triangle tri to out.
func (w weights) emit(out *vbuf.Output, tri [3]int) {
	switch w.kind {
	case Original:
		out.Copy(tri[w.a])
	case OnEdge:
		out.Lerp(tri[w.a], tri[w.b], w.t1)
	default:
		out.Lerp3(tri[w.a], tri[w.b], w.t1, tri[w.c], tri[w.d], w.t2, w.t)
	}
}
