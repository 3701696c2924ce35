package clip

import "github.com/taigrr/softclip/pkg/vbuf"

// Kind tells where a clip vertex comes from.
type Kind uint8

const (
	// Original is an unmodified triangle corner.
	Original Kind = iota
	// OnEdge lies on a triangle edge.
	OnEdge
	// Interior lies strictly inside the triangle.
	Interior
)

func (k Kind) String() string {
	switch k {
	case Original:
		return "original"
	case OnEdge:
		return "on-edge"
	case Interior:
		return "interior"
	}
	return "unknown"
}

// VertexRef names a near-clip vertex in terms of the triangle corners 0..2.
// For OnEdge it is the point at T along the edge from corner A to corner B.
type VertexRef struct {
	Kind Kind
	A, B uint8
	T    float32
}

// NearResult is the outcome of clipping one triangle to the near plane.
type NearResult struct {
	// Count is 0, 3 or 4.
	Count  int
	Refs   [4]VertexRef
	Screen [4]ScreenVertex
	// Degenerate is set when an intersection could not be computed; the
	// triangle is then dropped with Count 0.
	Degenerate bool
}

// Triangles returns how many triangles the result fans into.
func (r *NearResult) Triangles() int {
	return max(r.Count-2, 0)
}

// Passthrough reports whether the triangle was entirely in front of the
// plane and needs no near-clip vertices.
func (r *NearResult) Passthrough() bool {
	return r.Count == 3 && r.Refs[1].Kind == Original
}

// Triangle returns the result-local corners of sub-triangle i.
func (r *NearResult) Triangle(i int) [3]int {
	return [3]int{0, i + 1, i + 2}
}

// ClipNear clips triangle tri against the eye-space plane z = nearZ; points
// with z >= nearZ are visible. pos holds eye-space positions and persp their
// cached projections, reused only when the triangle is untouched. Vertices the
// clip creates are projected from their interpolated positions.
//
// The cyclic order of the corners is kept, so the screen winding of every
// output triangle matches the input.
func ClipNear(tri [3]int, pos vbuf.Buffer, persp []ScreenVertex, proj Projection, nearZ float32) NearResult {
	var res NearResult
	var z [3]float32
	visible := 0
	lone := -1
	for i := range 3 {
		z[i] = pos.At(tri[i])[2]
		if z[i] >= nearZ {
			visible++
		}
	}

	switch visible {
	case 0:
		return res
	case 3:
		res.Count = 3
		for i := range 3 {
			res.Refs[i] = VertexRef{Kind: Original, A: uint8(i)}
			res.Screen[i] = persp[tri[i]]
		}
		return res
	}

	// The lone vertex is the one on its own side of the plane.
	for i := range 3 {
		if (z[i] >= nearZ) == (visible == 1) {
			lone = i
			break
		}
	}
	n1 := (lone + 1) % 3
	n2 := (lone + 2) % 3

	e1, ok1 := intersect(tri, pos, z, lone, n1, proj, nearZ)
	e2, ok2 := intersect(tri, pos, z, lone, n2, proj, nearZ)
	if !ok1 || !ok2 {
		res.Degenerate = true
		return res
	}

	if visible == 1 {
		// lone, lone->n1, lone->n2
		res.Count = 3
		res.Refs[0] = VertexRef{Kind: Original, A: uint8(lone)}
		res.Screen[0] = persp[tri[lone]]
		res.Refs[1], res.Screen[1] = e1.ref, e1.sv
		res.Refs[2], res.Screen[2] = e2.ref, e2.sv
		return res
	}

	// n1, n2, n2->lone, n1->lone
	res.Count = 4
	res.Refs[0] = VertexRef{Kind: Original, A: uint8(n1)}
	res.Screen[0] = persp[tri[n1]]
	res.Refs[1] = VertexRef{Kind: Original, A: uint8(n2)}
	res.Screen[1] = persp[tri[n2]]
	res.Refs[2], res.Screen[2] = e2.ref, e2.sv
	res.Refs[3], res.Screen[3] = e1.ref, e1.sv
	return res
}

type nearHit struct {
	ref VertexRef
	sv  ScreenVertex
}

// intersect finds where edge from..to crosses the near plane, measuring the
// parameter from corner from.
func intersect(tri [3]int, pos vbuf.Buffer, z [3]float32, from, to int, proj Projection, nearZ float32) (nearHit, bool) {
	dz := z[to] - z[from]
	if dz == 0 {
		return nearHit{}, false
	}
	r := (nearZ - z[from]) / dz
	if !(r >= 0 && r <= 1) {
		return nearHit{}, false
	}
	a := pos.At(tri[from])
	b := pos.At(tri[to])
	x := a[0] + r*(b[0]-a[0])
	y := a[1] + r*(b[1]-a[1])
	zr := a[2] + r*(b[2]-a[2])
	return nearHit{
		ref: VertexRef{Kind: OnEdge, A: uint8(from), B: uint8(to), T: r},
		sv:  proj.Project(x, y, zr),
	}, true
}
