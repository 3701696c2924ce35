package clip

import "github.com/chewxy/math32"

// Result classifies a triangle against an outline.
type Result uint8

const (
	// Outside means nothing of the triangle is visible.
	Outside Result = iota
	// Inside means the whole triangle is visible and needs no clipping.
	Inside
	// Clipped means part of the triangle is visible.
	Clipped
)

func (r Result) String() string {
	switch r {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case Clipped:
		return "clipped"
	}
	return "unknown"
}

// minArea is twice the area below which a clipped polygon is a sliver
// left over from a concave outline touching the triangle boundary.
const minArea = 1e-4

// snapEps is how close an edge parameter must be to 0 or 1 for the point to
// count as the triangle corner itself.
const snapEps = 1e-5

// PolyVertex is a vertex of a triangle clipped to an outline.
type PolyVertex struct {
	X, Y float32
	Kind Kind
	// Corner is the triangle corner of an Original vertex, or the first
	// corner of the edge an OnEdge vertex lies on.
	Corner uint8
	// T is the parameter along edge Corner -> Corner+1 of an OnEdge vertex.
	T float32
}

// ScreenClipper clips projected triangles against an outline. It keeps
// grow-only working storage and is not safe for concurrent use.
type ScreenClipper struct {
	a, b []PolyVertex
}

// Reserve makes room for polygons of up to n vertices.
func (c *ScreenClipper) Reserve(n int) {
	if cap(c.a) < n {
		c.a = make([]PolyVertex, 0, n)
		c.b = make([]PolyVertex, 0, n)
	}
}

// Clip clips tri against the outline. For Clipped the returned polygon has
// the winding of tri and stays valid until the next call; for Inside and
// Outside it is nil.
func (c *ScreenClipper) Clip(o *Outline, tri [3]ScreenVertex) (Result, []PolyVertex) {
	area := SignedArea(tri[0], tri[1], tri[2])
	if area == 0 {
		return Outside, nil
	}
	v := [3]Point{tri[0].Point(), tri[1].Point(), tri[2].Point()}

	lo := Point{min(v[0].X, v[1].X, v[2].X), min(v[0].Y, v[1].Y, v[2].Y)}
	hi := Point{max(v[0].X, v[1].X, v[2].X), max(v[0].Y, v[1].Y, v[2].Y)}
	if hi.X < o.min.X || lo.X > o.max.X || hi.Y < o.min.Y || lo.Y > o.max.Y {
		return Outside, nil
	}

	if c.contained(o, v, area) {
		return Inside, nil
	}

	c.Reserve(o.MaxVertices())
	in := c.a[:0]
	for _, p := range o.pts {
		in = append(in, PolyVertex{X: p.X, Y: p.Y, Kind: Interior})
	}
	out := c.b[:0]
	for e := range 3 {
		out = clipEdge(out[:0], in, v, e, area)
		in, out = out, in
		if len(in) == 0 {
			return Outside, nil
		}
	}
	poly := dedupe(in)
	if len(poly) < 3 || math32.Abs(polyArea(poly)) < minArea {
		return Outside, nil
	}

	for i := range poly {
		p := &poly[i]
		if p.Kind != OnEdge {
			continue
		}
		switch {
		case p.T <= snapEps:
			p.Kind, p.T = Original, 0
		case p.T >= 1-snapEps:
			p.Kind, p.Corner, p.T = Original, (p.Corner+1)%3, 0
		}
	}

	if (o.area > 0) != (area > 0) {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	return Clipped, poly
}

// contained reports whether the triangle lies strictly inside the outline.
func (c *ScreenClipper) contained(o *Outline, v [3]Point, area float32) bool {
	for _, p := range v {
		if !o.Contains(p) {
			return false
		}
	}
	if o.convex {
		return true
	}
	n := len(o.pts)
	for i, p := range o.pts {
		if insideTriangle(v, p, area) {
			return false
		}
		q := o.pts[(i+1)%n]
		for e := range 3 {
			if segmentsCross(p, q, v[e], v[(e+1)%3]) {
				return false
			}
		}
	}
	return true
}

func insideTriangle(v [3]Point, p Point, area float32) bool {
	for e := range 3 {
		if cross(v[e], v[(e+1)%3], p)*area < 0 {
			return false
		}
	}
	return true
}

// clipEdge keeps the part of polygon in on the inner side of triangle edge
// e, tagging the points it creates as lying on that edge.
func clipEdge(out, in []PolyVertex, v [3]Point, e int, area float32) []PolyVertex {
	a, b := v[e], v[(e+1)%3]
	side := func(p PolyVertex) float32 {
		d := cross(a, b, Point{p.X, p.Y})
		if area < 0 {
			return -d
		}
		return d
	}

	prev := in[len(in)-1]
	dp := side(prev)
	for _, cur := range in {
		dc := side(cur)
		if (dp > 0 && dc < 0) || (dp < 0 && dc > 0) {
			s := dp / (dp - dc)
			x := prev.X + s*(cur.X-prev.X)
			y := prev.Y + s*(cur.Y-prev.Y)
			out = append(out, PolyVertex{X: x, Y: y, Kind: OnEdge, Corner: uint8(e), T: edgeParam(a, b, x, y)})
		}
		if dc >= 0 {
			out = append(out, cur)
		}
		prev, dp = cur, dc
	}
	return out
}

func edgeParam(a, b Point, x, y float32) float32 {
	dx, dy := b.X-a.X, b.Y-a.Y
	t := ((x-a.X)*dx + (y-a.Y)*dy) / (dx*dx + dy*dy)
	return min(max(t, 0), 1)
}

func polyArea(p []PolyVertex) float32 {
	var a float32
	for i, v := range p {
		w := p[(i+1)%len(p)]
		a += v.X*w.Y - w.X*v.Y
	}
	return a
}

// dedupe drops consecutive points that coincide, including the wrap from
// last to first.
func dedupe(p []PolyVertex) []PolyVertex {
	const eps = 1e-4
	same := func(a, b PolyVertex) bool {
		return math32.Abs(a.X-b.X) < eps && math32.Abs(a.Y-b.Y) < eps
	}
	n := 0
	for i := range p {
		if n > 0 && same(p[n-1], p[i]) {
			// Prefer the tag that pins the point to the triangle.
			if p[i].Kind < p[n-1].Kind {
				p[n-1] = p[i]
			}
			continue
		}
		p[n] = p[i]
		n++
	}
	for n > 1 && same(p[n-1], p[0]) {
		if p[n-1].Kind < p[0].Kind {
			p[0] = p[n-1]
		}
		n--
	}
	return p[:n]
}
