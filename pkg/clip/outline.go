package clip

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrOutline is returned for an outline that cannot enclose anything.
var ErrOutline = errors.New("clip: bad outline")

// Point is a screen-space position in pixels.
type Point struct {
	X, Y float32
}

func cross(o, a, b Point) float32 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// Outline is a closed screen-space polygon, convex or not, that triangles
// are clipped against. It must not intersect itself.
type Outline struct {
	pts      []Point
	convex   bool
	area     float32
	min, max Point
}

// NewOutline builds an outline from at least three points in either winding.
func NewOutline(pts []Point) (*Outline, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrOutline, len(pts))
	}
	o := &Outline{pts: append([]Point(nil), pts...)}
	o.min, o.max = pts[0], pts[0]
	for i, p := range o.pts {
		q := o.pts[(i+1)%len(o.pts)]
		o.area += p.X*q.Y - q.X*p.Y
		o.min.X, o.min.Y = min(o.min.X, p.X), min(o.min.Y, p.Y)
		o.max.X, o.max.Y = max(o.max.X, p.X), max(o.max.Y, p.Y)
	}
	if o.area == 0 || math32.IsNaN(o.area) {
		return nil, fmt.Errorf("%w: zero area", ErrOutline)
	}
	o.convex = o.checkConvex()
	return o, nil
}

// NewRectOutline returns the axis-aligned rectangle outline [x0,x1]×[y0,y1].
func NewRectOutline(x0, y0, x1, y1 float32) *Outline {
	o, err := NewOutline([]Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}})
	if err != nil {
		panic(err)
	}
	return o
}

// checkConvex requires every turn to go the same way and the boundary to
// wind exactly once, which rules out star polygons.
func (o *Outline) checkConvex() bool {
	n := len(o.pts)
	var turning float32
	for i := range n {
		a, b, c := o.pts[i], o.pts[(i+1)%n], o.pts[(i+2)%n]
		c1 := cross(a, b, c)
		if c1*o.area < 0 {
			return false
		}
		d1 := math32.Atan2(b.Y-a.Y, b.X-a.X)
		d2 := math32.Atan2(c.Y-b.Y, c.X-b.X)
		turn := d2 - d1
		for turn > math32.Pi {
			turn -= 2 * math32.Pi
		}
		for turn < -math32.Pi {
			turn += 2 * math32.Pi
		}
		turning += turn
	}
	return math32.Abs(math32.Abs(turning)-2*math32.Pi) < 1e-3
}

// Len returns the number of outline vertices.
func (o *Outline) Len() int { return len(o.pts) }

// Points returns the outline vertices. The slice must not be modified.
func (o *Outline) Points() []Point { return o.pts }

// Convex reports whether the outline is convex.
func (o *Outline) Convex() bool { return o.convex }

// Bounds returns the bounding box corners.
func (o *Outline) Bounds() (lo, hi Point) { return o.min, o.max }

// MaxVertices bounds the size of a polygon clipped to the outline: one more
// than the outline per triangle edge for a convex outline. A concave outline
// can gain up to half its size per edge.
func (o *Outline) MaxVertices() int {
	n := len(o.pts)
	if o.convex {
		return n + 3
	}
	for range 3 {
		n += n/2 + 1
	}
	return n
}

// Contains reports whether p lies strictly inside the outline.
func (o *Outline) Contains(p Point) bool {
	if p.X <= o.min.X || p.X >= o.max.X || p.Y <= o.min.Y || p.Y >= o.max.Y {
		return false
	}
	n := len(o.pts)
	if o.convex {
		for i := range n {
			if cross(o.pts[i], o.pts[(i+1)%n], p)*o.area <= 0 {
				return false
			}
		}
		return true
	}

	inside := false
	for i := range n {
		a, b := o.pts[i], o.pts[(i+1)%n]
		if onSegment(a, b, p) {
			return false
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, p Point) bool {
	if cross(a, b, p) != 0 {
		return false
	}
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}

// segmentsCross reports whether segments ab and cd intersect at a single
// point interior to both.
func segmentsCross(a, b, c, d Point) bool {
	d1 := cross(a, b, c)
	d2 := cross(a, b, d)
	d3 := cross(c, d, a)
	d4 := cross(c, d, b)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
