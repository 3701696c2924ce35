package clip

import (
	"errors"
	"fmt"

	"github.com/taigrr/softclip/pkg/vbuf"
)

// ErrNoPosition is returned when the active buffers lack an eye-space
// position with at least three components.
var ErrNoPosition = errors.New("clip: no position buffer")

// outWidth is the component count of every clip output.
const outWidth = 4

// Source selects the vertex space a triangle's indices refer to.
type Source uint8

const (
	// FromMesh indices address the draw call's buffers.
	FromMesh Source = iota
	// FromNear indices address the vertices of the last MaterializeNear.
	FromNear
)

// Scratch is the grow-only storage the clipper writes vertices into. One
// Scratch belongs to one renderer.
type Scratch struct {
	near   []float32
	poly   []float32
	screen []ScreenVertex
}

// Reserve grows the scratch to hold slots attributes of polygons with up to
// vertices vertices. It never shrinks.
func (s *Scratch) Reserve(slots, vertices int) {
	if n := slots * 4 * outWidth; cap(s.near) < n {
		s.near = make([]float32, n)
	}
	if n := slots * vertices * outWidth; cap(s.poly) < n {
		s.poly = make([]float32, n)
	}
	if cap(s.screen) < vertices {
		s.screen = make([]ScreenVertex, vertices)
	}
	s.near = s.near[:cap(s.near)]
	s.poly = s.poly[:cap(s.poly)]
	s.screen = s.screen[:cap(s.screen)]
}

// Polygon is a clipped polygon ready for scan conversion. It is owned by the
// BuffersClipper and overwritten by the next clip.
type Polygon struct {
	Count  int
	Screen []ScreenVertex
	// Buffers holds four components per vertex for every active slot.
	Buffers vbuf.Set
	// Clipped is set when the polygon was cut by the outline. The position
	// buffer then holds (screen x, screen y, eye z, 1).
	Clipped bool
}

// BuffersClipper runs the near and outline clips over every active
// attribute buffer of a draw call.
type BuffersClipper struct {
	mask    vbuf.Mask
	pos     vbuf.Slot
	src     *vbuf.Set
	outline *Outline
	scratch *Scratch

	near     [vbuf.MaxSlots]vbuf.Output
	fromMesh [vbuf.MaxSlots]vbuf.Output
	fromNear [vbuf.MaxSlots]vbuf.Output
	nearSet  vbuf.Set
	nearSV   [4]ScreenVertex

	screen ScreenClipper
	poly   Polygon
}

// Setup binds the clipper to a draw call: src and mask are the mesh buffers
// and the active slots, pos the slot holding eye-space positions, and
// outline the screen clip region or nil for none. Every output kernel is
// chosen here.
func (c *BuffersClipper) Setup(src *vbuf.Set, mask vbuf.Mask, pos vbuf.Slot, outline *Outline, scratch *Scratch) error {
	if !mask.Has(pos) || src.Get(pos).Components < 3 {
		return fmt.Errorf("slot %s: %w", pos, ErrNoPosition)
	}
	if err := src.Validate(mask); err != nil {
		return err
	}

	maxV := 4
	if outline != nil {
		maxV = max(maxV, outline.MaxVertices())
		c.screen.Reserve(maxV)
	}
	scratch.Reserve(mask.Count(), maxV)

	*c = BuffersClipper{
		mask:    mask,
		pos:     pos,
		src:     src,
		outline: outline,
		scratch: scratch,
		screen:  c.screen,
	}

	nearSize := 4 * outWidth
	polySize := maxV * outWidth
	k := 0
	for slot := range mask.Slots() {
		nearDst := scratch.near[k*nearSize : (k+1)*nearSize]
		polyDst := scratch.poly[k*polySize : (k+1)*polySize]
		c.near[slot].Bind(src.Get(slot), nearDst, outWidth)
		c.fromMesh[slot].Bind(src.Get(slot), polyDst, outWidth)
		c.fromNear[slot].Bind(vbuf.Packed(nearDst, outWidth), polyDst, outWidth)
		k++
	}
	c.poly.Screen = scratch.screen
	return nil
}

// Mask returns the active slots.
func (c *BuffersClipper) Mask() vbuf.Mask { return c.mask }

// Near clips mesh triangle tri to the near plane.
func (c *BuffersClipper) Near(tri [3]int, persp []ScreenVertex, proj Projection, nearZ float32) NearResult {
	return ClipNear(tri, c.src.Get(c.pos), persp, proj, nearZ)
}

// MaterializeNear writes every active attribute of the near-clip vertices of
// res, making them addressable with FromNear.
func (c *BuffersClipper) MaterializeNear(tri [3]int, res *NearResult) *vbuf.Set {
	for slot := range c.mask.Slots() {
		out := &c.near[slot]
		out.Reset()
		for i := range res.Count {
			ref := res.Refs[i]
			if ref.Kind == Original {
				out.Copy(tri[ref.A])
			} else {
				out.Lerp(tri[ref.A], tri[ref.B], ref.T)
			}
		}
		c.nearSet.Bind(slot, out.Buffer())
	}
	c.nearSV = res.Screen
	return &c.nearSet
}

func (c *BuffersClipper) outputs(from Source) *[vbuf.MaxSlots]vbuf.Output {
	if from == FromNear {
		return &c.fromNear
	}
	return &c.fromMesh
}

// Copy passes triangle tri through unchanged.
func (c *BuffersClipper) Copy(from Source, tri [3]int, sv [3]ScreenVertex) *Polygon {
	outs := c.outputs(from)
	for slot := range c.mask.Slots() {
		out := &outs[slot]
		out.Reset()
		for _, idx := range tri {
			out.Copy(idx)
		}
		c.poly.Buffers.Bind(slot, out.Buffer())
	}
	copy(c.poly.Screen, sv[:])
	c.poly.Count = 3
	c.poly.Clipped = false
	return &c.poly
}

// Screen clips triangle tri, with projected corners sv, to the outline. The
// returned polygon has Count 0 when nothing is visible.
func (c *BuffersClipper) Screen(from Source, tri [3]int, sv [3]ScreenVertex) *Polygon {
	if c.outline == nil {
		return c.Copy(from, tri, sv)
	}
	res, verts := c.screen.Clip(c.outline, sv)
	switch res {
	case Outside:
		c.poly.Count = 0
		return &c.poly
	case Inside:
		return c.Copy(from, tri, sv)
	}

	outs := c.outputs(from)
	pos := outs[c.pos].Source()
	var z [3]float32
	for i, idx := range tri {
		z[i] = pos.At(idx)[2]
	}

	for slot := range c.mask.Slots() {
		outs[slot].Reset()
	}
	for i, pv := range verts {
		var w weights
		switch pv.Kind {
		case Original:
			w = cornerWeights(pv.Corner)
		case OnEdge:
			w = edgeWeights(pv.Corner, pv.T)
		default:
			w = interiorWeights(sv, pv.X, pv.Y)
		}
		for slot := range c.mask.Slots() {
			out := &outs[slot]
			if slot == c.pos {
				out.Write([4]float32{pv.X, pv.Y, w.apply(z), 1})
				continue
			}
			w.emit(out, tri)
		}
		c.poly.Screen[i] = ScreenVertex{
			X:    pv.X,
			Y:    pv.Y,
			InvZ: w.apply([3]float32{sv[0].InvZ, sv[1].InvZ, sv[2].InvZ}),
		}
	}
	for slot := range c.mask.Slots() {
		c.poly.Buffers.Bind(slot, outs[slot].Buffer())
	}
	c.poly.Count = len(verts)
	c.poly.Clipped = true
	return &c.poly
}
