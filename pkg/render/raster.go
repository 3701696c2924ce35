package render

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/taigrr/softclip/pkg/blend"
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// Varyings carried across a polygon, each premultiplied by 1/z.
const (
	varInvZ = iota
	varU
	varV
	varR
	varG
	varB
	varA
	numVaryings
)

// shader is the per-draw pixel state of the scanline stage.
type shader struct {
	base  Color
	blend blend.Func
	tex   *Texture // Mip level for the current polygon
	uv    bool
	color bool
}

// plane is a varying as an affine function of the pixel position.
type plane struct {
	dx, dy, c float32
}

func (p plane) at(x, y float32) float32 { return p.dx*x + p.dy*y + p.c }

// edgeCoeffs returns A, B, C of the edge function A*x + B*y + C of the edge
// from (x0, y0) to (x1, y1). It is positive to the left of the edge.
func edgeCoeffs(x0, y0, x1, y1 float32) (A, B, C float32) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// setupPlanes fits the varyings of poly to planes. Every vertex of a clipped
// polygon comes from one triangle, so any fan triangle spans them; the
// largest one is used. It returns false for a polygon with no area.
func setupPlanes(poly *clip.Polygon, sh *shader, planes *[numVaryings]plane) bool {
	sv := poly.Screen
	best, bestArea := 1, float32(0)
	for i := 1; i+1 < poly.Count; i++ {
		if a := math32.Abs(clip.SignedArea(sv[0], sv[i], sv[i+1])); a > bestArea {
			best, bestArea = i, a
		}
	}
	if bestArea == 0 {
		return false
	}

	corners := [3]int{0, best, best + 1}
	area2 := clip.SignedArea(sv[0], sv[best], sv[best+1])
	invArea := 1 / area2

	// Barycentric planes: corner k weights by the edge opposite it.
	var bary [3]plane
	for k := range 3 {
		p := sv[corners[(k+1)%3]]
		q := sv[corners[(k+2)%3]]
		a, b, c := edgeCoeffs(p.X, p.Y, q.X, q.Y)
		bary[k] = plane{a * invArea, b * invArea, c * invArea}
	}

	var vals [3][numVaryings]float32
	uv := poly.Buffers.Get(vbuf.TexCoord)
	col := poly.Buffers.Get(vbuf.Color)
	for k, v := range corners {
		w := sv[v].InvZ
		vals[k][varInvZ] = w
		if sh.uv {
			t := uv.At(v)
			vals[k][varU] = t[0] * w
			vals[k][varV] = t[1] * w
		}
		if sh.color {
			c := col.At(v)
			for j := range 4 {
				vals[k][varR+j] = c[j] * w
			}
		}
	}

	for j := range numVaryings {
		var p plane
		for k := range 3 {
			p.dx += bary[k].dx * vals[k][j]
			p.dy += bary[k].dy * vals[k][j]
			p.c += bary[k].c * vals[k][j]
		}
		planes[j] = p
	}
	return true
}

func unitToByte(v float32) uint8 {
	return uint8(math32.Max(0, math32.Min(1, v))*255 + 0.5)
}

// fill scan converts poly with the even-odd rule, so concave polygons from a
// concave outline fill correctly. Pixels pass the depth test when their 1/z
// is greater than the stored one; runs of passing pixels go through the
// draw's blend routine.
func (r *Renderer) fill(poly *clip.Polygon, sh *shader) {
	var planes [numVaryings]plane
	if !setupPlanes(poly, sh, &planes) {
		return
	}

	sv := poly.Screen[:poly.Count]
	minY, maxY := sv[0].Y, sv[0].Y
	for _, v := range sv[1:] {
		minY = math32.Min(minY, v.Y)
		maxY = math32.Max(maxY, v.Y)
	}
	fb := r.fb
	y0 := max(0, int(math32.Ceil(minY-0.5)))
	y1 := min(fb.Height, int(math32.Ceil(maxY-0.5)))

	for y := y0; y < y1; y++ {
		py := float32(y) + 0.5
		r.xs = r.xs[:0]
		for i, a := range sv {
			b := sv[(i+1)%len(sv)]
			if (a.Y <= py) == (b.Y <= py) {
				continue
			}
			r.xs = append(r.xs, a.X+(py-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		slices.Sort(r.xs)

		for i := 0; i+1 < len(r.xs); i += 2 {
			xa := max(0, int(math32.Ceil(r.xs[i]-0.5)))
			xb := min(fb.Width, int(math32.Ceil(r.xs[i+1]-0.5)))
			if xa < xb {
				r.span(y, xa, xb, &planes, sh)
			}
		}
	}
}

// span shades pixels [xa, xb) of row y, stepping the varyings incrementally.
func (r *Renderer) span(y, xa, xb int, planes *[numVaryings]plane, sh *shader) {
	px := float32(xa) + 0.5
	py := float32(y) + 0.5
	var q [numVaryings]float32
	for j := range numVaryings {
		q[j] = planes[j].at(px, py)
	}

	row := r.depth[y*r.fb.Width:]
	r.run = r.run[:0]
	start := xa
	for x := xa; x < xb; x++ {
		invz := q[varInvZ]
		if invz > row[x] {
			row[x] = invz
			if len(r.run) == 0 {
				start = x
			}
			r.run = append(r.run, r.shade(&q, sh))
		} else if len(r.run) > 0 {
			sh.blend(r.fb.Span(start, y, len(r.run)), r.run)
			r.run = r.run[:0]
		}
		for j := range numVaryings {
			q[j] += planes[j].dx
		}
	}
	if len(r.run) > 0 {
		sh.blend(r.fb.Span(start, y, len(r.run)), r.run)
	}
}

func (r *Renderer) shade(q *[numVaryings]float32, sh *shader) Color {
	c := sh.base
	if !sh.uv && !sh.color {
		return c
	}
	z := 1 / q[varInvZ]
	if sh.uv && sh.tex != nil {
		c = ModulateColor(c, sh.tex.Sample(q[varU]*z, q[varV]*z))
	}
	if sh.color {
		c = ModulateColor(c, Color{
			R: unitToByte(q[varR] * z),
			G: unitToByte(q[varG] * z),
			B: unitToByte(q[varB] * z),
			A: unitToByte(q[varA] * z),
		})
	}
	return c
}
