package render

import (
	"github.com/chewxy/math32"
	"github.com/taigrr/softclip/pkg/clip"
)

func round(v float32) int { return int(math32.Floor(v + 0.5)) }

// DrawOutline draws the edges of a screen outline.
func (fb *Framebuffer) DrawOutline(o *clip.Outline, c Color) {
	pts := o.Points()
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		fb.DrawLine(round(a.X), round(a.Y), round(b.X), round(b.Y), c)
	}
}

// DrawPolygon draws the edges of a clipped polygon.
func (fb *Framebuffer) DrawPolygon(poly *clip.Polygon, c Color) {
	sv := poly.Screen[:poly.Count]
	for i, a := range sv {
		b := sv[(i+1)%len(sv)]
		fb.DrawLine(round(a.X), round(a.Y), round(b.X), round(b.Y), c)
	}
}

// DrawBounds draws the twelve edges of a world-space box. Edges with an end
// behind the near plane are skipped.
func (r *Renderer) DrawBounds(box AABB, c Color) {
	toEye := r.Camera.EyeMatrix()
	proj := r.Camera.Projection(r.fb.Width, r.fb.Height)
	nearZ := float32(r.Camera.Near)

	// Corner i takes Max on axis k when bit k of i is set.
	var corners [8]clip.ScreenVertex
	var visible [8]bool
	for i := range corners {
		p := box.Min
		if i&1 != 0 {
			p.X = box.Max.X
		}
		if i&2 != 0 {
			p.Y = box.Max.Y
		}
		if i&4 != 0 {
			p.Z = box.Max.Z
		}
		e := toEye.MulVec3(p)
		if z := float32(e.Z); z >= nearZ {
			corners[i] = proj.Project(float32(e.X), float32(e.Y), z)
			visible[i] = true
		}
	}

	for i := range corners {
		for _, bit := range [3]int{1, 2, 4} {
			j := i | bit
			if j == i || !visible[i] || !visible[j] {
				continue
			}
			a, b := corners[i], corners[j]
			r.fb.DrawLine(round(a.X), round(a.Y), round(b.X), round(b.Y), c)
		}
	}
}
