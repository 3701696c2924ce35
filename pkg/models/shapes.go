package models

import (
	"github.com/taigrr/softclip/pkg/math3d"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// cubeFaces lists the outward normal of each face with a tangent basis u, v
// where u x v is the normal.
var cubeFaces = [6][3]math3d.Vec3{
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
}

// NewCube creates an axis-aligned cube centered on the origin with sides of
// the given length. Each face is its own quad with texcoords spanning the
// whole texture, wound clockwise as seen from outside.
func NewCube(size float64) *Mesh {
	h := size / 2
	var (
		pos     = make([]float32, 0, 24*3)
		normals = make([]float32, 0, 24*3)
		uvs     = make([]float32, 0, 24*2)
		indices = make([]uint32, 0, 24)
	)

	// Corner signs in clockwise order from outside.
	corners := [4][2]float64{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}
	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		for _, c := range corners {
			p := n.Add(u.Scale(c[0])).Add(v.Scale(c[1])).Scale(h)
			pos = append(pos, float32(p.X), float32(p.Y), float32(p.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			uvs = append(uvs, float32(c[0]+1)/2, float32(c[1]+1)/2)
			indices = append(indices, uint32(len(indices)))
		}
	}

	m := NewMesh("cube")
	m.Buffers.Bind(vbuf.Position, vbuf.Packed(pos, 3))
	m.Buffers.Bind(vbuf.Normal, vbuf.Packed(normals, 3))
	m.Buffers.Bind(vbuf.TexCoord, vbuf.Packed(uvs, 2))
	m.Parts = []Part{{Indices: indices, Topology: vbuf.Quad, Material: -1}}
	m.CalculateBounds()
	return m
}
