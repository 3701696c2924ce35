// Package models provides mesh data as vertex attribute buffers plus index
// streams, with loaders for glTF files and a few procedural shapes.
package models

import (
	"image"
	"math"

	"github.com/taigrr/softclip/pkg/math3d"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// Mesh is a set of vertex attribute buffers shared by one or more index
// streams.
type Mesh struct {
	Name string

	// Buffers holds one packed float32 buffer per attribute: position (3),
	// normal (3), texcoord (2) and color (4) when present.
	Buffers vbuf.Set
	Parts   []Part

	Materials []Material

	// Bounding box in object space
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Part is one index stream over the mesh buffers.
type Part struct {
	Indices  []uint32
	Topology vbuf.Topology
	Material int // -1 for none

	// FrontCCW marks streams whose front faces wind counter-clockwise as seen
	// from outside. Such parts are drawn mirrored.
	FrontCCW bool
}

// Triangles returns the number of triangles the part forms.
func (p *Part) Triangles() int { return p.Topology.Triangles(len(p.Indices)) }

// Material is a surface description for a part.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA, 0-1
	BaseMap   image.Image
}

// HasTexture reports whether the material carries a base color image.
func (m *Material) HasTexture() bool { return m.BaseMap != nil }

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Attribute returns the raw data bound to slot s, or nil.
func (m *Mesh) Attribute(s vbuf.Slot) []float32 {
	return m.Buffers.Get(s).Data
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return m.Buffers.Get(vbuf.Position).Len()
}

// TriangleCount returns the number of triangles across all parts.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := range m.Parts {
		n += m.Parts[i].Triangles()
	}
	return n
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// GetMaterial returns material i or nil when out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

func (m *Mesh) position(i int) math3d.Vec3 {
	p := m.Buffers.Get(vbuf.Position).At(i)
	return math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	n := m.VertexCount()
	if n == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = math3d.V3(math.Inf(1), math.Inf(1), math.Inf(1))
	m.BoundsMax = math3d.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for i := range n {
		p := m.position(i)
		m.BoundsMin = math3d.V3(min(m.BoundsMin.X, p.X), min(m.BoundsMin.Y, p.Y), min(m.BoundsMin.Z, p.Z))
		m.BoundsMax = math3d.V3(max(m.BoundsMax.X, p.X), max(m.BoundsMax.Y, p.Y), max(m.BoundsMax.Z, p.Z))
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateSmoothNormals computes per-vertex normals by averaging the
// area-weighted normals of every triangle that uses the vertex, and binds
// them to the normal slot.
func (m *Mesh) CalculateSmoothNormals() {
	n := m.VertexCount()
	sums := make([]math3d.Vec3, n)

	for pi := range m.Parts {
		part := &m.Parts[pi]
		for _, tri := range part.Topology.Each(part.Indices) {
			v0 := m.position(int(tri[0]))
			e1 := m.position(int(tri[1])).Sub(v0)
			e2 := m.position(int(tri[2])).Sub(v0)
			// Clockwise fronts face along e2 x e1.
			face := e2.Cross(e1)
			if part.FrontCCW {
				face = face.Negate()
			}
			for _, vi := range tri {
				sums[vi] = sums[vi].Add(face)
			}
		}
	}

	normals := make([]float32, 3*n)
	for i, s := range sums {
		if s.Len() > 0 {
			s = s.Normalize()
		}
		normals[3*i] = float32(s.X)
		normals[3*i+1] = float32(s.Y)
		normals[3*i+2] = float32(s.Z)
	}
	m.Buffers.Bind(vbuf.Normal, vbuf.Packed(normals, 3))
}

// Transform applies mat to positions and normals in place.
func (m *Mesh) Transform(mat math3d.Mat4) {
	pos := m.Buffers.Get(vbuf.Position)
	for i := range pos.Len() {
		p := pos.At(i)
		v := mat.MulVec3(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
		p[0], p[1], p[2] = float32(v.X), float32(v.Y), float32(v.Z)
	}

	nrm := m.Buffers.Get(vbuf.Normal)
	if nrm.Components == 3 {
		// Normals use the inverse transpose.
		inv := mat.Inverse()
		for i := range nrm.Len() {
			p := nrm.At(i)
			x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
			v := math3d.V3(
				inv[0]*x+inv[1]*y+inv[2]*z,
				inv[4]*x+inv[5]*y+inv[6]*z,
				inv[8]*x+inv[9]*y+inv[10]*z,
			)
			if v.Len() > 0 {
				v = v.Normalize()
			}
			p[0], p[1], p[2] = float32(v.X), float32(v.Y), float32(v.Z)
		}
	}

	if mat.Mirrored() {
		for i := range m.Parts {
			m.Parts[i].FrontCCW = !m.Parts[i].FrontCCW
		}
	}

	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh. Material images are shared.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Parts:     make([]Part, len(m.Parts)),
		Materials: append([]Material(nil), m.Materials...),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	for i, p := range m.Parts {
		p.Indices = append([]uint32(nil), p.Indices...)
		clone.Parts[i] = p
	}
	for slot := range m.Buffers.Present().Slots() {
		buf := m.Buffers.Get(slot)
		buf.Data = append([]float32(nil), buf.Data...)
		clone.Buffers.Bind(slot, buf)
	}
	return clone
}
