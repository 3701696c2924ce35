// Package clip clips triangles against the near plane and against an
// arbitrary screen-space outline, re-interpolating every active vertex
// attribute at the vertices the clip creates.
package clip

// ScreenVertex is a projected vertex: pixel coordinates plus 1/z.
type ScreenVertex struct {
	X, Y float32
	InvZ float32
}

// Point returns the pixel coordinates of v.
func (v ScreenVertex) Point() Point { return Point{v.X, v.Y} }

// Projection maps eye-space positions to pixels. Eye space looks down +z, so
// a vertex is in front of the camera when z is positive; screen y grows
// downward.
type Projection struct {
	HalfWidth  float32
	HalfHeight float32
	// Aspect is the focal length in pixels.
	Aspect float32
}

// Project returns the screen position of the eye-space point (x, y, z).
func (p Projection) Project(x, y, z float32) ScreenVertex {
	invz := 1 / z
	return ScreenVertex{
		X:    p.HalfWidth + x*p.Aspect*invz,
		Y:    p.HalfHeight - y*p.Aspect*invz,
		InvZ: invz,
	}
}

// SignedArea returns twice the signed area of the screen triangle a, b, c.
// It is positive for front faces of an unmirrored mesh.
func SignedArea(a, b, c ScreenVertex) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// FrontFacing reports whether a triangle of the given signed area faces the
// camera. Mirrored transforms reverse the winding.
func FrontFacing(area float32, mirror bool) bool {
	if mirror {
		return area < 0
	}
	return area > 0
}
