package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/taigrr/softclip/pkg/blend"
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/math3d"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// Draw call contract errors.
var (
	ErrNoPosition    = clip.ErrNoPosition
	ErrBadBuffer     = vbuf.ErrBadBuffer
	ErrIndexRange    = errors.New("render: index out of range")
	ErrTriangleCount = errors.New("render: triangle count exceeds index stream")
)

// DrawCall describes one mesh draw.
type DrawCall struct {
	Buffers *vbuf.Set
	// Desired selects the slots to use; zero means every bound slot.
	Desired  vbuf.Mask
	Indices  []uint32
	Topology vbuf.Topology
	// Triangles limits the walk; zero means every triangle of Indices.
	Triangles int
	// Mirror flips the front-face winding, on top of any mirroring in
	// ObjectToWorld.
	Mirror        bool
	ObjectToWorld math3d.Mat4
	// Outline clips the mesh on screen; nil means the whole framebuffer.
	Outline *clip.Outline
	Texture *Texture
	// Color tints every pixel; the zero value means white.
	Color    Color
	Src, Dst blend.Factor
	// Bounds is the object-space box used for frustum culling, if known.
	Bounds *AABB
}

// Renderer draws meshes into a framebuffer. It owns the scratch memory every
// draw reuses and is not safe for concurrent use.
type Renderer struct {
	Camera *Camera
	Stats  DrawStats
	// EdgeColor, when not transparent, outlines every drawn polygon.
	EdgeColor Color

	fb    *Framebuffer
	depth []float32 // 1/z per pixel, 0 is infinitely far

	scratch clip.Scratch
	clipper clip.BuffersClipper
	walker  TriangleWalker
	set     vbuf.Set
	eye     []float32
	persp   []clip.ScreenVertex
	xs      []float32
	run     []color.RGBA
}

// NewRenderer creates a renderer drawing into fb through camera.
func NewRenderer(camera *Camera, fb *Framebuffer) *Renderer {
	r := &Renderer{Camera: camera}
	r.SetFramebuffer(fb)
	return r
}

// SetFramebuffer switches the render target and matches the camera aspect
// ratio to it.
func (r *Renderer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	if n := fb.Width * fb.Height; cap(r.depth) < n {
		r.depth = make([]float32, n)
	} else {
		r.depth = r.depth[:n]
	}
	if fb.Height > 0 {
		r.Camera.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
	}
}

// Framebuffer returns the render target.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// ClearDepth resets the depth buffer to infinitely far.
func (r *Renderer) ClearDepth() {
	clear(r.depth)
}

// BeginFrame clears the color and depth buffers and the statistics.
func (r *Renderer) BeginFrame(background Color) {
	r.fb.Clear(background)
	r.ClearDepth()
	r.Stats = DrawStats{}
}

// validate checks the contract of dc and returns the active slots, the
// vertex count and the number of triangles to walk.
func validate(dc *DrawCall) (mask vbuf.Mask, vertices, triangles int, err error) {
	desired := dc.Desired
	if desired == 0 {
		desired = ^vbuf.Mask(0)
	}
	mask = dc.Buffers.Active(desired)
	if !mask.Has(vbuf.Position) || dc.Buffers.Get(vbuf.Position).Components < 3 {
		return 0, 0, 0, fmt.Errorf("draw: %w", ErrNoPosition)
	}
	if err := dc.Buffers.Validate(mask); err != nil {
		return 0, 0, 0, fmt.Errorf("draw: %w", err)
	}

	vertices = dc.Buffers.VertexCount(mask)
	for i, idx := range dc.Indices {
		if int(idx) >= vertices {
			return 0, 0, 0, fmt.Errorf("draw: index %d is %d with %d vertices: %w", i, idx, vertices, ErrIndexRange)
		}
	}

	avail := dc.Topology.Triangles(len(dc.Indices))
	triangles = dc.Triangles
	if triangles == 0 {
		triangles = avail
	}
	if triangles < 0 || triangles > avail {
		return 0, 0, 0, fmt.Errorf("draw: %d triangles, %s stream holds %d: %w", dc.Triangles, dc.Topology, avail, ErrTriangleCount)
	}
	return mask, vertices, triangles, nil
}

// Draw renders one draw call. Degenerate, back-facing and clipped-away
// geometry is dropped silently and counted in Stats; only contract
// violations of the call itself return an error.
func (r *Renderer) Draw(dc *DrawCall) error {
	mask, n, triangles, err := validate(dc)
	if err != nil {
		return err
	}
	blendFn, err := blend.Select(r.fb.Format, dc.Src, dc.Dst)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	r.Stats.MeshesTested++
	if dc.Bounds != nil && !r.Camera.Frustum().IntersectAABB(dc.Bounds.Transform(dc.ObjectToWorld)) {
		r.Stats.MeshesCulled++
		return nil
	}

	// Positions go to eye space and are projected once per draw.
	toEye := r.Camera.EyeMatrix().Mul(dc.ObjectToWorld)
	proj := r.Camera.Projection(r.fb.Width, r.fb.Height)
	nearZ := float32(r.Camera.Near)
	r.eye = slicesGrow(r.eye, n*3)
	r.persp = slicesGrow(r.persp, n)
	pos := dc.Buffers.Get(vbuf.Position)
	for i := range n {
		p := pos.At(i)
		e := toEye.MulVec3(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
		x, y, z := float32(e.X), float32(e.Y), float32(e.Z)
		r.eye[i*3], r.eye[i*3+1], r.eye[i*3+2] = x, y, z
		r.persp[i] = clip.ScreenVertex{}
		if z >= nearZ {
			r.persp[i] = proj.Project(x, y, z)
		}
	}
	r.set = *dc.Buffers
	r.set.Bind(vbuf.Position, vbuf.Packed(r.eye, 3))

	if err := r.clipper.Setup(&r.set, mask, vbuf.Position, dc.Outline, &r.scratch); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	mirror := dc.Mirror != dc.ObjectToWorld.Mirrored()

	Logger().Debug("draw call",
		"mask", fmt.Sprintf("%#04x", uint16(mask)),
		"src", dc.Src, "dst", dc.Dst,
		"triangles", triangles,
		"outline", dc.Outline != nil,
		"mirror", mirror)

	r.walker.Setup(WalkerConfig{
		Clipper:    &r.clipper,
		Persp:      r.persp,
		Projection: proj,
		NearZ:      nearZ,
		Mirror:     mirror,
		Texture:    dc.Texture,
		Stats:      &r.Stats,
	})
	r.walker.BeginTriangulate(dc.Indices, dc.Topology, triangles)

	sh := shader{
		base:  dc.Color,
		blend: blendFn,
		uv:    dc.Texture != nil && mask.Has(vbuf.TexCoord),
		color: mask.Has(vbuf.Color),
	}
	if sh.base == (Color{}) {
		sh.base = ColorWhite
	}
	for {
		poly, mip, ok := r.walker.NextTriangle()
		if !ok {
			break
		}
		if sh.uv {
			sh.tex = dc.Texture.Level(mip)
		}
		r.fill(poly, &sh)
		if r.EdgeColor.A != 0 {
			r.fb.DrawPolygon(poly, r.EdgeColor)
		}
	}
	return nil
}

// slicesGrow returns s resized to n, reallocating only when it must grow.
func slicesGrow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
