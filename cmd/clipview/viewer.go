package main

import (
	"fmt"
	"math"

	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/math3d"
	"github.com/taigrr/softclip/pkg/models"
	"github.com/taigrr/softclip/pkg/render"
)

// viewer owns the scene state shared by snapshot and terminal modes.
type viewer struct {
	scene    Scene
	mesh     *models.Mesh
	calls    []render.DrawCall
	renderer *render.Renderer
	camera   *render.Camera
	orbit    *Orbit
	outline  *clip.Outline
	bounds   render.AABB
	bg       render.Color

	textured    bool
	showOutline bool
	showBounds  bool
	mirror      bool
}

// normalizeMesh centers mesh on the origin and scales its largest side to 2.
func normalizeMesh(mesh *models.Mesh) {
	mesh.CalculateBounds()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return
	}
	scale := 2.0 / maxDim
	mesh.Transform(math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(mesh.Center().Negate())))
}

func newViewer(scene Scene, mesh *models.Mesh, fallback *render.Texture, fb *render.Framebuffer, fps int) (*viewer, error) {
	src, dst, err := scene.Factors()
	if err != nil {
		return nil, err
	}
	rgb, err := scene.BackgroundRGB()
	if err != nil {
		return nil, err
	}

	camera := render.NewCamera()
	camera.SetFOV(scene.Camera.FOV * math.Pi / 180)
	camera.SetClipPlanes(scene.Camera.Near, scene.Camera.Far)

	v := &viewer{
		scene:       scene,
		mesh:        mesh,
		renderer:    render.NewRenderer(camera, fb),
		camera:      camera,
		orbit:       NewOrbit(fps, scene.Camera.Distance),
		bg:          render.RGB(rgb[0], rgb[1], rgb[2]),
		textured:    true,
		showOutline: true,
		showBounds:  scene.Bounds,
		mirror:      scene.Mirror,
	}
	v.orbit.Yaw.Position = math.Pi / 6
	v.orbit.Pitch.Position = math.Pi / 8
	if scene.Edges {
		v.renderer.EdgeColor = render.ColorYellow
	}

	v.bounds = render.AABB{Min: mesh.BoundsMin, Max: mesh.BoundsMax}
	bounds := &v.bounds
	textures := make(map[int]*render.Texture)
	for _, part := range mesh.Parts {
		dc := render.DrawCall{
			Buffers:       &mesh.Buffers,
			Indices:       part.Indices,
			Topology:      part.Topology,
			ObjectToWorld: math3d.Identity(),
			Texture:       fallback,
			Src:           src,
			Dst:           dst,
			Bounds:        bounds,
		}
		if mat := mesh.GetMaterial(part.Material); mat != nil {
			dc.Color = render.RGBA(
				unitByte(mat.BaseColor[0]), unitByte(mat.BaseColor[1]),
				unitByte(mat.BaseColor[2]), unitByte(mat.BaseColor[3]))
			if mat.HasTexture() {
				tex, ok := textures[part.Material]
				if !ok {
					tex = render.TextureFromImage(mat.BaseMap)
					tex.GenerateMips()
					textures[part.Material] = tex
				}
				dc.Texture = tex
			}
		}
		v.calls = append(v.calls, dc)
	}
	v.applyMirror()

	if err := v.resize(fb); err != nil {
		return nil, err
	}
	return v, nil
}

// applyMirror flips each draw whose front winding differs from the mirror flag.
func (v *viewer) applyMirror() {
	for i, part := range v.mesh.Parts {
		v.calls[i].Mirror = v.mirror != part.FrontCCW
	}
}

var boundsColor = render.ColorGreen

func unitByte(f float64) uint8 {
	return uint8(math.Round(max(0, min(1, f)) * 255))
}

// resize switches to a new framebuffer and rebuilds the outline for it.
func (v *viewer) resize(fb *render.Framebuffer) error {
	v.renderer.SetFramebuffer(fb)
	outline, err := v.scene.OutlineFor(fb.Width, fb.Height)
	if err != nil {
		return err
	}
	v.outline = outline
	v.applyOutline()
	return nil
}

func (v *viewer) applyOutline() {
	o := v.outline
	if !v.showOutline {
		o = nil
	}
	for i := range v.calls {
		v.calls[i].Outline = o
	}
}

// toggleTexture switches between the textured and vertex-color looks.
func (v *viewer) toggleTexture() {
	v.textured = !v.textured
}

func (v *viewer) toggleOutline() {
	v.showOutline = !v.showOutline
	v.applyOutline()
}

func (v *viewer) toggleMirror() {
	v.mirror = !v.mirror
	v.applyMirror()
}

func (v *viewer) toggleBounds() {
	v.showBounds = !v.showBounds
}

func (v *viewer) toggleEdges() {
	if v.renderer.EdgeColor.A == 0 {
		v.renderer.EdgeColor = render.ColorYellow
	} else {
		v.renderer.EdgeColor = render.Color{}
	}
}

// frame advances the orbit by one step and renders the scene.
func (v *viewer) frame() error {
	v.orbit.Update()
	v.camera.Orbit(math3d.Vec3{}, v.orbit.Distance, v.orbit.Yaw.Position, v.orbit.Pitch.Position)

	v.renderer.BeginFrame(v.bg)
	for i := range v.calls {
		dc := v.calls[i]
		if !v.textured {
			dc.Texture = nil
		}
		if err := v.renderer.Draw(&dc); err != nil {
			return fmt.Errorf("draw part %d: %w", i, err)
		}
	}
	if v.showBounds {
		v.renderer.DrawBounds(v.bounds, boundsColor)
	}
	if v.outline != nil && v.showOutline {
		v.renderer.Framebuffer().DrawOutline(v.outline, render.ColorGray)
	}
	return nil
}

// status summarizes the last frame.
func (v *viewer) status(fps float64) string {
	s := v.renderer.Stats
	return fmt.Sprintf(" %.0f fps  %d tris  %d polys  %d back  %d near  %d outside  mirror=%t ",
		fps, s.Triangles, s.Polygons, s.Backface, s.NearCulled, s.OutlineCulled, v.mirror)
}
