package main

import (
	"fmt"
	"math"
	"os"

	"github.com/taigrr/softclip/pkg/blend"
	"github.com/taigrr/softclip/pkg/clip"
	"gopkg.in/yaml.v3"
)

// Scene is the YAML scene file. Outline coordinates are fractions of the
// framebuffer size so the outline follows terminal resizes.
type Scene struct {
	Camera  CameraConfig  `yaml:"camera"`
	Outline OutlineConfig `yaml:"outline"`
	Blend   BlendConfig   `yaml:"blend"`
	Mirror  bool          `yaml:"mirror"`
	// Background is an "R,G,B" triple.
	Background string `yaml:"background"`
	Edges      bool   `yaml:"edges"`
	// Bounds draws the model's bounding box.
	Bounds bool `yaml:"bounds"`
}

// CameraConfig positions the orbit camera. FOV is in degrees.
type CameraConfig struct {
	FOV      float64 `yaml:"fov"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	Distance float64 `yaml:"distance"`
}

// OutlineConfig picks the screen outline: explicit points, or a named shape
// of star, hex or none.
type OutlineConfig struct {
	Shape  string       `yaml:"shape"`
	Points [][2]float32 `yaml:"points"`
	// Scale shrinks a named shape around the framebuffer center.
	Scale float32 `yaml:"scale"`
}

// BlendConfig names the blend factors, e.g. "src-alpha".
type BlendConfig struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
}

// DefaultScene is used when no scene file is given.
func DefaultScene() Scene {
	return Scene{
		Camera: CameraConfig{
			FOV:      60,
			Near:     0.1,
			Far:      100,
			Distance: 4,
		},
		Outline:    OutlineConfig{Shape: "none", Scale: 0.9},
		Blend:      BlendConfig{Src: "one", Dst: "zero"},
		Background: "30,30,40",
	}
}

// LoadScene reads a scene file on top of the defaults.
func LoadScene(path string) (Scene, error) {
	scene := DefaultScene()
	data, err := os.ReadFile(path)
	if err != nil {
		return scene, fmt.Errorf("read scene: %w", err)
	}
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return scene, fmt.Errorf("parse scene: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return scene, fmt.Errorf("validate scene: %w", err)
	}
	return scene, nil
}

// Validate checks the camera and blend settings.
func (s *Scene) Validate() error {
	if s.Camera.FOV <= 0 || s.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov %v out of range", s.Camera.FOV)
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		return fmt.Errorf("camera planes near=%v far=%v", s.Camera.Near, s.Camera.Far)
	}
	if _, _, err := s.Factors(); err != nil {
		return err
	}
	if _, err := s.BackgroundRGB(); err != nil {
		return err
	}
	switch s.Outline.Shape {
	case "", "none", "star", "hex":
	default:
		if len(s.Outline.Points) == 0 {
			return fmt.Errorf("unknown outline shape %q", s.Outline.Shape)
		}
	}
	return nil
}

// Factors parses the blend factor names.
func (s *Scene) Factors() (src, dst blend.Factor, err error) {
	if src, err = blend.ParseFactor(s.Blend.Src); err != nil {
		return src, dst, err
	}
	dst, err = blend.ParseFactor(s.Blend.Dst)
	return src, dst, err
}

// BackgroundRGB parses the background color.
func (s *Scene) BackgroundRGB() ([3]uint8, error) {
	var rgb [3]uint8
	if s.Background == "" {
		return rgb, nil
	}
	if _, err := fmt.Sscanf(s.Background, "%d,%d,%d", &rgb[0], &rgb[1], &rgb[2]); err != nil {
		return rgb, fmt.Errorf("parse background %q: %w", s.Background, err)
	}
	return rgb, nil
}

// OutlineFor builds the screen outline for a width x height framebuffer, or
// nil when the whole framebuffer is used.
func (s *Scene) OutlineFor(width, height int) (*clip.Outline, error) {
	w, h := float32(width), float32(height)

	var unit [][2]float32
	switch {
	case len(s.Outline.Points) > 0:
		unit = s.Outline.Points
	case s.Outline.Shape == "star":
		unit = starPoints(5, s.Outline.Scale)
	case s.Outline.Shape == "hex":
		unit = regularPoints(6, s.Outline.Scale)
	default:
		return nil, nil
	}

	pts := make([]clip.Point, len(unit))
	for i, p := range unit {
		pts[i] = clip.Point{X: p[0] * w, Y: p[1] * h}
	}
	o, err := clip.NewOutline(pts)
	if err != nil {
		return nil, fmt.Errorf("build outline: %w", err)
	}
	return o, nil
}

// regularPoints returns an n-gon inscribed in the unit square, centered.
func regularPoints(n int, scale float32) [][2]float32 {
	if scale <= 0 {
		scale = 1
	}
	pts := make([][2]float32, n)
	for i := range pts {
		a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		pts[i] = [2]float32{
			0.5 + 0.5*scale*float32(math.Cos(a)),
			0.5 + 0.5*scale*float32(math.Sin(a)),
		}
	}
	return pts
}

// starPoints returns a concave star with the given number of tips.
func starPoints(tips int, scale float32) [][2]float32 {
	outer := regularPoints(2*tips, scale)
	for i := 1; i < len(outer); i += 2 {
		outer[i][0] = 0.5 + (outer[i][0]-0.5)*0.45
		outer[i][1] = 0.5 + (outer[i][1]-0.5)*0.45
	}
	return outer
}
