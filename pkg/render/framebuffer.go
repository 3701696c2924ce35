// Package render draws meshes through the clip pipeline into a packed
// pixel framebuffer and presents it on a terminal.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/taigrr/softclip/pkg/blend"
)

// Framebuffer is a packed pixel surface. The terminal view uses half-block
// characters, so Height is usually twice the number of rows.
type Framebuffer struct {
	Width  int
	Height int
	Format blend.Format
	Pix    []byte // Row-major, Stride bytes per row
	Stride int
}

// NewFramebuffer creates an RGBA8888 framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return NewFramebufferFormat(width, height, blend.RGBA8888)
}

// NewFramebufferFormat creates a framebuffer with the given pixel format.
func NewFramebufferFormat(width, height int, f blend.Format) *Framebuffer {
	stride := width * f.BytesPerPixel()
	return &Framebuffer{
		Width:  width,
		Height: height,
		Format: f,
		Pix:    make([]byte, stride*height),
		Stride: stride,
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	bpp := fb.Format.BytesPerPixel()
	if len(fb.Pix) < bpp {
		return
	}
	fb.Format.Store(fb.Pix, c)
	for i := bpp; i < len(fb.Pix); i *= 2 {
		copy(fb.Pix[i:], fb.Pix[:i])
	}
}

// Span returns the bytes of n pixels starting at (x, y). The caller keeps
// the span inside the row.
func (fb *Framebuffer) Span(x, y, n int) []byte {
	bpp := fb.Format.BytesPerPixel()
	off := y*fb.Stride + x*bpp
	return fb.Pix[off : off+n*bpp]
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Format.Store(fb.Span(x, y, 1), c)
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Format.Load(fb.Span(x, y, 1))
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.GetPixel(x, y))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	if err := imgio.Save(path, fb.ToImage(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save framebuffer: %w", err)
	}
	return nil
}
