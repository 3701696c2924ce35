package render

import (
	"github.com/chewxy/math32"
	"github.com/taigrr/softclip/pkg/clip"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// minScreenDelta is the screen distance, in pixels, below which a texel
// density estimate is not attempted.
const minScreenDelta = 1e-3

// MipLevel maps a texel-per-pixel density to a mip level. The thresholds
// 2, 4 and 8 are inclusive.
func MipLevel(density float32) int {
	switch {
	case density >= 8:
		return 3
	case density >= 4:
		return 2
	case density >= 2:
		return 1
	}
	return 0
}

// TexelDensity estimates texels per pixel at the polygon vertex nearest the
// camera, averaging over the edges to its two neighbours. uv holds the
// polygon's texture coordinates; width and height are the texture size.
// It returns 0 when either edge is too short on screen to measure.
func TexelDensity(poly *clip.Polygon, uv vbuf.Buffer, width, height int) float32 {
	n := poly.Count
	if n < 2 {
		return 0
	}
	near := 0
	for i := 1; i < n; i++ {
		if poly.Screen[i].InvZ > poly.Screen[near].InvZ {
			near = i
		}
	}

	w, h := float32(width), float32(height)
	p := poly.Screen[near]
	t := uv.At(near)
	var sum float32
	for _, k := range [2]int{(near + n - 1) % n, (near + 1) % n} {
		q := poly.Screen[k]
		ds := math32.Hypot(q.X-p.X, q.Y-p.Y)
		if ds < minScreenDelta {
			return 0
		}
		s := uv.At(k)
		sum += math32.Hypot((s[0]-t[0])*w, (s[1]-t[1])*h) / ds
	}
	return sum / 2
}

// selectMip picks the mip level of tex for a polygon.
func selectMip(poly *clip.Polygon, uv vbuf.Buffer, tex *Texture) int {
	level := MipLevel(TexelDensity(poly, uv, tex.Width, tex.Height))
	return min(level, tex.Levels()-1)
}
