package blend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math/bits"
)

// ErrFormat is returned for channel masks that cannot describe a pixel.
var ErrFormat = errors.New("blend: bad pixel format")

type layout uint8

const (
	arbitrary layout = iota
	rgba8888
	bgra8888
	rgb565
)

type channel struct {
	mask  uint32
	shift uint8
	bits  uint8
}

func newChannel(mask uint32) channel {
	if mask == 0 {
		return channel{}
	}
	return channel{
		mask:  mask,
		shift: uint8(bits.TrailingZeros32(mask)),
		bits:  uint8(bits.OnesCount32(mask)),
	}
}

// get widens the channel stored in p to 8 bits by bit replication.
func (c channel) get(p uint32) uint8 {
	v := (p & c.mask) >> c.shift
	switch {
	case c.bits >= 8:
		return uint8(v >> (c.bits - 8))
	case c.bits == 0:
		return 0
	}
	v <<= 8 - c.bits
	for n := c.bits; n < 8; n *= 2 {
		v |= v >> n
	}
	return uint8(v)
}

func (c channel) put(v uint8) uint32 {
	if c.bits == 0 {
		return 0
	}
	w := uint32(v)
	if c.bits < 8 {
		w >>= 8 - c.bits
	} else {
		w <<= c.bits - 8
	}
	return w << c.shift & c.mask
}

// Format describes a little-endian packed pixel of 2, 3 or 4 bytes.
type Format struct {
	name       string
	layout     layout
	bpp        int
	r, g, b, a channel
}

// Fixed layouts. RGBA8888 has hand-specialized kernels for the common factor
// pairs; the others go through the generic per-pixel path.
var (
	RGBA8888 = mustFormat("rgba8888", rgba8888, 4, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000)
	BGRA8888 = mustFormat("bgra8888", bgra8888, 4, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000)
	RGB565   = mustFormat("rgb565", rgb565, 2, 0xf800, 0x07e0, 0x001f, 0)
)

func mustFormat(name string, l layout, bpp int, r, g, b, a uint32) Format {
	f, err := NewFormat(bpp, r, g, b, a)
	if err != nil {
		panic(err)
	}
	f.name, f.layout = name, l
	return f
}

// NewFormat describes an arbitrary layout from its channel masks. A zero
// alpha mask means the format is opaque.
func NewFormat(bytesPerPixel int, r, g, b, a uint32) (Format, error) {
	if bytesPerPixel < 2 || bytesPerPixel > 4 {
		return Format{}, fmt.Errorf("%w: %d bytes per pixel", ErrFormat, bytesPerPixel)
	}
	limit := uint32(1)<<(8*bytesPerPixel) - 1
	if bytesPerPixel == 4 {
		limit = ^uint32(0)
	}
	var seen uint32
	for _, m := range []uint32{r, g, b, a} {
		if m&^limit != 0 || m&seen != 0 {
			return Format{}, fmt.Errorf("%w: mask %#x", ErrFormat, m)
		}
		if m != 0 && bits.OnesCount32(m) != 32-bits.LeadingZeros32(m)-bits.TrailingZeros32(m) {
			return Format{}, fmt.Errorf("%w: mask %#x is not contiguous", ErrFormat, m)
		}
		seen |= m
	}
	if r == 0 && g == 0 && b == 0 {
		return Format{}, fmt.Errorf("%w: no color channels", ErrFormat)
	}
	return Format{
		name: fmt.Sprintf("custom%d[%#x,%#x,%#x,%#x]", bytesPerPixel*8, r, g, b, a),
		bpp:  bytesPerPixel,
		r:    newChannel(r),
		g:    newChannel(g),
		b:    newChannel(b),
		a:    newChannel(a),
	}, nil
}

func (f Format) String() string { return f.name }

// BytesPerPixel returns the pixel size.
func (f Format) BytesPerPixel() int { return f.bpp }

// HasAlpha reports whether the format stores alpha.
func (f Format) HasAlpha() bool { return f.a.bits > 0 }

func (f Format) read(p []byte) uint32 {
	switch f.bpp {
	case 2:
		return uint32(binary.LittleEndian.Uint16(p))
	case 3:
		return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
	}
	return binary.LittleEndian.Uint32(p)
}

func (f Format) write(p []byte, v uint32) {
	switch f.bpp {
	case 2:
		binary.LittleEndian.PutUint16(p, uint16(v))
	case 3:
		p[0], p[1], p[2] = byte(v), byte(v>>8), byte(v>>16)
	default:
		binary.LittleEndian.PutUint32(p, v)
	}
}

// Pack converts c to the packed pixel value.
func (f Format) Pack(c color.RGBA) uint32 {
	return f.r.put(c.R) | f.g.put(c.G) | f.b.put(c.B) | f.a.put(c.A)
}

// Unpack converts a packed pixel value to 8-bit channels. Opaque formats
// read back alpha 255.
func (f Format) Unpack(p uint32) color.RGBA {
	c := color.RGBA{R: f.r.get(p), G: f.g.get(p), B: f.b.get(p), A: 255}
	if f.HasAlpha() {
		c.A = f.a.get(p)
	}
	return c
}

// Load reads the pixel at the start of p.
func (f Format) Load(p []byte) color.RGBA { return f.Unpack(f.read(p)) }

// Store writes c at the start of p.
func (f Format) Store(p []byte, c color.RGBA) { f.write(p, f.Pack(c)) }
