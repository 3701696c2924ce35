package blend

import (
	"fmt"
	"image/color"
)

// Func composites a span of source pixels onto dst, which holds the same
// number of pixels in the selected format.
type Func func(dst []byte, src []color.RGBA)

// Select returns the routine for format f and the factor pair. It is meant
// to be called once per draw call.
//
// When dst is Zero and src does not depend on the destination the routine
// overwrites without reading dst.
func Select(f Format, src, dst Factor) (Func, error) {
	if src >= numFactors || dst >= numFactors {
		return nil, fmt.Errorf("blend: unknown factor pair %s, %s", src, dst)
	}
	if f.bpp == 0 {
		return nil, fmt.Errorf("%w: zero value", ErrFormat)
	}

	if dst == Zero && !src.readsDst() {
		if src == One && f.layout == rgba8888 {
			return copyRGBA, nil
		}
		return overwrite(f, factorWeights[src]), nil
	}

	if f.layout == rgba8888 {
		switch {
		case src == SrcAlpha && dst == InvSrcAlpha:
			return alphaRGBA, nil
		case src == One && dst == InvSrcAlpha:
			return premulOverRGBA, nil
		case src == One && dst == One:
			return addRGBA, nil
		case src == DstColor && dst == Zero, src == Zero && dst == SrcColor:
			return modulateRGBA, nil
		}
	}
	return generic(f, factorWeights[src], factorWeights[dst]), nil
}

func rgba(c color.RGBA) [4]uint8 { return [4]uint8{c.R, c.G, c.B, c.A} }

func overwrite(f Format, sw weightFunc) Func {
	bpp := f.bpp
	return func(dst []byte, src []color.RGBA) {
		var none [4]uint8
		for i := range src {
			s := rgba(src[i])
			w := sw(&s, &none)
			f.Store(dst[i*bpp:], color.RGBA{
				R: uint8(mul(s[0], w[0])),
				G: uint8(mul(s[1], w[1])),
				B: uint8(mul(s[2], w[2])),
				A: uint8(mul(s[3], w[3])),
			})
		}
	}
}

func generic(f Format, sw, dw weightFunc) Func {
	bpp := f.bpp
	return func(dst []byte, src []color.RGBA) {
		for i := range src {
			p := dst[i*bpp:]
			s := rgba(src[i])
			d := rgba(f.Load(p))
			ws := sw(&s, &d)
			wd := dw(&s, &d)
			f.Store(p, color.RGBA{
				R: sat(mul(s[0], ws[0]) + mul(d[0], wd[0])),
				G: sat(mul(s[1], ws[1]) + mul(d[1], wd[1])),
				B: sat(mul(s[2], ws[2]) + mul(d[2], wd[2])),
				A: sat(mul(s[3], ws[3]) + mul(d[3], wd[3])),
			})
		}
	}
}

func copyRGBA(dst []byte, src []color.RGBA) {
	for i, s := range src {
		d := dst[i*4 : i*4+4 : i*4+4]
		d[0], d[1], d[2], d[3] = s.R, s.G, s.B, s.A
	}
}

func alphaRGBA(dst []byte, src []color.RGBA) {
	for i, s := range src {
		d := dst[i*4 : i*4+4 : i*4+4]
		a, ia := s.A, 255-s.A
		d[0] = sat(mul(s.R, a) + mul(d[0], ia))
		d[1] = sat(mul(s.G, a) + mul(d[1], ia))
		d[2] = sat(mul(s.B, a) + mul(d[2], ia))
		d[3] = sat(mul(s.A, a) + mul(d[3], ia))
	}
}

func premulOverRGBA(dst []byte, src []color.RGBA) {
	for i, s := range src {
		d := dst[i*4 : i*4+4 : i*4+4]
		ia := 255 - s.A
		d[0] = sat(uint32(s.R) + mul(d[0], ia))
		d[1] = sat(uint32(s.G) + mul(d[1], ia))
		d[2] = sat(uint32(s.B) + mul(d[2], ia))
		d[3] = sat(uint32(s.A) + mul(d[3], ia))
	}
}

func addRGBA(dst []byte, src []color.RGBA) {
	for i, s := range src {
		d := dst[i*4 : i*4+4 : i*4+4]
		d[0] = sat(uint32(s.R) + uint32(d[0]))
		d[1] = sat(uint32(s.G) + uint32(d[1]))
		d[2] = sat(uint32(s.B) + uint32(d[2]))
		d[3] = sat(uint32(s.A) + uint32(d[3]))
	}
}

func modulateRGBA(dst []byte, src []color.RGBA) {
	for i, s := range src {
		d := dst[i*4 : i*4+4 : i*4+4]
		d[0] = uint8(mul(s.R, d[0]))
		d[1] = uint8(mul(s.G, d[1]))
		d[2] = uint8(mul(s.B, d[2]))
		d[3] = uint8(mul(s.A, d[3]))
	}
}
