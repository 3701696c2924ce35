// Package blend selects the pixel compositing routine of a draw call.
//
// A routine is picked once per draw call from the destination pixel layout
// and a (source, destination) factor pair, and then writes whole spans:
//
//	dst = srcFactor(s, d)*s + dstFactor(s, d)*d
//
// Channel values are 8-bit and products are rounded with div255.
package blend

import (
	"fmt"
	"strings"
)

// Factor scales the source or destination color before they are summed.
type Factor uint8

const (
	Zero Factor = iota
	One
	SrcColor
	InvSrcColor
	DstColor
	InvDstColor
	SrcAlpha
	InvSrcAlpha
	DstAlpha
	InvDstAlpha

	numFactors
)

var factorNames = [numFactors]string{
	"zero", "one",
	"src-color", "inv-src-color",
	"dst-color", "inv-dst-color",
	"src-alpha", "inv-src-alpha",
	"dst-alpha", "inv-dst-alpha",
}

func (f Factor) String() string {
	if f < numFactors {
		return factorNames[f]
	}
	return fmt.Sprintf("factor(%d)", uint8(f))
}

// ParseFactor parses a factor name such as "inv-src-alpha". Underscores and
// case are ignored.
func ParseFactor(s string) (Factor, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, n := range factorNames {
		if n == name {
			return Factor(i), nil
		}
	}
	return Zero, fmt.Errorf("blend: unknown factor %q", s)
}

// readsDst reports whether the factor depends on the destination pixel.
func (f Factor) readsDst() bool {
	switch f {
	case DstColor, InvDstColor, DstAlpha, InvDstAlpha:
		return true
	}
	return false
}

// weights holds one 0..255 multiplier per channel.
type weights [4]uint8

type weightFunc func(s, d *[4]uint8) weights

func splat(v uint8) weights { return weights{v, v, v, v} }

func inv(w [4]uint8) weights { return weights{255 - w[0], 255 - w[1], 255 - w[2], 255 - w[3]} }

var factorWeights = [numFactors]weightFunc{
	Zero:        func(s, d *[4]uint8) weights { return weights{} },
	One:         func(s, d *[4]uint8) weights { return splat(255) },
	SrcColor:    func(s, d *[4]uint8) weights { return *s },
	InvSrcColor: func(s, d *[4]uint8) weights { return inv(*s) },
	DstColor:    func(s, d *[4]uint8) weights { return *d },
	InvDstColor: func(s, d *[4]uint8) weights { return inv(*d) },
	SrcAlpha:    func(s, d *[4]uint8) weights { return splat(s[3]) },
	InvSrcAlpha: func(s, d *[4]uint8) weights { return splat(255 - s[3]) },
	DstAlpha:    func(s, d *[4]uint8) weights { return splat(d[3]) },
	InvDstAlpha: func(s, d *[4]uint8) weights { return splat(255 - d[3]) },
}

// div255 divides x in 0..65025 by 255, rounding to nearest.
func div255(x uint32) uint32 {
	x += 128
	return (x + x>>8) >> 8
}

func mul(a, b uint8) uint32 { return div255(uint32(a) * uint32(b)) }

func sat(x uint32) uint8 { return uint8(min(x, 255)) }
