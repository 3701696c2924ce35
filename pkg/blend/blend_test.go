package blend

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSrc = []color.RGBA{
	{255, 0, 0, 255},
	{10, 200, 90, 128},
	{0, 0, 0, 0},
	{77, 1, 254, 33},
}

var testDst = []color.RGBA{
	{0, 0, 255, 255},
	{250, 20, 30, 64},
	{9, 99, 199, 200},
	{128, 128, 128, 128},
}

func span(f Format, px []color.RGBA) []byte {
	b := make([]byte, len(px)*f.BytesPerPixel())
	for i, c := range px {
		f.Store(b[i*f.BytesPerPixel():], c)
	}
	return b
}

func unspan(f Format, b []byte) []color.RGBA {
	out := make([]color.RGBA, len(b)/f.BytesPerPixel())
	for i := range out {
		out[i] = f.Load(b[i*f.BytesPerPixel():])
	}
	return out
}

// reference evaluates one channel of the blend equation in floating point.
func reference(fac Factor, s, d [4]uint8, ch int) float64 {
	n := func(v uint8) float64 { return float64(v) / 255 }
	switch fac {
	case Zero:
		return 0
	case One:
		return 1
	case SrcColor:
		return n(s[ch])
	case InvSrcColor:
		return 1 - n(s[ch])
	case DstColor:
		return n(d[ch])
	case InvDstColor:
		return 1 - n(d[ch])
	case SrcAlpha:
		return n(s[3])
	case InvSrcAlpha:
		return 1 - n(s[3])
	case DstAlpha:
		return n(d[3])
	case InvDstAlpha:
		return 1 - n(d[3])
	}
	panic("unreachable")
}

func TestSelectMatchesEquation(t *testing.T) {
	// BGRA8888 has no specialized kernels, so it checks the generic path.
	for _, f := range []Format{RGBA8888, BGRA8888} {
		for src := Zero; src < numFactors; src++ {
			for dst := Zero; dst < numFactors; dst++ {
				t.Run(f.String()+"/"+src.String()+"/"+dst.String(), func(t *testing.T) {
					fn, err := Select(f, src, dst)
					require.NoError(t, err)

					buf := span(f, testDst)
					fn(buf, testSrc)
					got := unspan(f, buf)

					for i := range testSrc {
						s, d := rgba(testSrc[i]), rgba(testDst[i])
						g := rgba(got[i])
						for ch := range 4 {
							want := float64(s[ch])*reference(src, s, d, ch) + float64(d[ch])*reference(dst, s, d, ch)
							want = math.Min(want, 255)
							assert.InDelta(t, want, float64(g[ch]), 1.01, "pixel %d channel %d", i, ch)
						}
					}
				})
			}
		}
	}
}

func TestSpecializedKernelsMatchGeneric(t *testing.T) {
	pairs := [][2]Factor{
		{One, Zero},
		{SrcAlpha, InvSrcAlpha},
		{One, InvSrcAlpha},
		{One, One},
		{DstColor, Zero},
		{Zero, SrcColor},
	}

	for _, p := range pairs {
		fn, err := Select(RGBA8888, p[0], p[1])
		require.NoError(t, err)
		ref := generic(RGBA8888, factorWeights[p[0]], factorWeights[p[1]])

		a := span(RGBA8888, testDst)
		b := span(RGBA8888, testDst)
		fn(a, testSrc)
		ref(b, testSrc)
		assert.Equal(t, b, a, "%s/%s", p[0], p[1])
	}
}

func TestOverwriteIgnoresDestination(t *testing.T) {
	for _, f := range []Format{RGBA8888, BGRA8888, RGB565} {
		for _, src := range []Factor{One, SrcAlpha, SrcColor, InvSrcAlpha} {
			fn, err := Select(f, src, Zero)
			require.NoError(t, err)

			a := span(f, testDst)
			b := make([]byte, len(a))
			for i := range b {
				b[i] = 0xa5
			}
			fn(a, testSrc)
			fn(b, testSrc)
			assert.Equal(t, a, b, "%s %s", f, src)
		}
	}
}

func TestOverwriteCopiesSource(t *testing.T) {
	fn, err := Select(BGRA8888, One, Zero)
	require.NoError(t, err)

	buf := make([]byte, 4*len(testSrc))
	fn(buf, testSrc)
	assert.Equal(t, testSrc, unspan(BGRA8888, buf))
	// Blue comes first in memory.
	assert.Equal(t, []byte{0, 0, 255, 255}, buf[:4])
}

func TestFormatRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		f    Format
		in   color.RGBA
		want color.RGBA
	}{
		{"rgba exact", RGBA8888, color.RGBA{1, 2, 3, 4}, color.RGBA{1, 2, 3, 4}},
		{"565 white", RGB565, color.RGBA{255, 255, 255, 0}, color.RGBA{255, 255, 255, 255}},
		{"565 red", RGB565, color.RGBA{255, 0, 0, 255}, color.RGBA{255, 0, 0, 255}},
		{"565 truncates", RGB565, color.RGBA{0x84, 0x86, 0x0f, 255}, color.RGBA{0x84, 0x86, 0x08, 255}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := make([]byte, tc.f.BytesPerPixel())
			tc.f.Store(b, tc.in)
			assert.Equal(t, tc.want, tc.f.Load(b))
		})
	}
}

func TestNewFormat(t *testing.T) {
	argb1555, err := NewFormat(2, 0x7c00, 0x03e0, 0x001f, 0x8000)
	require.NoError(t, err)
	assert.True(t, argb1555.HasAlpha())

	b := make([]byte, 2)
	argb1555.Store(b, color.RGBA{255, 0, 255, 200})
	assert.Equal(t, color.RGBA{255, 0, 255, 255}, argb1555.Load(b))

	rgb888, err := NewFormat(3, 0xff0000, 0x00ff00, 0x0000ff, 0)
	require.NoError(t, err)
	fn, err := Select(rgb888, SrcAlpha, InvSrcAlpha)
	require.NoError(t, err)
	px := make([]byte, 3)
	rgb888.Store(px, color.RGBA{0, 0, 200, 255})
	fn(px, []color.RGBA{{200, 0, 0, 255}})
	assert.Equal(t, color.RGBA{200, 0, 0, 255}, rgb888.Load(px))

	_, err = NewFormat(5, 0xff, 0xff00, 0xff0000, 0)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewFormat(4, 0xff, 0xff, 0xff0000, 0)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewFormat(2, 0xf00f, 0x0f00, 0x00f0, 0)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewFormat(2, 0, 0, 0, 0xffff)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Select(Format{}, One, Zero)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseFactor(t *testing.T) {
	for f := Zero; f < numFactors; f++ {
		got, err := ParseFactor(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFactor("INV_SRC_ALPHA")
	require.NoError(t, err)
	assert.Equal(t, InvSrcAlpha, got)

	_, err = ParseFactor("saturate")
	assert.Error(t, err)
	_, err = Select(RGBA8888, numFactors, Zero)
	assert.Error(t, err)
}

func BenchmarkAlphaRGBA(b *testing.B) {
	fn, _ := Select(RGBA8888, SrcAlpha, InvSrcAlpha)
	src := make([]color.RGBA, 256)
	dst := make([]byte, 4*len(src))

	for b.Loop() {
		fn(dst, src)
	}
}

func BenchmarkGeneric565(b *testing.B) {
	fn, _ := Select(RGB565, SrcAlpha, InvSrcAlpha)
	src := make([]color.RGBA, 256)
	dst := make([]byte, 2*len(src))

	for b.Loop() {
		fn(dst, src)
	}
}
