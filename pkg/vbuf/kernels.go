package vbuf

// Unrolled copy and lerp kernels, one per (stored, output) component pair.
// Output index 3 pads with 1 and the other missing components pad with 0.

type copyFunc func(dst, a []float32)
type lerpFunc func(dst, a, b []float32, t float32)

func copy11(dst, a []float32) {
	_ = dst[0]
	dst[0] = a[0]
}

func lerp11(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[0]
	dst[0] = a[0]*u + b[0]*t
}

func copy12(dst, a []float32) {
	_ = dst[1]
	dst[0] = a[0]
	dst[1] = 0
}

func lerp12(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[1]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = 0
}

func copy13(dst, a []float32) {
	_ = dst[2]
	dst[0] = a[0]
	dst[1] = 0
	dst[2] = 0
}

func lerp13(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[2]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = 0
	dst[2] = 0
}

func copy14(dst, a []float32) {
	_ = dst[3]
	dst[0] = a[0]
	dst[1] = 0
	dst[2] = 0
	dst[3] = 1
}

func lerp14(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[3]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = 0
	dst[2] = 0
	dst[3] = 1
}

func copy21(dst, a []float32) {
	_ = dst[0]
	dst[0] = a[0]
}

func lerp21(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[0]
	dst[0] = a[0]*u + b[0]*t
}

func copy22(dst, a []float32) {
	_ = dst[1]
	dst[0] = a[0]
	dst[1] = a[1]
}

func lerp22(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[1]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
}

func copy23(dst, a []float32) {
	_ = dst[2]
	dst[0] = a[0]
	dst[1] = a[1]
	dst[2] = 0
}

func lerp23(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[2]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
	dst[2] = 0
}

func copy24(dst, a []float32) {
	_ = dst[3]
	dst[0] = a[0]
	dst[1] = a[1]
	dst[2] = 0
	dst[3] = 1
}

func lerp24(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[3]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
	dst[2] = 0
	dst[3] = 1
}

func copy31(dst, a []float32) {
	_ = dst[0]
	dst[0] = a[0]
}

func lerp31(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[0]
	dst[0] = a[0]*u + b[0]*t
}

func copy32(dst, a []float32) {
	_ = dst[1]
	dst[0] = a[0]
	dst[1] = a[1]
}

func lerp32(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[1]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
}

func copy33(dst, a []float32) {
	_ = dst[2]
	dst[0] = a[0]
	dst[1] = a[1]
	dst[2] = a[2]
}

func lerp33(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[2]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
	dst[2] = a[2]*u + b[2]*t
}

func copy34(dst, a []float32) {
	_ = dst[3]
	dst[0] = a[0]
	dst[1] = a[1]
	dst[2] = a[2]
	dst[3] = 1
}

func lerp34(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[3]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
	dst[2] = a[2]*u + b[2]*t
	dst[3] = 1
}

func copy41(dst, a []float32) {
	_ = dst[0]
	dst[0] = a[0]
}

func lerp41(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[0]
	dst[0] = a[0]*u + b[0]*t
}

func copy42(dst, a []float32) {
	_ = dst[1]
	dst[0] = a[0]
	dst[1] = a[1]
}

func lerp42(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[1]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
}

func copy43(dst, a []float32) {
	_ = dst[2]
	dst[0] = a[0]
	dst[1] = a[1]
	dst[2] = a[2]
}

func lerp43(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[2]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
	dst[2] = a[2]*u + b[2]*t
}

func copy44(dst, a []float32) {
	_ = dst[3]
	dst[0] = a[0]
	dst[1] = a[1]
	dst[2] = a[2]
	dst[3] = a[3]
}

func lerp44(dst, a, b []float32, t float32) {
	u := 1 - t
	_ = dst[3]
	dst[0] = a[0]*u + b[0]*t
	dst[1] = a[1]*u + b[1]*t
	dst[2] = a[2]*u + b[2]*t
	dst[3] = a[3]*u + b[3]*t
}

var copyKernels = [4][4]copyFunc{
	{copy11, copy12, copy13, copy14},
	{copy21, copy22, copy23, copy24},
	{copy31, copy32, copy33, copy34},
	{copy41, copy42, copy43, copy44},
}

var lerpKernels = [4][4]lerpFunc{
	{lerp11, lerp12, lerp13, lerp14},
	{lerp21, lerp22, lerp23, lerp24},
	{lerp31, lerp32, lerp33, lerp34},
	{lerp41, lerp42, lerp43, lerp44},
}
