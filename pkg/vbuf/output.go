package vbuf

// Output interpolates one source attribute into caller-supplied scratch.
// The copy and lerp kernels are picked from the (stored, output) component
// table once, when the output is bound, so the per-vertex calls never branch
// on component counts.
//
// Writing more vertices than the scratch holds panics.
type Output struct {
	src   Buffer
	dst   []float32
	width int
	n     int

	copy   copyFunc
	lerp   lerpFunc
	wide   lerpFunc // stored -> 4, for the two Lerp3 edge samples
	narrow lerpFunc // 4 -> width, for the final Lerp3 blend

	edge [8]float32
}

// Bind attaches src and a scratch region to the output, which then produces
// vertices of width components each. The write cursor is reset.
func (o *Output) Bind(src Buffer, dst []float32, width int) {
	ni := src.Components - 1
	no := width - 1
	o.src = src
	o.dst = dst[:len(dst):len(dst)]
	o.width = width
	o.n = 0
	o.copy = copyKernels[ni][no]
	o.lerp = lerpKernels[ni][no]
	o.wide = lerpKernels[ni][3]
	o.narrow = lerpKernels[3][no]
}

// Reset rewinds the write cursor.
func (o *Output) Reset() { o.n = 0 }

// Len returns the number of vertices written since the last reset.
func (o *Output) Len() int { return o.n }

// Width returns the output component count.
func (o *Output) Width() int { return o.width }

// Source returns the bound source buffer.
func (o *Output) Source() Buffer { return o.src }

// Vertex returns the components of output vertex i.
func (o *Output) Vertex(i int) []float32 {
	return o.dst[i*o.width : (i+1)*o.width]
}

// Buffer returns a view over the vertices written so far.
func (o *Output) Buffer() Buffer {
	return Buffer{Data: o.dst[:o.n*o.width], Components: o.width}
}

func (o *Output) next() []float32 {
	off := o.n * o.width
	v := o.dst[off : off+o.width]
	o.n++
	return v
}

// Copy writes source vertex idx.
func (o *Output) Copy(idx int) {
	o.copy(o.next(), o.src.At(idx))
}

// Lerp writes the interpolation between source vertices idx1 and idx2 at t.
func (o *Output) Lerp(idx1, idx2 int, t float32) {
	o.lerp(o.next(), o.src.At(idx1), o.src.At(idx2), t)
}

// Lerp3 samples edge (idx1,idx2) at t1 and edge (idx3,idx4) at t2, then
// writes the interpolation between the two samples at t.
func (o *Output) Lerp3(idx1, idx2 int, t1 float32, idx3, idx4 int, t2 float32, t float32) {
	p, q := o.edge[:4], o.edge[4:]
	o.wide(p, o.src.At(idx1), o.src.At(idx2), t1)
	o.wide(q, o.src.At(idx3), o.src.At(idx4), t2)
	o.narrow(o.next(), p, q, t)
}

// Write stores an already computed value verbatim.
func (o *Output) Write(raw [4]float32) {
	copy(o.next(), raw[:o.width])
}
