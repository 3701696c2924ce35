package vbuf

import (
	"fmt"
	"iter"
)

// Topology describes how an index stream forms triangles.
type Topology uint8

const (
	// List takes three indices per triangle.
	List Topology = iota
	// Strip shares the previous two indices, alternating winding.
	Strip
	// Fan shares the first index and the previous one.
	Fan
	// Quad takes four indices and emits (0,1,2) then (0,2,3).
	Quad
)

func (t Topology) String() string {
	switch t {
	case List:
		return "list"
	case Strip:
		return "strip"
	case Fan:
		return "fan"
	case Quad:
		return "quad"
	}
	return fmt.Sprintf("topology(%d)", uint8(t))
}

// Triangles returns how many triangles n indices produce.
func (t Topology) Triangles(n int) int {
	switch t {
	case List:
		return n / 3
	case Strip, Fan:
		return max(n-2, 0)
	case Quad:
		return n / 4 * 2
	}
	return 0
}

// Each yields the corners of every triangle indices form, in the order and
// winding the triangle walker emits them. Odd strip triangles swap their first
// two corners so that the whole strip shares one winding.
func (t Topology) Each(indices []uint32) iter.Seq2[int, [3]uint32] {
	return func(yield func(int, [3]uint32) bool) {
		for k := range t.Triangles(len(indices)) {
			var tri [3]uint32
			switch t {
			case List:
				tri = [3]uint32{indices[3*k], indices[3*k+1], indices[3*k+2]}
			case Strip:
				tri = [3]uint32{indices[k], indices[k+1], indices[k+2]}
				if k%2 == 1 {
					tri[0], tri[1] = tri[1], tri[0]
				}
			case Fan:
				tri = [3]uint32{indices[0], indices[k+1], indices[k+2]}
			case Quad:
				q := indices[k/2*4:]
				if k%2 == 0 {
					tri = [3]uint32{q[0], q[1], q[2]}
				} else {
					tri = [3]uint32{q[0], q[2], q[3]}
				}
			}
			if !yield(k, tri) {
				return
			}
		}
	}
}
