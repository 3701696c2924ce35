// Package vbuf describes per-vertex attribute buffers and the interpolation
// engine that writes clipped vertices into scratch storage.
package vbuf

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
)

// Slot identifies a logical vertex attribute.
type Slot uint8

// Named attribute slots. Slots from FirstUserSlot up to MaxSlots are free for
// callers.
const (
	Position Slot = iota
	TexCoord
	Normal
	Color
	Lightmap

	FirstUserSlot
)

// MaxSlots is the number of attribute slots a Set can hold.
const MaxSlots = 16

var slotNames = [...]string{"position", "texcoord", "normal", "color", "lightmap"}

func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return fmt.Sprintf("slot%d", uint8(s))
}

// Mask is a set of attribute slots.
type Mask uint16

// MaskOf returns the mask holding the given slots.
func MaskOf(slots ...Slot) Mask {
	var m Mask
	for _, s := range slots {
		m = m.With(s)
	}
	return m
}

// Has reports whether s is in the mask.
func (m Mask) Has(s Slot) bool { return m&(1<<s) != 0 }

// With returns m with s added.
func (m Mask) With(s Slot) Mask { return m | 1<<s }

// Without returns m with s removed.
func (m Mask) Without(s Slot) Mask { return m &^ (1 << s) }

// Intersect returns the slots present in both masks.
func (m Mask) Intersect(o Mask) Mask { return m & o }

// Count returns the number of slots in the mask.
func (m Mask) Count() int { return bits.OnesCount16(uint16(m)) }

// Slots iterates the slots of m in ascending order.
func (m Mask) Slots() iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for rest := uint16(m); rest != 0; rest &= rest - 1 {
			if !yield(Slot(bits.TrailingZeros16(rest))) {
				return
			}
		}
	}
}

// ErrBadBuffer is returned for a buffer whose layout cannot be read.
var ErrBadBuffer = errors.New("vbuf: bad buffer layout")

// Buffer is a borrowed view over one vertex attribute. Stride is counted in
// float32 elements; zero means tightly packed.
type Buffer struct {
	Data       []float32
	Components int
	Stride     int
}

// Packed returns a tightly packed buffer over data.
func Packed(data []float32, components int) Buffer {
	return Buffer{Data: data, Components: components}
}

func (b Buffer) stride() int {
	if b.Stride == 0 {
		return b.Components
	}
	return b.Stride
}

// Valid reports whether the buffer holds any attribute data.
func (b Buffer) Valid() bool { return b.Components > 0 }

// Validate checks the component count and stride.
func (b Buffer) Validate() error {
	if b.Components < 1 || b.Components > 4 {
		return fmt.Errorf("%w: %d components", ErrBadBuffer, b.Components)
	}
	if b.Stride != 0 && b.Stride < b.Components {
		return fmt.Errorf("%w: stride %d below %d components", ErrBadBuffer, b.Stride, b.Components)
	}
	return nil
}

// Len returns the number of whole vertices the buffer holds.
func (b Buffer) Len() int {
	if b.Components <= 0 || len(b.Data) < b.Components {
		return 0
	}
	return (len(b.Data)-b.Components)/b.stride() + 1
}

// At returns the stored components of vertex i.
func (b Buffer) At(i int) []float32 {
	off := i * b.stride()
	return b.Data[off : off+b.Components]
}

// Set holds one buffer per slot.
type Set struct {
	buffers [MaxSlots]Buffer
}

// Bind attaches buf to slot s.
func (s *Set) Bind(slot Slot, buf Buffer) { s.buffers[slot] = buf }

// Unbind detaches slot s.
func (s *Set) Unbind(slot Slot) { s.buffers[slot] = Buffer{} }

// Get returns the buffer bound to slot s.
func (s *Set) Get(slot Slot) Buffer { return s.buffers[slot] }

// Present returns the mask of bound slots.
func (s *Set) Present() Mask {
	var m Mask
	for i := range s.buffers {
		if s.buffers[i].Valid() {
			m = m.With(Slot(i))
		}
	}
	return m
}

// Active returns the bound slots that are also desired.
func (s *Set) Active(desired Mask) Mask { return s.Present().Intersect(desired) }

// Validate checks every buffer in mask.
func (s *Set) Validate(mask Mask) error {
	for slot := range mask.Slots() {
		if err := s.buffers[slot].Validate(); err != nil {
			return fmt.Errorf("%s: %w", slot, err)
		}
	}
	return nil
}

// VertexCount returns the length of the shortest buffer in mask.
func (s *Set) VertexCount(mask Mask) int {
	n := -1
	for slot := range mask.Slots() {
		if l := s.buffers[slot].Len(); n < 0 || l < n {
			n = l
		}
	}
	return max(n, 0)
}
