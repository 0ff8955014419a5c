package rt

import (
	"encoding/binary"
	"math"
)

// Byte-buffer primitives over raw blobs and managed pointer cells.
// Multi-byte access is little-endian at arbitrary byte offsets.

// bufBytes returns the byte payload of a raw blob or managed pointer
// cell.
func (m *Machine) bufBytes(v Value) []byte {
	n := int(wordInfo(m.word0(v)))
	return m.heap.data[int(v)+8 : int(v)+8+n]
}

// MkBuffer allocates a zeroed raw blob of n bytes.
func (m *Machine) MkBuffer(n int) Value {
	off := m.allocate(8 + n)
	putWord(m.heap.data, off, mkWord0(KindRaw, uint64(n)))
	return Value(off)
}

// MkBufferNoGC is the guarded flavor of MkBuffer.
func (m *Machine) MkBufferNoGC(n int) Value {
	off := m.allocNoGC(8 + n)
	putWord(m.heap.data, off, mkWord0(KindRaw, uint64(n)))
	return Value(off)
}

// BufferLen returns the payload size of buffer v.
func (m *Machine) BufferLen(v Value) int {
	return int(wordInfo(m.word0(v)))
}

// Peek returns the byte at off in buffer v.
func (m *Machine) Peek(v Value, off int) byte {
	return m.bufBytes(v)[off]
}

// Poke stores b at off in buffer v.
func (m *Machine) Poke(v Value, off int, b byte) {
	m.bufBytes(v)[off] = b
}

// BufferSet fills n bytes of v starting at off with b.
func (m *Machine) BufferSet(v Value, off int, b byte, n int) {
	p := m.bufBytes(v)[off : off+n]
	for i := range p {
		p[i] = b
	}
}

// BufferCopy copies n bytes from src at soff to dst at doff. The two
// may be the same buffer with overlapping ranges.
func (m *Machine) BufferCopy(dst Value, doff int, src Value, soff, n int) {
	copy(m.bufBytes(dst)[doff:doff+n], m.bufBytes(src)[soff:soff+n])
}

func (m *Machine) Peek16(v Value, off int) uint16 {
	return binary.LittleEndian.Uint16(m.bufBytes(v)[off:])
}

func (m *Machine) Poke16(v Value, off int, w uint16) {
	binary.LittleEndian.PutUint16(m.bufBytes(v)[off:], w)
}

func (m *Machine) Peek32(v Value, off int) uint32 {
	return binary.LittleEndian.Uint32(m.bufBytes(v)[off:])
}

func (m *Machine) Poke32(v Value, off int, w uint32) {
	binary.LittleEndian.PutUint32(m.bufBytes(v)[off:], w)
}

func (m *Machine) Peek64(v Value, off int) uint64 {
	return binary.LittleEndian.Uint64(m.bufBytes(v)[off:])
}

func (m *Machine) Poke64(v Value, off int, w uint64) {
	binary.LittleEndian.PutUint64(m.bufBytes(v)[off:], w)
}

// PeekWord reads a pointer-sized word at off.
func (m *Machine) PeekWord(v Value, off int) uintptr {
	return uintptr(m.Peek64(v, off))
}

// PokeWord stores a pointer-sized word at off.
func (m *Machine) PokeWord(v Value, off int, w uintptr) {
	m.Poke64(v, off, uint64(w))
}

// PeekDouble reads an IEEE-754 double at off.
func (m *Machine) PeekDouble(v Value, off int) float64 {
	return math.Float64frombits(m.Peek64(v, off))
}

// PokeDouble stores an IEEE-754 double at off.
func (m *Machine) PokeDouble(v Value, off int, f float64) {
	m.Poke64(v, off, math.Float64bits(f))
}

// PeekSingle reads an IEEE-754 single at off.
func (m *Machine) PeekSingle(v Value, off int) float32 {
	return math.Float32frombits(m.Peek32(v, off))
}

// PokeSingle stores an IEEE-754 single at off.
func (m *Machine) PokeSingle(v Value, off int, f float32) {
	m.Poke32(v, off, math.Float32bits(f))
}
