package rt

import (
	"bytes"
	"math"
	"math/big"
)

// Cell layout. A cell begins with word0 at its offset:
//
//	word0 = kind (low 8 bits) | info (high 56 bits)
//
// followed by a kind-specific payload. Constructors pack tag and arity
// into info; strings, managed pointers, raw blobs and bigints keep
// their byte length there and place the bytes immediately after word0
// so one allocation carries the whole cell and the collector moves it
// in a single block copy.
func mkWord0(k Kind, info uint64) uint64 { return uint64(k) | info<<8 }

func wordKind(w uint64) Kind   { return Kind(w & 0xff) }
func wordInfo(w uint64) uint64 { return w >> 8 }

func (m *Machine) word0(v Value) uint64 { return getWord(m.heap.data, int(v)) }

// conInfo packs a constructor tag and arity.
func conInfo(tag uint32, arity int) uint64 {
	return uint64(tag)<<16 | uint64(uint16(arity))
}

// Kind reports the kind of v. Inline integers report KindInt; interned
// nullary constructors report KindCon like any heap constructor cell.
func (m *Machine) Kind(v Value) Kind {
	switch {
	case IsInt(v):
		return KindInt
	case isNullary(v):
		return KindCon
	case !isCell(v):
		return KindCon // nil behaves as an empty constructor
	}
	return wordKind(m.word0(v))
}

// Constructor cells.

// MkCon allocates a constructor cell with the given tag and children.
// A zero-arity constructor with a small tag is returned as the interned
// immediate encoding: no allocation, and every reference to it across
// all machines is the same word. May collect; the children are staged
// on the value stack across the allocation so a collection relocates
// them with the rest of the roots.
func (m *Machine) MkCon(tag uint32, args ...Value) Value {
	if len(args) == 0 && tag < nullaryTags {
		return mkNullary(tag)
	}
	save := m.top
	for _, a := range args {
		m.Push(a)
	}
	off := m.allocate(8 + 8*len(args))
	putWord(m.heap.data, off, mkWord0(KindCon, conInfo(tag, len(args))))
	for i := range args {
		putWord(m.heap.data, off+8+8*i, uint64(m.valstack[save+i]))
	}
	m.SetTop(save)
	return Value(off)
}

// MkConNoGC is the guarded flavor of MkCon for use inside a
// RequireAlloc window: it never collects and never takes the
// allocation lock, so cell offsets obtained earlier in the window stay
// valid.
func (m *Machine) MkConNoGC(tag uint32, args ...Value) Value {
	if len(args) == 0 && tag < nullaryTags {
		return mkNullary(tag)
	}
	off := m.allocNoGC(8 + 8*len(args))
	putWord(m.heap.data, off, mkWord0(KindCon, conInfo(tag, len(args))))
	for i, a := range args {
		putWord(m.heap.data, off+8+8*i, uint64(a))
	}
	return Value(off)
}

// ConTag returns the constructor tag of v.
func (m *Machine) ConTag(v Value) uint32 {
	if isNullary(v) {
		return nullaryTag(v)
	}
	return uint32(wordInfo(m.word0(v)) >> 16)
}

// ConArity returns the number of children of v.
func (m *Machine) ConArity(v Value) int {
	if isNullary(v) {
		return 0
	}
	return int(uint16(wordInfo(m.word0(v))))
}

// ConArg returns child i of constructor v.
func (m *Machine) ConArg(v Value, i int) Value {
	return Value(getWord(m.heap.data, int(v)+8+8*i))
}

// SetConArg overwrites child i of constructor v.
func (m *Machine) SetConArg(v Value, i int, c Value) {
	putWord(m.heap.data, int(v)+8+8*i, uint64(c))
}

// String cells.

// MkStr allocates a string cell holding a copy of s. The bytes live
// inline after the header, NUL-terminated. May collect.
func (m *Machine) MkStr(s string) Value {
	off := m.allocate(8 + len(s) + 1)
	m.fillStr(off, s)
	return Value(off)
}

// MkStrNoGC is the guarded flavor of MkStr.
func (m *Machine) MkStrNoGC(s string) Value {
	off := m.allocNoGC(8 + len(s) + 1)
	m.fillStr(off, s)
	return Value(off)
}

func (m *Machine) fillStr(off int, s string) {
	putWord(m.heap.data, off, mkWord0(KindString, uint64(len(s))))
	copy(m.heap.data[off+8:], s)
	m.heap.data[off+8+len(s)] = 0
}

// strCellBytes returns the byte payload of a string cell, excluding
// the NUL. The slice aliases the heap region: it is invalidated by the
// next collection.
func (m *Machine) strCellBytes(v Value) []byte {
	n := int(wordInfo(m.word0(v)))
	return m.heap.data[int(v)+8 : int(v)+8+n]
}

// String-offset (slice) cells.

// MkStrOffset allocates a slice cell referencing a suffix of root at
// the given byte offset. If root is itself a slice the chain is
// flattened: the new cell references the underlying string cell and
// the offsets are summed, so a slice's root is always a string cell
// and walking it takes one hop. May collect.
func (m *Machine) MkStrOffset(root Value, offset int) Value {
	if m.Kind(root) == KindStrOffset {
		offset += int(getWord(m.heap.data, int(root)+16))
		root = Value(getWord(m.heap.data, int(root)+8))
	}
	m.Push(root)
	off := m.allocate(24)
	root = m.Pop()
	m.fillStrOffset(off, root, offset)
	return Value(off)
}

// MkStrOffsetNoGC is the guarded flavor of MkStrOffset.
func (m *Machine) MkStrOffsetNoGC(root Value, offset int) Value {
	if m.Kind(root) == KindStrOffset {
		offset += int(getWord(m.heap.data, int(root)+16))
		root = Value(getWord(m.heap.data, int(root)+8))
	}
	off := m.allocNoGC(24)
	m.fillStrOffset(off, root, offset)
	return Value(off)
}

func (m *Machine) fillStrOffset(off int, root Value, offset int) {
	putWord(m.heap.data, off, mkWord0(KindStrOffset, 0))
	putWord(m.heap.data, off+8, uint64(root))
	putWord(m.heap.data, off+16, uint64(offset))
}

// StrOffsetRoot returns the root string cell of slice v.
func (m *Machine) StrOffsetRoot(v Value) Value {
	return Value(getWord(m.heap.data, int(v)+8))
}

// StrOffsetPos returns the byte offset of slice v into its root.
func (m *Machine) StrOffsetPos(v Value) int {
	return int(getWord(m.heap.data, int(v)+16))
}

// Float cells.

func (m *Machine) MkFloat(f float64) Value {
	off := m.allocate(16)
	putWord(m.heap.data, off, mkWord0(KindFloat, 0))
	putWord(m.heap.data, off+8, math.Float64bits(f))
	return Value(off)
}

func (m *Machine) MkFloatNoGC(f float64) Value {
	off := m.allocNoGC(16)
	putWord(m.heap.data, off, mkWord0(KindFloat, 0))
	putWord(m.heap.data, off+8, math.Float64bits(f))
	return Value(off)
}

// FloatVal extracts the float payload of v, bit-exact.
func (m *Machine) FloatVal(v Value) float64 {
	return math.Float64frombits(getWord(m.heap.data, int(v)+8))
}

// Word cells. The payload sits in one word regardless of width; the
// kind records the width for copy and dump.

func (m *Machine) mkBits(k Kind, w uint64) Value {
	off := m.allocate(16)
	putWord(m.heap.data, off, mkWord0(k, 0))
	putWord(m.heap.data, off+8, w)
	return Value(off)
}

func (m *Machine) mkBitsNoGC(k Kind, w uint64) Value {
	off := m.allocNoGC(16)
	putWord(m.heap.data, off, mkWord0(k, 0))
	putWord(m.heap.data, off+8, w)
	return Value(off)
}

func (m *Machine) MkBits8(b uint8) Value   { return m.mkBits(KindBits8, uint64(b)) }
func (m *Machine) MkBits16(b uint16) Value { return m.mkBits(KindBits16, uint64(b)) }
func (m *Machine) MkBits32(b uint32) Value { return m.mkBits(KindBits32, uint64(b)) }
func (m *Machine) MkBits64(b uint64) Value { return m.mkBits(KindBits64, b) }

func (m *Machine) MkBits8NoGC(b uint8) Value   { return m.mkBitsNoGC(KindBits8, uint64(b)) }
func (m *Machine) MkBits16NoGC(b uint16) Value { return m.mkBitsNoGC(KindBits16, uint64(b)) }
func (m *Machine) MkBits32NoGC(b uint32) Value { return m.mkBitsNoGC(KindBits32, uint64(b)) }
func (m *Machine) MkBits64NoGC(b uint64) Value { return m.mkBitsNoGC(KindBits64, b) }

func (m *Machine) bitsWord(v Value) uint64 { return getWord(m.heap.data, int(v)+8) }

func (m *Machine) Bits8Val(v Value) uint8   { return uint8(m.bitsWord(v)) }
func (m *Machine) Bits16Val(v Value) uint16 { return uint16(m.bitsWord(v)) }
func (m *Machine) Bits32Val(v Value) uint32 { return uint32(m.bitsWord(v)) }
func (m *Machine) Bits64Val(v Value) uint64 { return m.bitsWord(v) }

// Opaque pointer cells hold a foreign address whose lifetime the
// runtime does not manage.

func (m *Machine) MkPtr(p uintptr) Value {
	return m.mkBits(KindPtr, uint64(p))
}

func (m *Machine) MkPtrNoGC(p uintptr) Value {
	return m.mkBitsNoGC(KindPtr, uint64(p))
}

func (m *Machine) PtrVal(v Value) uintptr {
	return uintptr(getWord(m.heap.data, int(v)+8))
}

// Managed pointer cells own a byte payload copied in at construction.

func (m *Machine) MkManaged(b []byte) Value {
	b = bytes.Clone(b)
	off := m.allocate(8 + len(b))
	m.fillBytesCell(off, KindManagedPtr, b)
	return Value(off)
}

func (m *Machine) MkManagedNoGC(b []byte) Value {
	off := m.allocNoGC(8 + len(b))
	m.fillBytesCell(off, KindManagedPtr, b)
	return Value(off)
}

// ManagedBytes returns the owned payload of v. The slice aliases the
// heap region: it is invalidated by the next collection.
func (m *Machine) ManagedBytes(v Value) []byte {
	n := int(wordInfo(m.word0(v)))
	return m.heap.data[int(v)+8 : int(v)+8+n]
}

// Raw data blobs hold arbitrary bytes for internal bookkeeping and the
// generic buffer API.

func (m *Machine) MkRaw(b []byte) Value {
	b = bytes.Clone(b)
	off := m.allocate(8 + len(b))
	m.fillBytesCell(off, KindRaw, b)
	return Value(off)
}

func (m *Machine) MkRawNoGC(b []byte) Value {
	off := m.allocNoGC(8 + len(b))
	m.fillBytesCell(off, KindRaw, b)
	return Value(off)
}

// RawBytes returns the payload of blob v. The slice aliases the heap
// region: it is invalidated by the next collection.
func (m *Machine) RawBytes(v Value) []byte {
	n := int(wordInfo(m.word0(v)))
	return m.heap.data[int(v)+8 : int(v)+8+n]
}

func (m *Machine) fillBytesCell(off int, k Kind, b []byte) {
	putWord(m.heap.data, off, mkWord0(k, uint64(len(b))))
	copy(m.heap.data[off+8:], b)
}

// Bigint cells store the sign and magnitude inline so the collector
// moves them like any byte cell; the math/big value is rebuilt on
// access.

func (m *Machine) MkBigInt(x *big.Int) Value {
	b := bigIntBytes(x)
	off := m.allocate(8 + len(b))
	m.fillBytesCell(off, KindBigInt, b)
	return Value(off)
}

func (m *Machine) MkBigIntNoGC(x *big.Int) Value {
	b := bigIntBytes(x)
	off := m.allocNoGC(8 + len(b))
	m.fillBytesCell(off, KindBigInt, b)
	return Value(off)
}

func bigIntBytes(x *big.Int) []byte {
	b := make([]byte, 1+len(x.Bytes()))
	if x.Sign() < 0 {
		b[0] = 1
	}
	copy(b[1:], x.Bytes())
	return b
}

// BigIntVal rebuilds the math/big value of v.
func (m *Machine) BigIntVal(v Value) *big.Int {
	n := int(wordInfo(m.word0(v)))
	b := m.heap.data[int(v)+8 : int(v)+8+n]
	x := new(big.Int).SetBytes(b[1:])
	if b[0] != 0 {
		x.Neg(x)
	}
	return x
}
