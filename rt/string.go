package rt

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

// String primitives. Strings are immutable UTF-8 byte cells; a slice
// cell views a suffix of a string cell without copying bytes.
// Primitives that build new strings copy the operand bytes into Go
// strings before allocating, so a collection triggered by the
// allocation cannot move them mid-read.

// Str returns the contents of a string or slice cell as a Go string.
func (m *Machine) Str(v Value) string {
	return string(m.StrBytes(v))
}

// StrBytes returns the bytes of a string or slice cell, excluding the
// NUL. The slice aliases the heap region: it is invalidated by the
// next collection.
func (m *Machine) StrBytes(v Value) []byte {
	if wordKind(m.word0(v)) == KindStrOffset {
		b := m.strCellBytes(m.StrOffsetRoot(v))
		pos := m.StrOffsetPos(v)
		if pos > len(b) {
			pos = len(b)
		}
		return b[pos:]
	}
	return m.strCellBytes(v)
}

// Concat returns a new string cell holding a followed by b.
func (m *Machine) Concat(a, b Value) Value {
	return m.MkStr(m.Str(a) + m.Str(b))
}

// StrCompare compares two strings lexicographically by byte, returning
// -1, 0 or +1.
func (m *Machine) StrCompare(a, b Value) int {
	return bytes.Compare(m.StrBytes(a), m.StrBytes(b))
}

// StrLen returns the length of v in code points.
func (m *Machine) StrLen(v Value) int {
	return utf8.RuneCount(m.StrBytes(v))
}

// StrHead returns the first code point of v, or 0 for the empty
// string.
func (m *Machine) StrHead(v Value) rune {
	b := m.StrBytes(v)
	if len(b) == 0 {
		return 0
	}
	r, _ := utf8.DecodeRune(b)
	return r
}

// StrTail returns the suffix of v after its first code point, as a
// slice cell. The slice construction flattens, so the result
// references v's underlying string cell directly however many tails
// deep the chain goes.
func (m *Machine) StrTail(v Value) Value {
	_, size := utf8.DecodeRune(m.StrBytes(v))
	return m.MkStrOffset(v, size)
}

// StrSub returns length code points of v starting at code point start,
// as a new string cell.
func (m *Machine) StrSub(v Value, start, length int) Value {
	b := m.StrBytes(v)
	from := 0
	for ; start > 0 && from < len(b); start-- {
		_, size := utf8.DecodeRune(b[from:])
		from += size
	}
	to := from
	for ; length > 0 && to < len(b); length-- {
		_, size := utf8.DecodeRune(b[to:])
		to += size
	}
	return m.MkStr(string(b[from:to]))
}

// StrCons returns a new string cell with code point c prepended to s.
func (m *Machine) StrCons(c rune, s Value) Value {
	return m.MkStr(string(c) + m.Str(s))
}

// StrIndex returns the code point at index i, or 0 past the end.
func (m *Machine) StrIndex(v Value, i int) rune {
	b := m.StrBytes(v)
	for ; i > 0 && len(b) > 0; i-- {
		_, size := utf8.DecodeRune(b)
		b = b[size:]
	}
	if len(b) == 0 {
		return 0
	}
	r, _ := utf8.DecodeRune(b)
	return r
}

// StrRev returns v reversed code point by code point.
func (m *Machine) StrRev(v Value) Value {
	b := m.StrBytes(v)
	out := make([]byte, len(b))
	pos := len(out)
	for len(b) > 0 {
		_, size := utf8.DecodeRune(b)
		pos -= size
		copy(out[pos:], b[:size])
		b = b[size:]
	}
	return m.MkStr(string(out))
}

// IntToStr formats i in decimal as a new string cell.
func (m *Machine) IntToStr(i int64) Value {
	return m.MkStr(strconv.FormatInt(i, 10))
}

// StrToInt parses v as a decimal integer. A malformed string yields
// zero.
func (m *Machine) StrToInt(v Value) int64 {
	n, err := strconv.ParseInt(m.Str(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FloatToStr formats f in the shortest form that round-trips.
func (m *Machine) FloatToStr(f float64) Value {
	return m.MkStr(strconv.FormatFloat(f, 'g', -1, 64))
}

// StrToFloat parses v as a float. A malformed string yields zero.
func (m *Machine) StrToFloat(v Value) float64 {
	f, err := strconv.ParseFloat(m.Str(v), 64)
	if err != nil {
		return 0
	}
	return f
}
