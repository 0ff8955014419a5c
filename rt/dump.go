package rt

import (
	"fmt"
	"strings"
)

// DumpValue renders v for diagnostics: constructors as <tag>(...),
// strings quoted, slices with their offset, byte cells by size.
func (m *Machine) DumpValue(v Value) string {
	var b strings.Builder
	m.dump(&b, v)
	return b.String()
}

func (m *Machine) dump(b *strings.Builder, v Value) {
	if v == ValueNil {
		b.WriteString("nil")
		return
	}
	switch k := m.Kind(v); k {
	case KindInt:
		fmt.Fprintf(b, "%d", IntVal(v))
	case KindCon:
		fmt.Fprintf(b, "<%d>", m.ConTag(v))
		if n := m.ConArity(v); n > 0 {
			b.WriteByte('(')
			for i := 0; i < n; i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				m.dump(b, m.ConArg(v, i))
			}
			b.WriteByte(')')
		}
	case KindString:
		fmt.Fprintf(b, "%q", m.Str(v))
	case KindStrOffset:
		fmt.Fprintf(b, "%q+%d", m.Str(v), m.StrOffsetPos(v))
	case KindFloat:
		fmt.Fprintf(b, "%g", m.FloatVal(v))
	case KindBigInt:
		b.WriteString(m.BigIntVal(v).String())
	case KindBits8, KindBits16, KindBits32, KindBits64, KindPtr:
		fmt.Fprintf(b, "%#x", m.bitsWord(v))
	case KindManagedPtr, KindRaw:
		fmt.Fprintf(b, "<%d bytes>", int(wordInfo(m.word0(v))))
	case KindCData:
		b.WriteString("<cdata>")
	default:
		fatal("invalid cell tag %v during dump", k)
	}
}
