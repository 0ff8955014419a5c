package rt

import (
	"math"
	"math/big"
	"testing"
)

func TestIntEncoding(t *testing.T) {
	for _, i := range []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40), (1 << 62) - 1, -(1 << 62)} {
		v := MkInt(i)
		if !IsInt(v) {
			t.Errorf("MkInt(%d): IsInt = false", i)
		}
		if got := IntVal(v); got != i {
			t.Errorf("IntVal(MkInt(%d)) = %d", i, got)
		}
	}
}

func TestNullaryInterning(t *testing.T) {
	a := Init(64, 1024, 0)
	b := Init(64, 1024, 0)
	for _, tag := range []uint32{0, 1, 42, 255} {
		va := a.MkCon(tag)
		vb := b.MkCon(tag)
		if va != vb {
			t.Errorf("nullary tag %d: machines disagree (%#x vs %#x)", tag, va, vb)
		}
		if va != a.MkCon(tag) {
			t.Errorf("nullary tag %d: not interned within a machine", tag)
		}
		if got := a.Kind(va); got != KindCon {
			t.Errorf("Kind(nullary %d) = %v, want con", tag, got)
		}
		if got := a.ConTag(va); got != tag {
			t.Errorf("ConTag(nullary) = %d, want %d", got, tag)
		}
		if got := a.ConArity(va); got != 0 {
			t.Errorf("ConArity(nullary) = %d, want 0", got)
		}
	}
	// A large tag has no interned encoding and allocates.
	v := a.MkCon(256)
	if v == a.MkCon(256) {
		t.Error("tag 256 with arity 0 should allocate distinct cells")
	}
	if a.ConTag(v) != 256 || a.ConArity(v) != 0 {
		t.Errorf("tag 256 cell: tag %d arity %d", a.ConTag(v), a.ConArity(v))
	}
}

func TestConCell(t *testing.T) {
	m := Init(64, 4096, 0)
	x := m.MkStr("left")
	y := m.MkStr("right")
	v := m.MkCon(7, x, y, MkInt(-3))
	if got := m.Kind(v); got != KindCon {
		t.Fatalf("Kind = %v, want con", got)
	}
	if m.ConTag(v) != 7 || m.ConArity(v) != 3 {
		t.Fatalf("tag %d arity %d, want 7/3", m.ConTag(v), m.ConArity(v))
	}
	if got := m.Str(m.ConArg(v, 0)); got != "left" {
		t.Errorf("arg 0 = %q", got)
	}
	if got := m.Str(m.ConArg(v, 1)); got != "right" {
		t.Errorf("arg 1 = %q", got)
	}
	if got := IntVal(m.ConArg(v, 2)); got != -3 {
		t.Errorf("arg 2 = %d", got)
	}
	m.SetConArg(v, 2, MkInt(9))
	if got := IntVal(m.ConArg(v, 2)); got != 9 {
		t.Errorf("arg 2 after SetConArg = %d", got)
	}
}

func TestFloatCell(t *testing.T) {
	m := Init(64, 4096, 0)
	for _, f := range []float64{0, 1.5, -2.25, math.Inf(1), math.Inf(-1), math.Copysign(0, -1)} {
		v := m.MkFloat(f)
		if m.Kind(v) != KindFloat {
			t.Fatalf("Kind(MkFloat(%v)) = %v", f, m.Kind(v))
		}
		if got := m.FloatVal(v); math.Float64bits(got) != math.Float64bits(f) {
			t.Errorf("FloatVal(MkFloat(%v)) = %v", f, got)
		}
	}
	// NaN payload bits survive.
	v := m.MkFloat(math.NaN())
	if !math.IsNaN(m.FloatVal(v)) {
		t.Error("NaN did not round-trip")
	}
}

func TestWordCells(t *testing.T) {
	m := Init(64, 4096, 0)
	if got := m.Bits8Val(m.MkBits8(0xab)); got != 0xab {
		t.Errorf("bits8 = %#x", got)
	}
	if got := m.Bits16Val(m.MkBits16(0xabcd)); got != 0xabcd {
		t.Errorf("bits16 = %#x", got)
	}
	if got := m.Bits32Val(m.MkBits32(0xdeadbeef)); got != 0xdeadbeef {
		t.Errorf("bits32 = %#x", got)
	}
	if got := m.Bits64Val(m.MkBits64(0x0123456789abcdef)); got != 0x0123456789abcdef {
		t.Errorf("bits64 = %#x", got)
	}
	kinds := []struct {
		v    Value
		want Kind
	}{
		{m.MkBits8(1), KindBits8},
		{m.MkBits16(1), KindBits16},
		{m.MkBits32(1), KindBits32},
		{m.MkBits64(1), KindBits64},
		{m.MkPtr(0x1000), KindPtr},
	}
	for _, k := range kinds {
		if got := m.Kind(k.v); got != k.want {
			t.Errorf("Kind = %v, want %v", got, k.want)
		}
	}
}

func TestManagedAndRawCells(t *testing.T) {
	m := Init(64, 4096, 0)
	src := []byte{1, 2, 3, 4, 5}
	v := m.MkManaged(src)
	src[0] = 99 // the cell owns its copy
	got := m.ManagedBytes(v)
	if len(got) != 5 || got[0] != 1 || got[4] != 5 {
		t.Errorf("ManagedBytes = %v", got)
	}
	r := m.MkRaw([]byte("blob"))
	if m.Kind(r) != KindRaw || string(m.RawBytes(r)) != "blob" {
		t.Errorf("raw cell = %v %q", m.Kind(r), m.RawBytes(r))
	}
}

func TestBigIntCell(t *testing.T) {
	m := Init(64, 4096, 0)
	cases := []string{"0", "1", "-1", "170141183460469231731687303715884105727", "-340282366920938463463374607431768211456"}
	for _, s := range cases {
		x, _ := new(big.Int).SetString(s, 10)
		v := m.MkBigInt(x)
		if m.Kind(v) != KindBigInt {
			t.Fatalf("Kind = %v", m.Kind(v))
		}
		if got := m.BigIntVal(v); got.Cmp(x) != 0 {
			t.Errorf("BigIntVal = %v, want %v", got, x)
		}
	}
}

func TestDumpValue(t *testing.T) {
	m := Init(64, 4096, 0)
	v := m.MkCon(300, MkInt(-4), m.MkStr("hi"), m.MkCon(2))
	if got := m.DumpValue(v); got != `<300>(-4, "hi", <2>)` {
		t.Errorf("DumpValue = %s", got)
	}
	if got := m.DumpValue(ValueNil); got != "nil" {
		t.Errorf("DumpValue(nil) = %s", got)
	}
}

func TestStackOps(t *testing.T) {
	m := Init(16, 1024, 0)
	m.Push(MkInt(1))
	m.Push(MkInt(2))
	if m.Top() != 2 {
		t.Fatalf("Top = %d", m.Top())
	}
	if got := IntVal(m.Pop()); got != 2 {
		t.Errorf("Pop = %d", got)
	}
	m.SetSlot(0, MkInt(7))
	if got := IntVal(m.Slot(0)); got != 7 {
		t.Errorf("Slot(0) = %d", got)
	}
	m.SetBase(1)
	if m.Base() != 1 {
		t.Errorf("Base = %d", m.Base())
	}
}
