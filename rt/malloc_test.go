package rt

import "testing"

func TestAllocAlignment(t *testing.T) {
	m := Init(64, 4096, 0)
	for _, size := range []int{1, 2, 3, 5, 7, 8, 9, 15, 16, 17, 23, 64, 100} {
		before := m.HeapUsed()
		off := m.allocate(size)
		if off%8 != 0 {
			t.Errorf("allocate(%d): offset %d not 8-byte aligned", size, off)
		}
		wantChunk := align8(size) + chunkHeaderSize
		if got := int(getWord(m.heap.data, off-chunkHeaderSize)); got != wantChunk {
			t.Errorf("allocate(%d): chunk header = %d, want %d", size, got, wantChunk)
		}
		if used := m.HeapUsed() - before; used != wantChunk {
			t.Errorf("allocate(%d): consumed %d bytes, want %d", size, used, wantChunk)
		}
	}
}

func TestAllocZeroed(t *testing.T) {
	m := Init(64, 1024, 0)
	v := m.MkBuffer(64)
	m.BufferSet(v, 0, 0xff, 64)
	// Drop the buffer and collect; the next region must come up clean.
	m.GC()
	w := m.MkBuffer(64)
	for i := 0; i < 64; i++ {
		if m.Peek(w, i) != 0 {
			t.Fatalf("fresh buffer byte %d = %#x, want 0", i, m.Peek(w, i))
		}
	}
}

func TestAllocExactFit(t *testing.T) {
	m := Init(64, 256, 0)
	rem := m.HeapSize() - m.HeapUsed() - chunkHeaderSize
	m.allocate(rem)
	if got := m.Stats().Collections; got != 0 {
		t.Errorf("exact-fit allocation collected %d times, want 0", got)
	}
	if m.HeapUsed() != m.HeapSize() {
		t.Errorf("heap used = %d, want %d", m.HeapUsed(), m.HeapSize())
	}
}

func TestAllocOverflowCollects(t *testing.T) {
	m := Init(64, 256, 0)
	m.MkBuffer(64) // unrooted garbage
	rem := m.HeapSize() - m.HeapUsed() - chunkHeaderSize
	m.allocate(rem + 1)
	if got := m.Stats().Collections; got != 1 {
		t.Errorf("oversized allocation collected %d times, want 1", got)
	}
}

func TestSpace(t *testing.T) {
	m := Init(64, 256, 0)
	rem := m.HeapSize() - m.HeapUsed() - chunkHeaderSize
	if !m.Space(rem) {
		t.Errorf("Space(%d) = false on an empty %d byte heap", rem, m.HeapSize())
	}
	if m.Space(rem + 1) {
		t.Errorf("Space(%d) = true, want false", rem+1)
	}
}

func TestRequireAllocWindow(t *testing.T) {
	m := Init(64, 1024, 0)
	m.RequireAlloc(256)
	gcs := m.Stats().Collections
	a := m.MkStrNoGC("one")
	b := m.MkStrNoGC("two")
	c := m.MkConNoGC(300, a, b)
	if got := m.Stats().Collections; got != gcs {
		t.Fatalf("collection inside reservation window (%d -> %d)", gcs, got)
	}
	// Offsets obtained in the window are still valid at DoneAlloc.
	if got := m.Str(m.ConArg(c, 0)); got != "one" {
		t.Errorf("ConArg(0) = %q, want %q", got, "one")
	}
	if got := m.Str(m.ConArg(c, 1)); got != "two" {
		t.Errorf("ConArg(1) = %q, want %q", got, "two")
	}
	m.DoneAlloc()
}

func TestRequireAllocCollectsUpFront(t *testing.T) {
	m := Init(64, 512, 0)
	for m.Space(256 + chunkHeaderSize) {
		m.MkBuffer(32) // unrooted garbage
	}
	m.RequireAlloc(256)
	defer m.DoneAlloc()
	if got := m.Stats().Collections; got != 1 {
		t.Errorf("RequireAlloc collected %d times, want 1", got)
	}
	v := m.MkBufferNoGC(200)
	if m.BufferLen(v) != 200 {
		t.Errorf("BufferLen = %d, want 200", m.BufferLen(v))
	}
}

func TestStatsCountBytes(t *testing.T) {
	m := Init(64, 4096, 0)
	m.allocate(24)
	m.allocate(1)
	want := uint64(24+chunkHeaderSize) + uint64(8+chunkHeaderSize)
	if got := m.Stats().Allocations; got != want {
		t.Errorf("Allocations = %d, want %d", got, want)
	}
}
