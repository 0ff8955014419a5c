package rt

// The C heap tracks externally owned payloads whose lifetimes follow
// managed-heap reachability. Each entry is referenced from at most one
// handle cell (KindCData) by id; the collector marks entries whose
// handles it traces and the post-collection sweep runs the finalizer
// of everything left unmarked. Machine teardown finalizes the rest.

// A CDataFinalizer releases an external payload. Finalizers run on
// whichever goroutine triggered the collection and must not allocate
// on the managed heap.
type CDataFinalizer func(data []byte)

type cdataItem struct {
	next *cdataItem
	id   uint64
	data []byte
	fin  CDataFinalizer
	live bool
}

type cheap struct {
	head   *cdataItem
	byID   map[uint64]*cdataItem
	nextID uint64
}

func (c *cheap) init() {
	c.byID = make(map[uint64]*cdataItem)
}

func (c *cheap) insert(data []byte, fin CDataFinalizer) uint64 {
	c.nextID++
	it := &cdataItem{next: c.head, id: c.nextID, data: data, fin: fin, live: true}
	c.head = it
	c.byID[it.id] = it
	return it.id
}

func (c *cheap) unmarkAll() {
	for it := c.head; it != nil; it = it.next {
		it.live = false
	}
}

func (c *cheap) mark(id uint64) {
	if it := c.byID[id]; it != nil {
		it.live = true
	}
}

// sweep unlinks and finalizes every unmarked entry.
func (c *cheap) sweep() {
	p := &c.head
	for *p != nil {
		it := *p
		if it.live {
			p = &it.next
			continue
		}
		*p = it.next
		delete(c.byID, it.id)
		if it.fin != nil {
			it.fin(it.data)
		}
	}
}

// releaseAll finalizes every entry, live or not. Used at teardown.
func (c *cheap) releaseAll() {
	for it := c.head; it != nil; it = it.next {
		if it.fin != nil {
			it.fin(it.data)
		}
	}
	c.head = nil
	c.byID = make(map[uint64]*cdataItem)
}

// CDataAllocate allocates a fresh size-byte payload on the C heap and
// returns a handle cell referencing it. The finalizer runs when the
// collector finds the handle unreachable, or at machine teardown.
func (m *Machine) CDataAllocate(size int, fin CDataFinalizer) Value {
	return m.CDataManage(make([]byte, size), fin)
}

// CDataManage registers an externally owned payload on the C heap and
// returns a handle cell referencing it. The handle cell is allocated
// before the entry is linked so a collection triggered by the
// allocation cannot sweep the entry away.
func (m *Machine) CDataManage(data []byte, fin CDataFinalizer) Value {
	v := m.mkBits(KindCData, 0)
	id := m.cheap.insert(data, fin)
	putWord(m.heap.data, int(v)+8, id)
	return v
}

// CDataManageNoGC is the guarded flavor of CDataManage.
func (m *Machine) CDataManageNoGC(data []byte, fin CDataFinalizer) Value {
	id := m.cheap.insert(data, fin)
	return m.mkBitsNoGC(KindCData, id)
}

// CDataBytes returns the payload behind handle v.
func (m *Machine) CDataBytes(v Value) []byte {
	it := m.cheap.byID[getWord(m.heap.data, int(v)+8)]
	if it == nil {
		return nil
	}
	return it.data
}
