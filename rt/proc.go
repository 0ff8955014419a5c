package rt

import (
	"os"
	"sync"
	"sync/atomic"
)

// A Machine is a self-contained execution context. It owns a value
// stack, a managed heap, a finalizer-tracked auxiliary heap, and a
// message inbox. A value reference held by one machine never points
// into another machine's heap; values cross machines only through
// CopyTo and Send.
//
// Every runtime operation takes its machine explicitly. The heap fast
// path is therefore single-threaded by construction: only the owning
// goroutine touches next, except during cross-machine copy, which runs
// under allocLock.
type Machine struct {
	valstack []Value
	base     int // current activation base
	top      int // allocation cursor; valstack[top:] is free

	heap  heap
	cheap cheap
	stats Stats

	// Result and temporary slots. Both are GC roots.
	Ret  Value
	Reg1 Value

	maxPeers int

	// Inbox. inbox[:inboxWrite] holds pending messages, oldest first,
	// guarded by inboxLock. wake carries at most one pending
	// notification; senders post to it after appending and receivers
	// drain it while polling.
	inbox      [inboxSize]message
	inboxWrite int
	inboxLock  sync.Mutex
	wake       chan struct{}

	// allocLock serializes the allocator against peer machines copying
	// into this heap. It is taken by the owner only while peers are
	// coupled (processes > 0) and skipped inside a reservation window.
	allocLock      sync.Mutex
	reserved       bool
	reservedLocked bool

	processes int32 // peers actively coupled to this machine (atomic)
	active    int32 // cleared by Terminate (atomic)
}

var runtimeOnce sync.Once

var procArgs []string

// runtimeInit performs process-wide setup: program argument capture and
// signal configuration. It runs once, from the first Init.
func runtimeInit() {
	procArgs = os.Args
	ignoreSigpipe()
}

// Init creates a machine with the given stack and heap geometry and
// marks it active. heapSize is in bytes and is rounded up to the chunk
// alignment; stackSize is in value slots.
func Init(stackSize, heapSize, maxPeers int) *Machine {
	runtimeOnce.Do(runtimeInit)
	m := &Machine{
		valstack: make([]Value, stackSize),
		maxPeers: maxPeers,
		wake:     make(chan struct{}, 1),
	}
	m.heap.init(heapSize)
	m.cheap.init()
	atomic.StoreInt32(&m.active, 1)
	return m
}

// Active reports whether the machine has not been terminated.
func (m *Machine) Active() bool { return atomic.LoadInt32(&m.active) == 1 }

// Stats returns a snapshot of the machine's counters.
func (m *Machine) Stats() Stats {
	return Stats{
		Allocations: atomic.LoadUint64(&m.stats.Allocations),
		Collections: atomic.LoadUint64(&m.stats.Collections),
	}
}

// Terminate releases the machine's stack, heap, auxiliary heap and
// inbox and marks it inactive. Pending finalizers run. The machine
// record itself is retained so that a late Send observes the inactive
// flag and drops its message instead of crashing. Returns the final
// statistics.
func (m *Machine) Terminate() Stats {
	atomic.StoreInt32(&m.active, 0)
	m.allocLock.Lock()
	m.inboxLock.Lock()
	m.cheap.releaseAll()
	m.valstack = nil
	m.base, m.top = 0, 0
	m.heap.release()
	for i := 0; i < m.inboxWrite; i++ {
		m.inbox[i] = message{}
	}
	m.inboxWrite = 0
	m.Ret, m.Reg1 = ValueNil, ValueNil
	m.inboxLock.Unlock()
	m.allocLock.Unlock()
	return m.Stats()
}

// Spawn creates a peer machine with the same geometry, copies arg into
// it, and runs f on a new goroutine bound to the peer. The peer is torn
// down when f returns. The two machines are coupled for the peer's
// lifetime: both count the other in processes, so both take their
// allocation locks for the duration.
func (m *Machine) Spawn(f func(peer *Machine, arg Value), arg Value) *Machine {
	peer := Init(len(m.valstack), len(m.heap.data), m.maxPeers)
	carg := m.CopyTo(peer, arg)
	atomic.AddInt32(&m.processes, 1)
	atomic.AddInt32(&peer.processes, 1)
	go func() {
		f(peer, carg)
		atomic.AddInt32(&m.processes, -1)
		peer.Terminate()
	}()
	return peer
}

// Args returns the program arguments captured at runtime
// initialization.
func Args() []string { return procArgs }

// SetArgs replaces the captured program arguments.
func SetArgs(args []string) { procArgs = args }

// Stack operations. The region valstack[0:top] is the live stack and a
// GC root set; base is the current activation base, moved on call and
// return by the embedding interpreter.

// Push places v on top of the stack. Overflow is fatal.
func (m *Machine) Push(v Value) {
	if m.top >= len(m.valstack) {
		fatal("value stack overflow (%d slots)", len(m.valstack))
	}
	m.valstack[m.top] = v
	m.top++
}

// Pop removes and returns the top of the stack.
func (m *Machine) Pop() Value {
	m.top--
	v := m.valstack[m.top]
	m.valstack[m.top] = ValueNil
	return v
}

// Slot returns the value at index i relative to the activation base.
func (m *Machine) Slot(i int) Value { return m.valstack[m.base+i] }

// SetSlot stores v at index i relative to the activation base.
func (m *Machine) SetSlot(i int, v Value) { m.valstack[m.base+i] = v }

// Base returns the current activation base.
func (m *Machine) Base() int { return m.base }

// SetBase moves the activation base.
func (m *Machine) SetBase(b int) { m.base = b }

// Top returns the stack allocation cursor.
func (m *Machine) Top() int { return m.top }

// SetTop moves the stack allocation cursor. Growing past the stack
// limit is fatal; the exposed slots are cleared so stale references do
// not pin dead cells.
func (m *Machine) SetTop(t int) {
	if t > len(m.valstack) {
		fatal("value stack overflow (%d slots)", len(m.valstack))
	}
	for i := t; i < m.top; i++ {
		m.valstack[i] = ValueNil
	}
	m.top = t
}
