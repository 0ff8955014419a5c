package rt

import "sync/atomic"

// Stats counts a machine's allocator and collector activity.
// Allocations is in bytes and includes chunk headers. Both fields are
// updated with atomic adds: Collections is read by senders racing the
// recipient's collector, and Allocations by monitoring code.
type Stats struct {
	Allocations uint64
	Collections uint64
}

func (m *Machine) collections() uint64 {
	return atomic.LoadUint64(&m.stats.Collections)
}
