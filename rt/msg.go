package rt

import "time"

// The inbox is a fixed array of pending messages, oldest first. Send
// appends at the tail, receive scans from the head and compacts, which
// is what makes delivery FIFO per sender; messages from different
// senders interleave arbitrarily.
//
// Lock order: a sender takes the recipient's allocation lock, then the
// inbox lock, and holds the allocation lock until the copied value is
// rooted in the inbox, so a collection on the recipient cannot strand
// a copy that is not yet reachable. Receivers take the inbox lock
// alone.
const inboxSize = 1024

// recvBackstop bounds how long a blocked receiver sleeps before
// re-scanning the inbox without a wake notification. The periodic
// re-scan is a liveness backstop, not an error path: the wake channel
// holds one pending notification, and a notification coalesced away is
// repaired at the next pass.
const recvBackstop = 3 * time.Second

type message struct {
	sender *Machine
	value  Value
}

// A Msg is one received message, detached from the inbox. Its value
// is parked in the receiving machine's Ret slot, which keeps it
// rooted across collections until the caller stores it somewhere
// reachable.
type Msg struct {
	sender *Machine
	value  Value
}

// Value returns the message payload.
func (g *Msg) Value() Value { return g.value }

// Sender returns the machine that sent the message.
func (g *Msg) Sender() *Machine { return g.sender }

// Free clears the record. The payload itself is reclaimed by the
// receiving machine's collector once unreferenced.
func (g *Msg) Free() {
	g.sender = nil
	g.value = ValueNil
}

// Send copies v into dst's heap and appends it to dst's inbox,
// reporting whether the message was delivered. Sending to a terminated
// machine drops the message silently and returns false. A full inbox
// is fatal: the bounded-array design has no backpressure, so overflow
// means the receiver has stopped draining.
//
// If dst's collection counter advances while the copy is in flight
// (the up-front reservation collected), the copy restarts once from
// scratch; the abandoned first copy is garbage in dst's region and is
// reclaimed by dst's next collection.
func (m *Machine) Send(dst *Machine, v Value) bool {
	if !dst.Active() {
		return false
	}
	dst.allocLock.Lock()
	if !dst.Active() {
		// Lost the race with Terminate; drop.
		dst.allocLock.Unlock()
		return false
	}
	gcs := dst.collections()
	cv := m.copyToLocked(dst, v)
	if dst.collections() != gcs {
		cv = m.copyToLocked(dst, v)
	}
	dst.inboxLock.Lock()
	if dst.inboxWrite >= inboxSize {
		fatal("inbox overflow (%d pending messages)", inboxSize)
	}
	dst.inbox[dst.inboxWrite] = message{sender: m, value: cv}
	dst.inboxWrite++
	dst.inboxLock.Unlock()
	dst.allocLock.Unlock()
	select {
	case dst.wake <- struct{}{}:
	default:
	}
	return true
}

// Check scans the inbox for a pending message without blocking. A
// non-nil sender restricts the scan to messages from that machine.
// Returns the matching message's sender, or nil if none is pending.
func (m *Machine) Check(sender *Machine) *Machine {
	m.inboxLock.Lock()
	defer m.inboxLock.Unlock()
	for i := 0; i < m.inboxWrite; i++ {
		if sender == nil || m.inbox[i].sender == sender {
			return m.inbox[i].sender
		}
	}
	return nil
}

// CheckTimeout behaves like an unfiltered Check but, when the inbox is
// empty, waits up to delay for a message before the final re-scan.
func (m *Machine) CheckTimeout(delay time.Duration) *Machine {
	if s := m.Check(nil); s != nil {
		return s
	}
	t := time.NewTimer(delay)
	select {
	case <-m.wake:
	case <-t.C:
	}
	t.Stop()
	return m.Check(nil)
}

// Recv blocks until a message matching the filter is pending, removes
// it from the inbox and returns it. A nil sender accepts any message.
func (m *Machine) Recv(sender *Machine) *Msg {
	for {
		if g := m.tryRecv(sender); g != nil {
			return g
		}
		t := time.NewTimer(recvBackstop)
		select {
		case <-m.wake:
		case <-t.C:
		}
		t.Stop()
	}
}

// tryRecv removes and returns the oldest matching message, or nil.
func (m *Machine) tryRecv(sender *Machine) *Msg {
	m.inboxLock.Lock()
	defer m.inboxLock.Unlock()
	for i := 0; i < m.inboxWrite; i++ {
		if sender != nil && m.inbox[i].sender != sender {
			continue
		}
		g := &Msg{sender: m.inbox[i].sender, value: m.inbox[i].value}
		// The value leaves the inbox root set here; parking it in Ret
		// keeps it reachable until the caller stores it.
		m.Ret = g.value
		copy(m.inbox[i:], m.inbox[i+1:m.inboxWrite])
		m.inboxWrite--
		m.inbox[m.inboxWrite] = message{}
		return g
	}
	return nil
}
