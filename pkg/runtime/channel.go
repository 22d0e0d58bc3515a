package runtime

import (
	"sync"
	"time"
)

// Direction is the capability view a handle holds onto a channel.
type Direction int

const (
	Bidirectional Direction = iota
	SendOnly
	ReceiveOnly
)

func (d Direction) String() string {
	switch d {
	case SendOnly:
		return "send_only"
	case ReceiveOnly:
		return "receive_only"
	default:
		return "bidirectional"
	}
}

// SendResult reports the outcome of a send attempt.
type SendResult int

const (
	SendOk SendResult = iota
	SendClosed
	SendWouldBlock
)

// ReceiveResult reports the outcome of a receive attempt.
type ReceiveResult int

const (
	ReceiveOk ReceiveResult = iota
	ReceiveClosed
	ReceiveWouldBlock
)

// channelState is the single shared core behind every view of one channel:
// a FIFO buffer guarded by one mutex, with separate wakeups for senders and
// receivers. Capacity 0 means unbuffered; an unbuffered send rendezvouses
// with a waiting receiver through a one-slot handoff.
type channelState struct {
	mu               sync.Mutex
	sendCond         *sync.Cond
	recvCond         *sync.Cond
	buffer           []Value
	capacity         int
	closed           bool
	waitingSenders   int
	waitingReceivers int
	elementType      string
}

func newChannelState(elementType string, capacity int) *channelState {
	st := &channelState{
		capacity:    capacity,
		elementType: elementType,
	}
	if capacity > 0 {
		st.buffer = make([]Value, 0, capacity)
	}
	st.sendCond = sync.NewCond(&st.mu)
	st.recvCond = sync.NewCond(&st.mu)
	return st
}

// Channel is a bidirectional handle onto a channel core.
type Channel struct {
	state *channelState
}

// NewUnbuffered creates a synchronous channel: every send must pair with a
// receive.
func NewUnbuffered(elementType string) *Channel {
	return &Channel{state: newChannelState(elementType, 0)}
}

// NewBuffered creates a channel with a bounded FIFO buffer. Capacity 0 is
// equivalent to NewUnbuffered; negative capacities are rejected by the
// dispatch layer before reaching this constructor.
func NewBuffered(elementType string, capacity int) *Channel {
	return &Channel{state: newChannelState(elementType, capacity)}
}

// SendOnlyChannel exposes only the sending half of a channel. It shares the
// underlying state with the handle it was derived from.
type SendOnlyChannel struct {
	state *channelState
}

// ReceiveOnlyChannel exposes only the receiving half of a channel.
type ReceiveOnlyChannel struct {
	state *channelState
}

// SendOnly derives a send-capability view over the same channel core.
func (c *Channel) SendOnly() *SendOnlyChannel {
	return &SendOnlyChannel{state: c.state}
}

// ReceiveOnly derives a receive-capability view over the same channel core.
func (c *Channel) ReceiveOnly() *ReceiveOnlyChannel {
	return &ReceiveOnlyChannel{state: c.state}
}

//-----------------------------------------------------------------------------
// Observers
//-----------------------------------------------------------------------------

func (st *channelState) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.buffer)
}

func (st *channelState) isClosed() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.closed
}

// Len returns the number of buffered values.
func (c *Channel) Len() int { return c.state.len() }

// Cap returns the buffer capacity; 0 for unbuffered channels.
func (c *Channel) Cap() int { return c.state.capacity }

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool { return c.state.isClosed() }

// ElementType returns the declared element type. It is carried for
// introspection only; payloads are not re-validated here.
func (c *Channel) ElementType() string { return c.state.elementType }

func (c *Channel) Direction() Direction { return Bidirectional }

func (c *SendOnlyChannel) Len() int             { return c.state.len() }
func (c *SendOnlyChannel) Cap() int             { return c.state.capacity }
func (c *SendOnlyChannel) ElementType() string  { return c.state.elementType }
func (c *SendOnlyChannel) Direction() Direction { return SendOnly }

func (c *ReceiveOnlyChannel) Len() int             { return c.state.len() }
func (c *ReceiveOnlyChannel) Cap() int             { return c.state.capacity }
func (c *ReceiveOnlyChannel) ElementType() string  { return c.state.elementType }
func (c *ReceiveOnlyChannel) Direction() Direction { return ReceiveOnly }

//-----------------------------------------------------------------------------
// Send
//-----------------------------------------------------------------------------

func (st *channelState) trySend(value Value) SendResult {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return SendClosed
	}
	if st.capacity == 0 {
		// Unbuffered: only succeeds when a receiver is already parked.
		if st.waitingReceivers > 0 && len(st.buffer) == 0 {
			st.buffer = append(st.buffer, value)
			st.recvCond.Signal()
			return SendOk
		}
		return SendWouldBlock
	}
	if len(st.buffer) < st.capacity {
		st.buffer = append(st.buffer, value)
		st.recvCond.Signal()
		return SendOk
	}
	return SendWouldBlock
}

func (st *channelState) send(value Value, deadline *time.Time) SendResult {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return SendClosed
	}

	if st.capacity == 0 || len(st.buffer) >= st.capacity {
		st.waitingSenders++
		for !st.closed && !st.hasRoom() {
			if deadline != nil {
				if !st.waitTimed(st.sendCond, *deadline) {
					st.waitingSenders--
					return SendWouldBlock
				}
			} else {
				st.sendCond.Wait()
			}
		}
		st.waitingSenders--
		if st.closed {
			return SendClosed
		}
	}

	st.buffer = append(st.buffer, value)
	st.recvCond.Signal()
	return SendOk
}

// hasRoom reports whether a sender may deposit a value right now. Callers
// must hold the mutex. An unbuffered channel has room only while a receiver
// is parked and the handoff slot is free.
func (st *channelState) hasRoom() bool {
	if st.capacity == 0 {
		return st.waitingReceivers > 0 && len(st.buffer) == 0
	}
	return len(st.buffer) < st.capacity
}

// waitTimed waits on cond until signalled or the deadline passes, reporting
// false on timeout. The condvar has no native deadline, so a watchdog
// goroutine broadcasts once the time is up.
func (st *channelState) waitTimed(cond *sync.Cond, deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}
	expired := false
	timer := time.AfterFunc(remaining, func() {
		st.mu.Lock()
		expired = true
		st.mu.Unlock()
		cond.Broadcast()
	})
	cond.Wait()
	timer.Stop()
	return !expired
}

// TrySend appends the value when room is immediately available. It never
// blocks: a full buffer (or an unbuffered channel with no parked receiver)
// yields SendWouldBlock, a closed channel yields SendClosed.
func (c *Channel) TrySend(value Value) SendResult { return c.state.trySend(value) }

// Send blocks the calling task until the value is buffered, handed to a
// receiver, or the channel closes.
func (c *Channel) Send(value Value) SendResult { return c.state.send(value, nil) }

// SendTimeout behaves like Send but gives up after the duration elapses,
// returning SendWouldBlock.
func (c *Channel) SendTimeout(value Value, timeout time.Duration) SendResult {
	deadline := time.Now().Add(timeout)
	return c.state.send(value, &deadline)
}

func (c *SendOnlyChannel) TrySend(value Value) SendResult { return c.state.trySend(value) }
func (c *SendOnlyChannel) Send(value Value) SendResult    { return c.state.send(value, nil) }
func (c *SendOnlyChannel) SendTimeout(value Value, timeout time.Duration) SendResult {
	deadline := time.Now().Add(timeout)
	return c.state.send(value, &deadline)
}

//-----------------------------------------------------------------------------
// Receive
//-----------------------------------------------------------------------------

func (st *channelState) tryReceive() (Value, ReceiveResult) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.buffer) > 0 {
		return st.popLocked(), ReceiveOk
	}
	if st.closed {
		return nil, ReceiveClosed
	}
	return nil, ReceiveWouldBlock
}

func (st *channelState) receive(deadline *time.Time) (Value, ReceiveResult) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.waitingReceivers++
	// A parked receiver makes an unbuffered channel sendable; let any
	// blocked sender know.
	if st.capacity == 0 {
		st.sendCond.Signal()
	}
	for len(st.buffer) == 0 && !st.closed {
		if deadline != nil {
			if !st.waitTimed(st.recvCond, *deadline) {
				st.waitingReceivers--
				return nil, ReceiveWouldBlock
			}
		} else {
			st.recvCond.Wait()
		}
	}
	st.waitingReceivers--

	if len(st.buffer) > 0 {
		return st.popLocked(), ReceiveOk
	}
	return nil, ReceiveClosed
}

// popLocked removes the oldest buffered value and wakes one sender now that
// there is room. Callers must hold the mutex.
func (st *channelState) popLocked() Value {
	value := st.buffer[0]
	st.buffer = st.buffer[1:]
	st.sendCond.Signal()
	return value
}

// TryReceive pops the oldest value when one is buffered. An empty open
// channel yields ReceiveWouldBlock; an empty closed channel yields the
// terminal ReceiveClosed.
func (c *Channel) TryReceive() (Value, ReceiveResult) { return c.state.tryReceive() }

// Receive blocks the calling task until a value arrives or the channel is
// closed and drained.
func (c *Channel) Receive() (Value, ReceiveResult) { return c.state.receive(nil) }

// ReceiveTimeout behaves like Receive but gives up after the duration
// elapses, returning ReceiveWouldBlock.
func (c *Channel) ReceiveTimeout(timeout time.Duration) (Value, ReceiveResult) {
	deadline := time.Now().Add(timeout)
	return c.state.receive(&deadline)
}

func (c *ReceiveOnlyChannel) TryReceive() (Value, ReceiveResult) { return c.state.tryReceive() }
func (c *ReceiveOnlyChannel) Receive() (Value, ReceiveResult)   { return c.state.receive(nil) }
func (c *ReceiveOnlyChannel) ReceiveTimeout(timeout time.Duration) (Value, ReceiveResult) {
	deadline := time.Now().Add(timeout)
	return c.state.receive(&deadline)
}

//-----------------------------------------------------------------------------
// Close & drain
//-----------------------------------------------------------------------------

func (st *channelState) close() error {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return ErrDoubleClose
	}
	st.closed = true
	st.mu.Unlock()

	st.sendCond.Broadcast()
	st.recvCond.Broadcast()
	return nil
}

// Close transitions the channel to closed exactly once and wakes every
// blocked sender and receiver. Closing twice is a caller error.
func (c *Channel) Close() error { return c.state.close() }

// Close on a send-only view follows the usual convention that the producing
// side owns the close protocol.
func (c *SendOnlyChannel) Close() error { return c.state.close() }

// Drain receives until the channel reports Closed, returning the values in
// FIFO order. It blocks on an open, empty channel the way Receive does.
func (c *Channel) Drain() []Value {
	var values []Value
	for {
		value, result := c.state.receive(nil)
		if result != ReceiveOk {
			return values
		}
		values = append(values, value)
	}
}
