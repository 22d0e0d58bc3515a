package runtime

import "time"

// SelectOp describes one case of a select: either a send of SendValue or a
// receive on the channel with the given id.
type SelectOp struct {
	ChannelID uint64
	IsSend    bool
	SendValue Value
}

// SelectResult reports the outcome of SelectChannels. Index is the position
// of the case that fired, or -1 on timeout. Value carries the received value
// for receive cases; Closed is set when the firing case observed a closed
// channel.
type SelectResult struct {
	Index  int
	Value  Value
	Closed bool
}

const selectPollInterval = time.Millisecond

// SelectChannels multiplexes the given operations, polling each one
// non-blocking until a case can proceed. A nil timeout blocks until some
// case fires; otherwise the result has Index -1 once the timeout elapses.
// Unknown channel ids fail with ErrChannelNotFound.
func SelectChannels(registry *ChannelRegistry, ops []SelectOp, timeout *time.Duration) (SelectResult, error) {
	start := time.Now()

	for {
		for index, op := range ops {
			ch, ok := registry.Get(op.ChannelID)
			if !ok {
				return SelectResult{}, ErrChannelNotFound
			}
			if op.IsSend {
				switch ch.TrySend(op.SendValue) {
				case SendOk:
					return SelectResult{Index: index, Value: NullValue{}}, nil
				case SendClosed:
					return SelectResult{Index: index, Closed: true}, nil
				case SendWouldBlock:
				}
				continue
			}
			value, result := ch.TryReceive()
			switch result {
			case ReceiveOk:
				return SelectResult{Index: index, Value: value}, nil
			case ReceiveClosed:
				return SelectResult{Index: index, Closed: true}, nil
			case ReceiveWouldBlock:
			}
		}

		if timeout != nil && time.Since(start) >= *timeout {
			return SelectResult{Index: -1}, nil
		}
		time.Sleep(selectPollInterval)
	}
}
