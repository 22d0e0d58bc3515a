package builtins

import (
	"fmt"

	"bulu/runtime-go/pkg/runtime"
)

func (r *Registry) registerChannelBuiltins() {
	r.Register(runtime.NativeFunctionValue{Name: "make", Arity: -1, Impl: r.builtinMake})
	r.Register(runtime.NativeFunctionValue{Name: "send", Arity: 2, Impl: r.builtinSend})
	r.Register(runtime.NativeFunctionValue{Name: "recv", Arity: 1, Impl: r.builtinRecv})
	r.Register(runtime.NativeFunctionValue{Name: "close", Arity: 1, Impl: r.builtinClose})
	r.Register(runtime.NativeFunctionValue{Name: "len", Arity: 1, Impl: r.builtinLen})
	r.Register(runtime.NativeFunctionValue{Name: "cap", Arity: 1, Impl: r.builtinCap})
	r.Register(runtime.NativeFunctionValue{Name: "send_only", Arity: 1, Impl: r.builtinSendOnly})
	r.Register(runtime.NativeFunctionValue{Name: "recv_only", Arity: 1, Impl: r.builtinRecvOnly})
}

// builtinMake creates a channel: make(element_type) for unbuffered,
// make(element_type, capacity) for buffered. The element type arrives as a
// type-name string from the interpreter; it is recorded for introspection
// only.
func (r *Registry) builtinMake(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, countError("make", "1 or 2", len(args))
	}
	elementType, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, typeError("make", 0, "a type name", tagOf(args[0]))
	}

	var capacity *int
	if len(args) == 2 {
		n, err := integralArg("make", 1, args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, typeError("make", 1, "a non-negative capacity", fmt.Sprintf("%d", n))
		}
		c := int(n)
		capacity = &c
	}

	id := r.channels.Create(elementType.Val, capacity)
	ch, _ := r.channels.Get(id)
	return runtime.ChannelValue{ID: id, Chan: ch, Direction: runtime.Bidirectional}, nil
}

// builtinSend is the blocking send: true when the value was delivered, false
// when the channel was closed.
func (r *Registry) builtinSend(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	handle, ch, err := r.channelArg("send", 0, args[0])
	if err != nil {
		return nil, err
	}
	if handle.Direction == runtime.ReceiveOnly {
		return nil, typeError("send", 0, "a sendable channel", "a receive-only channel")
	}
	switch ch.Send(args[1]) {
	case runtime.SendOk:
		return runtime.BoolValue{Val: true}, nil
	default:
		return runtime.BoolValue{Val: false}, nil
	}
}

// builtinRecv is the blocking receive: the next value in FIFO order, or null
// once the channel is closed and drained.
func (r *Registry) builtinRecv(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	handle, ch, err := r.channelArg("recv", 0, args[0])
	if err != nil {
		return nil, err
	}
	if handle.Direction == runtime.SendOnly {
		return nil, typeError("recv", 0, "a receivable channel", "a send-only channel")
	}
	value, result := ch.Receive()
	if result == runtime.ReceiveOk {
		return value, nil
	}
	return runtime.NullValue{}, nil
}

func (r *Registry) builtinClose(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	handle, ch, err := r.channelArg("close", 0, args[0])
	if err != nil {
		return nil, err
	}
	if handle.Direction == runtime.ReceiveOnly {
		return nil, typeError("close", 0, "a closable channel", "a receive-only channel")
	}
	if err := ch.Close(); err != nil {
		return nil, fmt.Errorf("close(): %w", err)
	}
	return runtime.NullValue{}, nil
}

func (r *Registry) builtinLen(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.StringValue:
		return runtime.NewInteger(int64(len(v.Val)), runtime.IntegerI32), nil
	case runtime.ChannelValue:
		_, ch, err := r.channelArg("len", 0, v)
		if err != nil {
			return nil, err
		}
		return runtime.NewInteger(int64(ch.Len()), runtime.IntegerI32), nil
	default:
		return nil, typeError("len", 0, "a string or channel", tagOf(args[0]))
	}
}

func (r *Registry) builtinCap(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	_, ch, err := r.channelArg("cap", 0, args[0])
	if err != nil {
		return nil, err
	}
	return runtime.NewInteger(int64(ch.Cap()), runtime.IntegerI32), nil
}

// builtinSendOnly derives a send-capability view over the same channel.
func (r *Registry) builtinSendOnly(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	handle, ch, err := r.channelArg("send_only", 0, args[0])
	if err != nil {
		return nil, err
	}
	if handle.Direction == runtime.ReceiveOnly {
		return nil, typeError("send_only", 0, "a sendable channel", "a receive-only channel")
	}
	return runtime.ChannelValue{ID: handle.ID, Chan: ch, Direction: runtime.SendOnly}, nil
}

// builtinRecvOnly derives a receive-capability view over the same channel.
func (r *Registry) builtinRecvOnly(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	handle, ch, err := r.channelArg("recv_only", 0, args[0])
	if err != nil {
		return nil, err
	}
	if handle.Direction == runtime.SendOnly {
		return nil, typeError("recv_only", 0, "a receivable channel", "a send-only channel")
	}
	return runtime.ChannelValue{ID: handle.ID, Chan: ch, Direction: runtime.ReceiveOnly}, nil
}
