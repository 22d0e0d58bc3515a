package builtins

import (
	"fmt"
	"strconv"

	"bulu/runtime-go/pkg/runtime"
)

func exactly(n int) string {
	return "exactly " + strconv.Itoa(n)
}

func tagOf(v runtime.Value) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case runtime.IntegerValue:
		return string(val.TypeSuffix)
	case runtime.FloatValue:
		return string(val.TypeSuffix)
	default:
		return v.Kind().String()
	}
}

// channelArg validates a channel handle and resolves its live state. Handles
// normally carry the channel pointer; a handle rebuilt from a bare id is
// looked up in the registry.
func (r *Registry) channelArg(builtin string, index int, v runtime.Value) (runtime.ChannelValue, *runtime.Channel, error) {
	handle, ok := v.(runtime.ChannelValue)
	if !ok {
		return runtime.ChannelValue{}, nil, typeError(builtin, index, "a channel", tagOf(v))
	}
	if handle.Chan != nil {
		return handle, handle.Chan, nil
	}
	ch, found := r.channels.Get(handle.ID)
	if !found {
		return runtime.ChannelValue{}, nil, fmt.Errorf("%s(): %w: id %d", builtin, runtime.ErrChannelNotFound, handle.ID)
	}
	return handle, ch, nil
}

// lockArg validates a lock handle and resolves its live state.
func (r *Registry) lockArg(builtin string, index int, v runtime.Value) (*runtime.Lock, error) {
	handle, ok := v.(runtime.LockValue)
	if !ok {
		return nil, typeError(builtin, index, "a lock", tagOf(v))
	}
	if handle.Lock != nil {
		return handle.Lock, nil
	}
	l, found := r.locks.Get(handle.ID)
	if !found {
		return nil, fmt.Errorf("%s(): %w: id %d", builtin, runtime.ErrLockNotFound, handle.ID)
	}
	return l, nil
}

func refArg(builtin string, index int, v runtime.Value) (*runtime.RefValue, error) {
	cell, ok := v.(*runtime.RefValue)
	if !ok {
		return nil, typeError(builtin, index, "a ref cell", tagOf(v))
	}
	return cell, nil
}

// integralArg accepts any integer width and returns its int64 value.
func integralArg(builtin string, index int, v runtime.Value) (int64, error) {
	iv, ok := v.(runtime.IntegerValue)
	if !ok || iv.Val == nil {
		return 0, typeError(builtin, index, "an integer", tagOf(v))
	}
	if !iv.Val.IsInt64() {
		return 0, typeError(builtin, index, "an integer in range", tagOf(v))
	}
	return iv.Val.Int64(), nil
}
