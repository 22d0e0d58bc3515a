package builtins

import (
	"bulu/runtime-go/pkg/runtime"
)

func (r *Registry) registerIntrospectionBuiltins() {
	r.Register(runtime.NativeFunctionValue{Name: "typeof", Arity: 1, Impl: r.builtinTypeof})
	r.Register(runtime.NativeFunctionValue{Name: "instanceof", Arity: 2, Impl: r.builtinInstanceof})
	r.Register(runtime.NativeFunctionValue{Name: "sizeof", Arity: 1, Impl: r.builtinSizeof})
}

// builtinTypeof reports the dynamic type tag. Integer and float values
// report their width suffix; channel and lock handles report the fixed tags
// "channel" and "lock" regardless of direction.
func (r *Registry) builtinTypeof(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.StringValue{Val: tagOf(args[0])}, nil
}

// builtinInstanceof matches either the precise tag ("i32") or the broader
// kind name ("integer").
func (r *Registry) builtinInstanceof(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	name, ok := args[1].(runtime.StringValue)
	if !ok {
		return nil, typeError("instanceof", 1, "a type name", tagOf(args[1]))
	}
	matches := tagOf(args[0]) == name.Val || args[0].Kind().String() == name.Val
	return runtime.BoolValue{Val: matches}, nil
}

// builtinSizeof reports the value's in-memory payload size in bytes.
// Handles report the size of their id, so channel and lock values are
// always positive.
func (r *Registry) builtinSizeof(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	var size int64
	switch v := args[0].(type) {
	case runtime.IntegerValue:
		size = int64(v.TypeSuffix.Bits() / 8)
	case runtime.FloatValue:
		if v.TypeSuffix == runtime.FloatF32 {
			size = 4
		} else {
			size = 8
		}
	case runtime.BoolValue:
		size = 1
	case runtime.CharValue:
		size = 4
	case runtime.StringValue:
		size = int64(len(v.Val))
	case runtime.NullValue:
		size = 0
	case runtime.ChannelValue, runtime.LockValue, *runtime.RefValue:
		size = 8
	default:
		size = 8
	}
	return runtime.NewInteger(size, runtime.IntegerI32), nil
}
