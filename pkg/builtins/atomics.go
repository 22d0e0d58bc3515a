package builtins

import (
	"fmt"

	"bulu/runtime-go/pkg/runtime"
)

func (r *Registry) registerAtomicBuiltins() {
	r.Register(runtime.NativeFunctionValue{Name: "atomic_load", Arity: 1, Impl: r.builtinAtomicLoad})
	r.Register(runtime.NativeFunctionValue{Name: "atomic_store", Arity: 2, Impl: r.builtinAtomicStore})
	r.Register(runtime.NativeFunctionValue{Name: "atomic_add", Arity: 2, Impl: r.builtinAtomicAdd})
	r.Register(runtime.NativeFunctionValue{Name: "atomic_sub", Arity: 2, Impl: r.builtinAtomicSub})
	r.Register(runtime.NativeFunctionValue{Name: "atomic_cas", Arity: 3, Impl: r.builtinAtomicCas})
}

func (r *Registry) builtinAtomicLoad(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	cell, err := refArg("atomic_load", 0, args[0])
	if err != nil {
		return nil, err
	}
	value, err := cell.Load()
	if err != nil {
		return nil, fmt.Errorf("atomic_load(): %w", err)
	}
	return value, nil
}

func (r *Registry) builtinAtomicStore(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	cell, err := refArg("atomic_store", 0, args[0])
	if err != nil {
		return nil, err
	}
	if err := cell.Store(args[1]); err != nil {
		return nil, fmt.Errorf("atomic_store(): %w", err)
	}
	return runtime.NullValue{}, nil
}

func (r *Registry) builtinAtomicAdd(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	cell, err := refArg("atomic_add", 0, args[0])
	if err != nil {
		return nil, err
	}
	old, err := cell.Add(args[1])
	if err != nil {
		return nil, fmt.Errorf("atomic_add(): %w", err)
	}
	return old, nil
}

func (r *Registry) builtinAtomicSub(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	cell, err := refArg("atomic_sub", 0, args[0])
	if err != nil {
		return nil, err
	}
	old, err := cell.Sub(args[1])
	if err != nil {
		return nil, fmt.Errorf("atomic_sub(): %w", err)
	}
	return old, nil
}

// builtinAtomicCas always returns the value observed at the moment of
// comparison; callers detect success by comparing it to expected.
func (r *Registry) builtinAtomicCas(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	cell, err := refArg("atomic_cas", 0, args[0])
	if err != nil {
		return nil, err
	}
	old, err := cell.CompareAndSwap(args[1], args[2])
	if err != nil {
		return nil, fmt.Errorf("atomic_cas(): %w", err)
	}
	return old, nil
}
