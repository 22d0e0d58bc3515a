package builtins

import (
	"fmt"
	goruntime "runtime"
	"time"

	"bulu/runtime-go/pkg/runtime"
)

func (r *Registry) registerSyncBuiltins() {
	r.Register(runtime.NativeFunctionValue{Name: "lock", Arity: 0, Impl: r.builtinLock})
	r.Register(runtime.NativeFunctionValue{Name: "lock_acquire", Arity: 1, Impl: r.builtinLockAcquire})
	r.Register(runtime.NativeFunctionValue{Name: "lock_release", Arity: 1, Impl: r.builtinLockRelease})
	r.Register(runtime.NativeFunctionValue{Name: "sleep", Arity: 1, Impl: r.builtinSleep})
	r.Register(runtime.NativeFunctionValue{Name: "yield", Arity: 0, Impl: r.builtinYield})
	r.Register(runtime.NativeFunctionValue{Name: "timer", Arity: 1, Impl: r.builtinTimer})
}

// builtinLock registers a fresh free lock and returns its handle.
func (r *Registry) builtinLock(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	id := r.locks.CreateLock()
	l, _ := r.locks.Get(id)
	return runtime.LockValue{ID: id, Lock: l}, nil
}

// builtinLockAcquire blocks the calling task until the lock is taken. Locks
// are not reentrant; re-acquiring a held lock from the same task deadlocks.
func (r *Registry) builtinLockAcquire(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	l, err := r.lockArg("lock_acquire", 0, args[0])
	if err != nil {
		return nil, err
	}
	l.Acquire()
	return runtime.NullValue{}, nil
}

// builtinLockRelease frees the lock, waking one blocked waiter.
func (r *Registry) builtinLockRelease(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	l, err := r.lockArg("lock_release", 0, args[0])
	if err != nil {
		return nil, err
	}
	if err := l.Release(); err != nil {
		return nil, fmt.Errorf("lock_release(): %w", err)
	}
	return runtime.NullValue{}, nil
}

// builtinSleep suspends only the calling task for at least the given number
// of milliseconds. Any integral width is accepted.
func (r *Registry) builtinSleep(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	ms, err := integralArg("sleep", 0, args[0])
	if err != nil {
		return nil, err
	}
	if ms < 0 {
		return nil, typeError("sleep", 0, "a non-negative duration in milliseconds", fmt.Sprintf("%d", ms))
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return runtime.NullValue{}, nil
}

// builtinYield hints the scheduler to let other runnable tasks proceed. It
// returns promptly even when nothing else is runnable.
func (r *Registry) builtinYield(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	goruntime.Gosched()
	return runtime.NullValue{}, nil
}

// builtinTimer returns a receive-only channel that delivers a single i64
// tick after the given number of milliseconds, then closes.
func (r *Registry) builtinTimer(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	ms, err := integralArg("timer", 0, args[0])
	if err != nil {
		return nil, err
	}
	if ms < 0 {
		return nil, typeError("timer", 0, "a non-negative duration in milliseconds", fmt.Sprintf("%d", ms))
	}

	one := 1
	id := r.channels.Create("i64", &one)
	ch, _ := r.channels.Get(id)

	go func() {
		time.Sleep(time.Duration(ms) * time.Millisecond)
		ch.Send(runtime.NewInteger(ms, runtime.IntegerI64))
		_ = ch.Close()
	}()

	return runtime.ChannelValue{ID: id, Chan: ch, Direction: runtime.ReceiveOnly}, nil
}
