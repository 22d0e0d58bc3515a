package builtins

import (
	"errors"
	"testing"
	"time"

	"bulu/runtime-go/pkg/runtime"
)

func TestLockBuiltinAssignsSequentialIDs(t *testing.T) {
	r := New()

	for n := uint64(1); n <= 3; n++ {
		value, err := r.Call("lock", nil)
		if err != nil {
			t.Fatalf("lock failed: %v", err)
		}
		handle, ok := value.(runtime.LockValue)
		if !ok {
			t.Fatalf("lock returned %T, want LockValue", value)
		}
		if handle.ID != n {
			t.Fatalf("lock id = %d, want %d", handle.ID, n)
		}
	}
	if r.Locks().Len() != 3 {
		t.Fatalf("lock registry len = %d, want 3", r.Locks().Len())
	}
}

func TestLockAcquireReleaseBuiltins(t *testing.T) {
	r := New()
	value, err := r.Call("lock", nil)
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	handle := value.(runtime.LockValue)

	if _, err := r.Call("lock_acquire", []runtime.Value{handle}); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if !handle.Lock.Held() {
		t.Fatalf("lock not held after lock_acquire")
	}
	if _, err := r.Call("lock_release", []runtime.Value{handle}); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	_, err = r.Call("lock_release", []runtime.Value{handle})
	if !errors.Is(err, runtime.ErrReleaseOfFreeLock) {
		t.Fatalf("expected ErrReleaseOfFreeLock, got %v", err)
	}
}

func TestLockNotFound(t *testing.T) {
	r := New()
	stale := runtime.LockValue{ID: 404}
	_, err := r.Call("lock_acquire", []runtime.Value{stale})
	if !errors.Is(err, runtime.ErrLockNotFound) {
		t.Fatalf("expected ErrLockNotFound, got %v", err)
	}
}

func TestSleepBlocksAtLeastRequestedDuration(t *testing.T) {
	r := New()

	start := time.Now()
	value, err := r.Call("sleep", []runtime.Value{runtime.NewInteger(50, runtime.IntegerI64)})
	if err != nil {
		t.Fatalf("sleep failed: %v", err)
	}
	if _, ok := value.(runtime.NullValue); !ok {
		t.Fatalf("sleep returned %#v, want null", value)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("sleep returned after %v, want >= 50ms", elapsed)
	}
}

func TestSleepAcceptsAnyIntegralWidth(t *testing.T) {
	r := New()
	for _, suffix := range []runtime.IntegerType{runtime.IntegerI8, runtime.IntegerU16, runtime.IntegerI32, runtime.IntegerU64} {
		if _, err := r.Call("sleep", []runtime.Value{runtime.NewInteger(1, suffix)}); err != nil {
			t.Fatalf("sleep rejected %s: %v", suffix, err)
		}
	}
}

func TestSleepRejectsBadArguments(t *testing.T) {
	r := New()
	var typeErr *ArgumentTypeError

	_, err := r.Call("sleep", []runtime.Value{runtime.StringValue{Val: "50"}})
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected ArgumentTypeError for string duration, got %v", err)
	}
	_, err = r.Call("sleep", []runtime.Value{runtime.NewInteger(-5, runtime.IntegerI32)})
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected ArgumentTypeError for negative duration, got %v", err)
	}
}

func TestYieldReturnsPromptly(t *testing.T) {
	r := New()

	start := time.Now()
	value, err := r.Call("yield", nil)
	if err != nil {
		t.Fatalf("yield failed: %v", err)
	}
	if _, ok := value.(runtime.NullValue); !ok {
		t.Fatalf("yield returned %#v, want null", value)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Fatalf("yield took %v, want under 10ms", elapsed)
	}
}

func TestTimerDeliversOneTickThenCloses(t *testing.T) {
	r := New()

	const durationMs = 40
	start := time.Now()
	value, err := r.Call("timer", []runtime.Value{runtime.NewInteger(durationMs, runtime.IntegerI64)})
	if err != nil {
		t.Fatalf("timer failed: %v", err)
	}
	handle, ok := value.(runtime.ChannelValue)
	if !ok {
		t.Fatalf("timer returned %T, want ChannelValue", value)
	}
	if handle.Direction != runtime.ReceiveOnly {
		t.Fatalf("timer channel direction = %v, want ReceiveOnly", handle.Direction)
	}

	tick := callInt(t, r, "recv", handle)
	if elapsed := time.Since(start); elapsed < durationMs*time.Millisecond {
		t.Fatalf("tick arrived after %v, want >= %dms", elapsed, durationMs)
	}
	if tick != durationMs {
		t.Fatalf("tick value = %d, want %d", tick, durationMs)
	}

	// One-shot: the channel closes after its single tick.
	second, err := r.Call("recv", []runtime.Value{handle})
	if err != nil {
		t.Fatalf("second recv failed: %v", err)
	}
	if _, ok := second.(runtime.NullValue); !ok {
		t.Fatalf("second recv returned %#v, want null", second)
	}
}
