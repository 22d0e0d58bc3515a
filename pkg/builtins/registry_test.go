package builtins

import (
	"errors"
	"sort"
	"testing"

	"bulu/runtime-go/pkg/runtime"
)

func TestRegistryNameTable(t *testing.T) {
	r := New()

	expected := []string{
		"make", "send", "recv", "close", "len", "cap", "send_only", "recv_only",
		"lock", "lock_acquire", "lock_release", "sleep", "yield", "timer",
		"atomic_load", "atomic_store", "atomic_add", "atomic_sub", "atomic_cas",
		"typeof", "instanceof", "sizeof",
	}
	for _, name := range expected {
		if !r.IsBuiltin(name) {
			t.Fatalf("expected %q to be registered", name)
		}
		if _, ok := r.Get(name); !ok {
			t.Fatalf("Get(%q) failed", name)
		}
	}
	if r.IsBuiltin("spawn") {
		t.Fatalf("spawn must not be a builtin")
	}

	names := r.Names()
	if len(names) != len(expected) {
		t.Fatalf("expected %d builtins, got %d: %v", len(expected), len(names), names)
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("Names() must be sorted, got %v", names)
	}
}

func TestCallUnknownBuiltin(t *testing.T) {
	r := New()
	_, err := r.Call("frobnicate", nil)
	var unknown *UnknownBuiltinError
	if !errors.As(err, &unknown) || unknown.Name != "frobnicate" {
		t.Fatalf("expected UnknownBuiltinError, got %v", err)
	}
}

func TestCallValidatesArity(t *testing.T) {
	r := New()

	cases := []struct {
		name string
		args []runtime.Value
	}{
		{"sleep", nil},
		{"yield", []runtime.Value{runtime.NullValue{}}},
		{"close", nil},
		{"atomic_cas", []runtime.Value{runtime.NewRef(runtime.NewInteger(0, runtime.IntegerI32))}},
		{"lock", []runtime.Value{runtime.NullValue{}}},
	}
	for _, tc := range cases {
		_, err := r.Call(tc.name, tc.args)
		var countErr *ArgumentCountError
		if !errors.As(err, &countErr) {
			t.Fatalf("%s: expected ArgumentCountError, got %v", tc.name, err)
		}
		if countErr.Builtin != tc.name {
			t.Fatalf("error names builtin %q, want %q", countErr.Builtin, tc.name)
		}
	}
}

func TestVariadicMakeArity(t *testing.T) {
	r := New()
	_, err := r.Call("make", nil)
	var countErr *ArgumentCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("expected ArgumentCountError for zero-arg make, got %v", err)
	}

	_, err = r.Call("make", []runtime.Value{
		runtime.StringValue{Val: "i32"},
		runtime.NewInteger(1, runtime.IntegerI32),
		runtime.NewInteger(2, runtime.IntegerI32),
	})
	if !errors.As(err, &countErr) {
		t.Fatalf("expected ArgumentCountError for three-arg make, got %v", err)
	}
}

func TestRegisterCustomNative(t *testing.T) {
	r := New()
	r.Register(runtime.NativeFunctionValue{
		Name:  "answer",
		Arity: 0,
		Impl: func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
			return runtime.NewInteger(42, runtime.IntegerI32), nil
		},
	})

	value, err := r.Call("answer", nil)
	if err != nil {
		t.Fatalf("custom native failed: %v", err)
	}
	iv, ok := value.(runtime.IntegerValue)
	if !ok || iv.Val.Int64() != 42 {
		t.Fatalf("expected 42, got %#v", value)
	}
}
