package runtime

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// ErrAtomicTypeMismatch marks an atomic operand whose subtype disagrees with
// the cell's current value.
var ErrAtomicTypeMismatch = errors.New("atomic operand type mismatch")

// RefValue is a mutable value cell addressed by the atomic builtins. One
// mutex per cell makes every operation indivisible with respect to any other
// atomic operation on the same cell; no observer can see a partial effect.
type RefValue struct {
	mu  sync.Mutex
	val Value
}

// NewRef creates a cell holding the given value.
func NewRef(v Value) *RefValue {
	return &RefValue{val: v}
}

func (r *RefValue) Kind() Kind { return KindRef }

// Get returns the current value. It exists for embedder convenience; the
// atomic protocol itself goes through Load.
func (r *RefValue) Get() Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.val
}

// Set unconditionally replaces the cell's value without type checking. The
// interpreter uses it when rebinding a variable; language code only reaches
// the cell through the atomic operations.
func (r *RefValue) Set(v Value) {
	r.mu.Lock()
	r.val = v
	r.mu.Unlock()
}

// Load atomically reads the cell. Only integer and bool cells participate in
// the atomic protocol.
func (r *RefValue) Load() (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch v := r.val.(type) {
	case IntegerValue:
		return IntegerValue{Val: CloneBigInt(v.Val), TypeSuffix: v.TypeSuffix}, nil
	case BoolValue:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: atomic operations not supported for %s", ErrAtomicTypeMismatch, kindName(r.val))
	}
}

// Store atomically overwrites the cell. The new value's subtype must agree
// with the current one.
func (r *RefValue) Store(newValue Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch current := r.val.(type) {
	case IntegerValue:
		incoming, ok := newValue.(IntegerValue)
		if !ok || incoming.TypeSuffix != current.TypeSuffix {
			return fmt.Errorf("%w: atomic_store requires %s, got %s", ErrAtomicTypeMismatch, current.TypeSuffix, describeOperand(newValue))
		}
		r.val = IntegerValue{Val: wrapToWidth(incoming.Val, current.TypeSuffix), TypeSuffix: current.TypeSuffix}
		return nil
	case BoolValue:
		incoming, ok := newValue.(BoolValue)
		if !ok {
			return fmt.Errorf("%w: atomic_store requires bool, got %s", ErrAtomicTypeMismatch, kindName(newValue))
		}
		r.val = incoming
		return nil
	default:
		return fmt.Errorf("%w: atomic operations not supported for %s", ErrAtomicTypeMismatch, kindName(r.val))
	}
}

// Add atomically adds delta to an integer cell, wrapping at the cell's
// width, and returns the value present before the addition.
func (r *RefValue) Add(delta Value) (Value, error) {
	return r.addSigned(delta, false)
}

// Sub atomically subtracts delta from an integer cell, returning the
// pre-subtraction value.
func (r *RefValue) Sub(delta Value) (Value, error) {
	return r.addSigned(delta, true)
}

func (r *RefValue) addSigned(delta Value, negate bool) (Value, error) {
	name := "atomic_add"
	if negate {
		name = "atomic_sub"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.val.(IntegerValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an integer cell, got %s", ErrAtomicTypeMismatch, name, kindName(r.val))
	}
	operand, ok := delta.(IntegerValue)
	if !ok || operand.TypeSuffix != current.TypeSuffix {
		return nil, fmt.Errorf("%w: %s requires %s, got %s", ErrAtomicTypeMismatch, name, current.TypeSuffix, describeOperand(delta))
	}
	old := IntegerValue{Val: CloneBigInt(current.Val), TypeSuffix: current.TypeSuffix}
	next := new(big.Int)
	if negate {
		next.Sub(current.Val, operand.Val)
	} else {
		next.Add(current.Val, operand.Val)
	}
	r.val = IntegerValue{Val: wrapToWidth(next, current.TypeSuffix), TypeSuffix: current.TypeSuffix}
	return old, nil
}

// CompareAndSwap atomically replaces the cell with desired when its current
// value equals expected. It always returns the value observed at the moment
// of comparison; the caller decides success by comparing that to expected.
func (r *RefValue) CompareAndSwap(expected, desired Value) (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch current := r.val.(type) {
	case IntegerValue:
		exp, expOk := expected.(IntegerValue)
		des, desOk := desired.(IntegerValue)
		if !expOk || !desOk || exp.TypeSuffix != current.TypeSuffix || des.TypeSuffix != current.TypeSuffix {
			return nil, fmt.Errorf("%w: atomic_cas requires matching %s operands", ErrAtomicTypeMismatch, current.TypeSuffix)
		}
		old := IntegerValue{Val: CloneBigInt(current.Val), TypeSuffix: current.TypeSuffix}
		if current.Val.Cmp(exp.Val) == 0 {
			r.val = IntegerValue{Val: wrapToWidth(des.Val, current.TypeSuffix), TypeSuffix: current.TypeSuffix}
		}
		return old, nil
	case BoolValue:
		exp, expOk := expected.(BoolValue)
		des, desOk := desired.(BoolValue)
		if !expOk || !desOk {
			return nil, fmt.Errorf("%w: atomic_cas requires matching bool operands", ErrAtomicTypeMismatch)
		}
		old := current
		if current.Val == exp.Val {
			r.val = des
		}
		return old, nil
	default:
		return nil, fmt.Errorf("%w: atomic operations not supported for %s", ErrAtomicTypeMismatch, kindName(r.val))
	}
}

// wrapToWidth reduces x to the two's-complement range of the given width,
// matching the wrapping arithmetic of Bulu's fixed-width integers. Unknown
// suffixes pass through untouched.
func wrapToWidth(x *big.Int, suffix IntegerType) *big.Int {
	bits := suffix.Bits()
	if bits == 0 || x == nil {
		return CloneBigInt(x)
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), bits)
	wrapped := new(big.Int).Mod(x, modulus)
	if suffix.Signed() {
		half := new(big.Int).Rsh(modulus, 1)
		if wrapped.Cmp(half) >= 0 {
			wrapped.Sub(wrapped, modulus)
		}
	}
	return wrapped
}

func kindName(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

func describeOperand(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return string(val.TypeSuffix)
	default:
		return kindName(v)
	}
}
