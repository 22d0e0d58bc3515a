package runtime

import (
	"fmt"
	"math/big"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindChar
	KindNull
	KindInteger
	KindFloat
	KindChannel
	KindLock
	KindRef
	KindError
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindChannel:
		return "channel"
	case KindLock:
		return "lock"
	case KindRef:
		return "ref"
	case KindError:
		return "error"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type CharValue struct {
	Val rune
}

func (v CharValue) Kind() Kind { return KindChar }

// NullValue is Bulu's null.
type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// Integer sub-types mirror Bulu's width suffixes.
type IntegerType string

const (
	IntegerI8  IntegerType = "i8"
	IntegerI16 IntegerType = "i16"
	IntegerI32 IntegerType = "i32"
	IntegerI64 IntegerType = "i64"
	IntegerU8  IntegerType = "u8"
	IntegerU16 IntegerType = "u16"
	IntegerU32 IntegerType = "u32"
	IntegerU64 IntegerType = "u64"
)

type IntegerValue struct {
	Val        *big.Int
	TypeSuffix IntegerType
}

func (v IntegerValue) Kind() Kind { return KindInteger }

// Signed reports whether the suffix denotes a signed width.
func (t IntegerType) Signed() bool {
	switch t {
	case IntegerI8, IntegerI16, IntegerI32, IntegerI64:
		return true
	default:
		return false
	}
}

// Bits returns the width in bits, or 0 for an unknown suffix.
func (t IntegerType) Bits() uint {
	switch t {
	case IntegerI8, IntegerU8:
		return 8
	case IntegerI16, IntegerU16:
		return 16
	case IntegerI32, IntegerU32:
		return 32
	case IntegerI64, IntegerU64:
		return 64
	default:
		return 0
	}
}

// Float sub-types.
type FloatType string

const (
	FloatF32 FloatType = "f32"
	FloatF64 FloatType = "f64"
)

type FloatValue struct {
	Val        float64
	TypeSuffix FloatType
}

func (v FloatValue) Kind() Kind { return KindFloat }

//-----------------------------------------------------------------------------
// Concurrency handles
//-----------------------------------------------------------------------------

// ChannelValue is the language-level handle onto a registered channel. Two
// handles with the same ID share the underlying buffer and closed flag; the
// Direction field is a capability view, not a separate channel.
type ChannelValue struct {
	ID        uint64
	Chan      *Channel
	Direction Direction
}

func (v ChannelValue) Kind() Kind { return KindChannel }

// LockValue is the language-level handle onto a registered lock.
type LockValue struct {
	ID   uint64
	Lock *Lock
}

func (v LockValue) Kind() Kind { return KindLock }

//-----------------------------------------------------------------------------
// Errors & natives
//-----------------------------------------------------------------------------

type ErrorValue struct {
	Message string
}

func (v ErrorValue) Kind() Kind { return KindError }

func (v ErrorValue) Error() string { return v.Message }

// NativeCallContext provides hooks for native functions invoked by the
// embedding interpreter.
type NativeCallContext struct{}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunctionValue wraps a Go-implemented builtin. Arity -1 marks a
// variadic builtin that validates its own argument count.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// CloneBigInt copies the provided big.Int pointer, tolerating nil.
func CloneBigInt(src *big.Int) *big.Int {
	if src == nil {
		return nil
	}
	return new(big.Int).Set(src)
}

// NewInteger builds an IntegerValue from an int64, normalised to the width
// named by the suffix.
func NewInteger(val int64, suffix IntegerType) IntegerValue {
	return IntegerValue{Val: wrapToWidth(big.NewInt(val), suffix), TypeSuffix: suffix}
}

// Truthy reports how a value behaves in boolean position. Channel and lock
// handles are always truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case BoolValue:
		return val.Val
	case NullValue:
		return false
	case IntegerValue:
		return val.Val != nil && val.Val.Sign() != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	default:
		return true
	}
}
