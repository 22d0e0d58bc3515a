// Package builtins exposes the Bulu runtime concurrency primitives to the
// interpreter as a name -> native function table. Every entry validates
// arity and dynamic argument types before touching the registries, and every
// failure comes back as an ordinary error value rather than a panic.
package builtins

import (
	"sort"

	"bulu/runtime-go/pkg/runtime"
)

// Registry is the sole call surface language code can reach. It owns the
// process-wide channel and lock registries.
type Registry struct {
	functions map[string]runtime.NativeFunctionValue
	channels  *runtime.ChannelRegistry
	locks     *runtime.LockRegistry
}

// New constructs a registry with every builtin registered.
func New() *Registry {
	r := &Registry{
		functions: make(map[string]runtime.NativeFunctionValue),
		channels:  runtime.NewChannelRegistry(),
		locks:     runtime.NewLockRegistry(),
	}
	r.registerChannelBuiltins()
	r.registerSyncBuiltins()
	r.registerAtomicBuiltins()
	r.registerIntrospectionBuiltins()
	return r
}

// Register adds or replaces a builtin. Embedders may use it to extend the
// table with host-specific natives.
func (r *Registry) Register(fn runtime.NativeFunctionValue) {
	r.functions[fn.Name] = fn
}

// Get returns the builtin registered under name.
func (r *Registry) Get(name string) (runtime.NativeFunctionValue, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// IsBuiltin reports whether name is registered.
func (r *Registry) IsBuiltin(name string) bool {
	_, ok := r.functions[name]
	return ok
}

// Names returns all registered builtin names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Channels exposes the owned channel registry to the embedder.
func (r *Registry) Channels() *runtime.ChannelRegistry { return r.channels }

// Locks exposes the owned lock registry to the embedder.
func (r *Registry) Locks() *runtime.LockRegistry { return r.locks }

// Call invokes a builtin by name after checking its declared arity.
func (r *Registry) Call(name string, args []runtime.Value) (runtime.Value, error) {
	fn, ok := r.Get(name)
	if !ok {
		return nil, &UnknownBuiltinError{Name: name}
	}
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return nil, countError(name, exactly(fn.Arity), len(args))
	}
	return fn.Impl(&runtime.NativeCallContext{}, args)
}

// UnknownBuiltinError reports a call to a name with no registered builtin.
type UnknownBuiltinError struct {
	Name string
}

func (e *UnknownBuiltinError) Error() string {
	return "unknown builtin: " + e.Name
}
