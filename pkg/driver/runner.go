package driver

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"bulu/runtime-go/pkg/builtins"
	"bulu/runtime-go/pkg/runtime"
)

// Runner executes scenarios against a builtin registry. A single runner may
// run several scenarios in sequence; channel and lock ids keep counting up
// across them because they share the registry.
type Runner struct {
	registry *builtins.Registry
	logger   *zap.Logger
}

// NewRunner builds a runner. A nil registry gets a fresh one, a nil logger
// is replaced with a no-op logger.
func NewRunner(registry *builtins.Registry, logger *zap.Logger) *Runner {
	if registry == nil {
		registry = builtins.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{registry: registry, logger: logger}
}

// Registry exposes the underlying builtin registry.
func (r *Runner) Registry() *builtins.Registry { return r.registry }

// Run executes the scenario's steps in order and returns the final value of
// every bound name. Async steps run on their own goroutines; Run waits for
// all of them before returning, so an async send must be paired with a
// receive somewhere in the scenario or the run will block.
func (r *Runner) Run(s *Scenario) (map[string]runtime.Value, error) {
	if s == nil {
		return nil, errors.New("scenario: nil scenario")
	}
	log := r.logger.With(zap.String("scenario", s.Name))
	bindings := make(map[string]runtime.Value)

	var wg sync.WaitGroup
	var asyncMu sync.Mutex
	var asyncErr error

	for i, step := range s.Steps {
		args, err := resolveArgs(step.Args, bindings)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", s.Name, i+1, step.Call, err)
		}

		if step.Async {
			wg.Add(1)
			go func(index int, call string, args []runtime.Value) {
				defer wg.Done()
				if _, err := r.registry.Call(call, args); err != nil {
					log.Error("async step failed", zap.Int("step", index), zap.String("call", call), zap.Error(err))
					asyncMu.Lock()
					if asyncErr == nil {
						asyncErr = fmt.Errorf("scenario %s: step %d (%s): %w", s.Name, index, call, err)
					}
					asyncMu.Unlock()
				}
			}(i+1, step.Call, args)
			continue
		}

		log.Debug("calling builtin", zap.Int("step", i+1), zap.String("call", step.Call))
		result, err := r.registry.Call(step.Call, args)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", s.Name, i+1, step.Call, err)
		}
		if !step.Expect.Matches(result) {
			return nil, fmt.Errorf("scenario %s: step %d (%s): result %s does not match expected %s",
				s.Name, i+1, step.Call, FormatValue(result), FormatValue(step.Expect.Want()))
		}
		if step.Bind != "" {
			bindings[step.Bind] = result
		}
	}

	wg.Wait()
	asyncMu.Lock()
	err := asyncErr
	asyncMu.Unlock()
	if err != nil {
		return nil, err
	}

	log.Info("scenario complete", zap.Int("steps", len(s.Steps)), zap.Int("bindings", len(bindings)))
	return bindings, nil
}

func resolveArgs(args []Argument, bindings map[string]runtime.Value) ([]runtime.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]runtime.Value, 0, len(args))
	for _, arg := range args {
		if name := arg.Ref(); name != "" {
			value, ok := bindings[name]
			if !ok {
				return nil, fmt.Errorf("unbound reference $%s", name)
			}
			out = append(out, value)
			continue
		}
		out = append(out, arg.Literal())
	}
	return out, nil
}

// FormatValue renders a runtime value for logs and error messages.
func FormatValue(v runtime.Value) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case runtime.NullValue:
		return "null"
	case runtime.BoolValue:
		return strconv.FormatBool(val.Val)
	case runtime.IntegerValue:
		if val.Val == nil {
			return string(val.TypeSuffix)
		}
		return val.Val.String() + string(val.TypeSuffix)
	case runtime.FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64) + string(val.TypeSuffix)
	case runtime.StringValue:
		return strconv.Quote(val.Val)
	case runtime.CharValue:
		return strconv.QuoteRune(val.Val)
	case runtime.ChannelValue:
		return fmt.Sprintf("channel#%d", val.ID)
	case runtime.LockValue:
		return fmt.Sprintf("lock#%d", val.ID)
	default:
		return v.Kind().String()
	}
}
