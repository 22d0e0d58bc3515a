package driver

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"bulu/runtime-go/pkg/runtime"
)

// Scenario is a scripted sequence of builtin calls parsed from YAML. It is
// the driver's unit of work: load a scenario, hand it to a Runner, and the
// runner executes each step against a builtin registry.
type Scenario struct {
	Path  string
	Name  string
	Steps []*Step
}

// Step is a single builtin invocation. Args may reference the result of an
// earlier step through a $name placeholder. Bind stores the result under a
// name for later steps, Expect asserts on the result, and Async runs the
// call on its own goroutine so a blocking send or receive can pair with a
// later step.
type Step struct {
	Call   string
	Args   []Argument
	Bind   string
	Expect *Expectation
	Async  bool
}

// Argument is either a literal runtime value or a reference to a binding
// established by an earlier step.
type Argument struct {
	ref     string
	literal runtime.Value
}

// Ref returns the referenced binding name, or "" for a literal argument.
func (a Argument) Ref() string { return a.ref }

// Literal returns the literal value, or nil for a reference argument.
func (a Argument) Literal() runtime.Value { return a.literal }

var integerLiteralPattern = regexp.MustCompile(`^(-?[0-9]+)(i8|i16|i32|i64|u8|u16|u32|u64)$`)

func (a *Argument) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.AliasNode:
		return a.UnmarshalYAML(value.Alias)
	case yaml.ScalarNode:
	default:
		return fmt.Errorf("scenario: arguments must be scalars, found %s", value.ShortTag())
	}

	switch value.Tag {
	case "!!null":
		a.literal = runtime.NullValue{}
		return nil
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		a.literal = runtime.BoolValue{Val: b}
		return nil
	case "!!int":
		var n int64
		if err := value.Decode(&n); err != nil {
			return err
		}
		a.literal = runtime.NewInteger(n, runtime.IntegerI32)
		return nil
	case "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		a.literal = runtime.FloatValue{Val: f, TypeSuffix: runtime.FloatF64}
		return nil
	case "!!str":
		text := value.Value
		if strings.HasPrefix(text, "$") {
			name := strings.TrimPrefix(text, "$")
			if name == "" {
				return fmt.Errorf("scenario: empty binding reference")
			}
			a.ref = name
			return nil
		}
		if match := integerLiteralPattern.FindStringSubmatch(text); match != nil {
			digits, ok := new(big.Int).SetString(match[1], 10)
			if !ok || !digits.IsInt64() {
				return fmt.Errorf("scenario: integer literal %q out of range", text)
			}
			a.literal = runtime.NewInteger(digits.Int64(), runtime.IntegerType(match[2]))
			return nil
		}
		a.literal = runtime.StringValue{Val: text}
		return nil
	default:
		return fmt.Errorf("scenario: unsupported argument tag %s", value.ShortTag())
	}
}

// Expectation asserts on a step result. It accepts the same literal forms
// as arguments; integer comparisons ignore the width suffix so a plain
// YAML integer matches a result of any integral width.
type Expectation struct {
	value runtime.Value
}

func (e *Expectation) UnmarshalYAML(value *yaml.Node) error {
	var arg Argument
	if err := arg.UnmarshalYAML(value); err != nil {
		return err
	}
	if arg.ref != "" {
		return fmt.Errorf("scenario: expectations must be literals, found reference $%s", arg.ref)
	}
	e.value = arg.literal
	return nil
}

// Matches reports whether the result satisfies the expectation.
func (e *Expectation) Matches(result runtime.Value) bool {
	if e == nil {
		return true
	}
	switch want := e.value.(type) {
	case runtime.NullValue:
		_, ok := result.(runtime.NullValue)
		return ok
	case runtime.BoolValue:
		got, ok := result.(runtime.BoolValue)
		return ok && got.Val == want.Val
	case runtime.IntegerValue:
		got, ok := result.(runtime.IntegerValue)
		return ok && got.Val != nil && want.Val != nil && got.Val.Cmp(want.Val) == 0
	case runtime.FloatValue:
		got, ok := result.(runtime.FloatValue)
		return ok && got.Val == want.Val
	case runtime.StringValue:
		got, ok := result.(runtime.StringValue)
		return ok && got.Val == want.Val
	default:
		return false
	}
}

// Want returns the expected value.
func (e *Expectation) Want() runtime.Value { return e.value }

// ValidationError aggregates scenario validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "scenario: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("scenario validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type scenarioFile struct {
	Name  string     `yaml:"name"`
	Steps []stepYAML `yaml:"steps"`
}

type stepYAML struct {
	Call   string       `yaml:"call"`
	Args   []Argument   `yaml:"args"`
	Bind   string       `yaml:"bind"`
	Expect *Expectation `yaml:"expect"`
	Async  bool         `yaml:"async"`
}

// LoadScenario parses a scenario file from disk, returning a validated
// scenario.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		return nil, fmt.Errorf("scenario: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", absPath, err)
	}
	defer file.Close()

	return ParseScenario(file, absPath)
}

// ParseScenario decodes and validates a scenario from a reader. The path is
// recorded on the result for error reporting and may be empty.
func ParseScenario(r io.Reader, path string) (*Scenario, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw scenarioFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario: %s is empty", path)
		}
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}

	scenario := &Scenario{
		Path: path,
		Name: strings.TrimSpace(raw.Name),
	}
	for _, step := range raw.Steps {
		scenario.Steps = append(scenario.Steps, &Step{
			Call:   strings.TrimSpace(step.Call),
			Args:   step.Args,
			Bind:   strings.TrimSpace(step.Bind),
			Expect: step.Expect,
			Async:  step.Async,
		})
	}
	if err := scenario.validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

var bindNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *Scenario) validate() error {
	var errs ValidationError
	if s.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if len(s.Steps) == 0 {
		errs.Issues = append(errs.Issues, "steps must not be empty")
	}

	bound := make(map[string]struct{}, len(s.Steps))
	for i, step := range s.Steps {
		label := fmt.Sprintf("steps[%d]", i)
		if step.Call == "" {
			errs.Issues = append(errs.Issues, label+": call must be provided")
		}
		if step.Bind != "" && !bindNamePattern.MatchString(step.Bind) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: bind %q is not a valid identifier", label, step.Bind))
		}
		if step.Async && (step.Bind != "" || step.Expect != nil) {
			errs.Issues = append(errs.Issues, label+": async steps cannot bind or expect results")
		}
		for j, arg := range step.Args {
			if arg.ref == "" {
				continue
			}
			if _, ok := bound[arg.ref]; !ok {
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s.args[%d]: reference $%s is not bound by an earlier step", label, j, arg.ref))
			}
		}
		if step.Bind != "" && !step.Async {
			bound[step.Bind] = struct{}{}
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
