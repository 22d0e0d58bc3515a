package main

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bulu/runtime-go/pkg/builtins"
	"bulu/runtime-go/pkg/driver"
	"bulu/runtime-go/pkg/runtime"
)

const cliToolVersion = "bulurt 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "builtins":
		return runBuiltins(args[1:])
	case "run":
		return runScenarios(args[1:])
	default:
		return runScenarios(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: bulurt <command> [arguments]

commands:
  run <scenario.yml> [...]   execute scenario files against the runtime
  builtins                   list the registered builtin functions
  version                    print the tool version

options for run:
  -v, --verbose              log each step as it executes
  -q, --quiet                log only errors`)
}

func runScenarios(args []string) int {
	verbose := false
	quiet := false
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		switch arg {
		case "--verbose", "-v":
			verbose = true
		case "--quiet", "-q":
			quiet = true
		default:
			paths = append(paths, arg)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "bulurt run requires at least one scenario file")
		return 1
	}

	logger, err := newLogger(verbose, quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logging: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	// One runner for the whole invocation so scenarios can observe shared
	// registry state such as monotonically increasing channel ids.
	runner := driver.NewRunner(nil, logger)
	for _, path := range paths {
		scenario, err := driver.LoadScenario(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		bindings, err := runner.Run(scenario)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		printBindings(scenario.Name, bindings)
	}
	return 0
}

func printBindings(scenario string, bindings map[string]runtime.Value) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "%s: %s = %s\n", scenario, name, driver.FormatValue(bindings[name]))
	}
}

func runBuiltins(args []string) int {
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "bulurt builtins takes no arguments\n")
		return 1
	}
	for _, name := range builtins.New().Names() {
		fmt.Fprintln(os.Stdout, name)
	}
	return 0
}

func newLogger(verbose, quiet bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	switch {
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	return cfg.Build()
}
