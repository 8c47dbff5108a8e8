// wasm-inspektor is a command-line front-end over the WasmEdge runtime:
// it parses, validates, or instantiates a WebAssembly module and reports
// the outcome in a fixed textual protocol.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/config"
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/engine"
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/pipeline"
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/report"
)

const version = "0.1.0"

// Exit codes, consistent across all commands.
const (
	exitOK           = 0
	exitCLIError     = 1
	exitRuntimeError = 2
)

// errPipelineFailed marks a run the reporter has already printed; run only
// maps it to the runtime exit code.
var errPipelineFailed = errors.New("pipeline failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, engine.NewWasmEdge()))
}

// run is separated out for the purpose of unit testing.
func run(args []string, stdout, stderr io.Writer, eng engine.Engine) int {
	root := newRootCmd(stdout, stderr, eng)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errPipelineFailed) {
			return exitRuntimeError
		}
		return exitCLIError
	}
	return exitOK
}

func newRootCmd(stdout, stderr io.Writer, eng engine.Engine) *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:   "wasm-inspektor [flags] <command> <file.wasm>",
		Short: "Inspect WebAssembly modules with the WasmEdge runtime",
		Long: `wasm-inspektor drives the WasmEdge runtime's loader, validator, and VM
against a WebAssembly binary and reports the outcome.

Examples:
  wasm-inspektor parse example.wasm
  wasm-inspektor validate example.wasm
  wasm-inspektor --verbose instantiate example.wasm`,
		Version: version,
		// Unknown subcommands are rejected by cobra before this runs, so
		// reaching here means no command at all.
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("no command specified")
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf(
		"wasm-inspektor version {{.Version}}\nWasmEdge version: %s\n", eng.Version()))
	root.PersistentFlags().BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")

	root.AddCommand(newParseCmd(cfg, stdout, stderr, eng))
	root.AddCommand(newValidateCmd(cfg, stdout, stderr, eng))
	root.AddCommand(newInstantiateCmd(cfg, stdout, stderr, eng))
	return root
}

func newParseCmd(cfg *config.Config, stdout, stderr io.Writer, eng engine.Engine) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.wasm>",
		Short: "Parse a WebAssembly module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubcommand(cmd, *cfg, stdout, stderr, eng, args[0],
				func(r *pipeline.Runner, path string) pipeline.Result {
					return r.Parse(path)
				})
		},
	}
}

func newValidateCmd(cfg *config.Config, stdout, stderr io.Writer, eng engine.Engine) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.wasm>",
		Short: "Validate a WebAssembly module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubcommand(cmd, *cfg, stdout, stderr, eng, args[0],
				func(r *pipeline.Runner, path string) pipeline.Result {
					return r.Validate(path)
				})
		},
	}
}

func newInstantiateCmd(cfg *config.Config, stdout, stderr io.Writer, eng engine.Engine) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instantiate <file.wasm>",
		Short: "Instantiate a WebAssembly module",
		Long: `Loads, validates, and instantiates a module on an engine VM. No exported
function is executed; success means the module reached a ready state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubcommand(cmd, *cfg, stdout, stderr, eng, args[0],
				func(r *pipeline.Runner, path string) pipeline.Result {
					return r.Instantiate(path, engine.VMOptions{WASI: cfg.WASI})
				})
		},
	}
	cmd.Flags().BoolVar(&cfg.WASI, "wasi", false, "Initialize the WASI host module before instantiation")
	return cmd
}

// runSubcommand checks the file, then hands off to the pipeline and the
// reporter. CLI errors return as plain errors (cobra prints them, exit 1);
// pipeline failures return errPipelineFailed after the reporter has
// already written the failure block (exit 2).
func runSubcommand(cmd *cobra.Command, cfg config.Config, stdout, stderr io.Writer,
	eng engine.Engine, path string, runStage func(*pipeline.Runner, string) pipeline.Result) error {
	// Argument parsing is done; usage text would only obscure the error.
	cmd.SilenceUsage = true

	if err := checkFile(stderr, path); err != nil {
		return err
	}

	logger := cfg.Logger(stderr)
	defer func() { _ = logger.Sync() }()

	res := runStage(pipeline.New(eng, logger), path)
	if !report.New(stdout, stderr).Report(res) {
		cmd.SilenceErrors = true
		return errPipelineFailed
	}
	return nil
}

// checkFile rejects missing paths before any engine resource is created
// and warns (non-fatally) about unexpected extensions.
func checkFile(stderr io.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("file not found: %s", path)
	}
	if !strings.HasSuffix(path, ".wasm") {
		fmt.Fprintf(stderr, "Warning: file does not have .wasm extension: %s\n", path)
	}
	return nil
}
