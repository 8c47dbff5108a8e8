// Package pipeline sequences engine calls for each subcommand, stopping at
// the first failing stage. Every handle acquired during a run is released
// before the run returns, on every exit path.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/engine"
)

// Command identifies which subcommand produced a Result.
type Command int

const (
	CommandParse Command = iota
	CommandValidate
	CommandInstantiate
)

func (c Command) String() string {
	switch c {
	case CommandParse:
		return "PARSE"
	case CommandValidate:
		return "VALIDATE"
	case CommandInstantiate:
		return "INSTANTIATE"
	}
	return "UNKNOWN"
}

// Stage is one discrete step in a subcommand's sequence. A resource
// creation failure carries the stage the resource was created for.
type Stage string

const (
	StageParse       Stage = "Parse"
	StageValidate    Stage = "Validate"
	StageLoad        Stage = "Load"
	StageInstantiate Stage = "Instantiate"
)

// Result is the outcome of one pipeline run. It is immutable once
// returned and consumed once by the reporter.
type Result struct {
	Command Command
	File    string
	Stage   Stage
	Err     error
}

// OK reports whether the run reached its terminal stage.
func (r Result) OK() bool { return r.Err == nil }

// Runner executes stage sequences against an engine. Single-threaded and
// synchronous: each engine call blocks, is attempted exactly once, and a
// failure is terminal for the invocation.
type Runner struct {
	eng engine.Engine
	log *zap.Logger
}

// New returns a Runner. A nil logger is replaced with a no-op one.
func New(eng engine.Engine, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{eng: eng, log: log}
}

// Parse runs [create parser, parse file].
func (r *Runner) Parse(path string) Result {
	res := Result{Command: CommandParse, File: path}
	r.logStart(path)

	r.log.Debug("creating parser context")
	parser, err := r.eng.NewParser()
	if err != nil {
		return fail(res, StageParse, err)
	}
	defer parser.Close()

	r.log.Debug("parsing WebAssembly module")
	mod, err := parser.ParseFile(path)
	if err != nil {
		return fail(res, StageParse, err)
	}
	defer mod.Close()

	r.log.Debug("parse completed")
	return res
}

// Validate runs [create parser, parse file, create validator, validate].
// A parse-stage failure remains distinguishable from a validation failure
// through the Result's Stage.
func (r *Runner) Validate(path string) Result {
	res := Result{Command: CommandValidate, File: path}
	r.logStart(path)

	r.log.Debug("creating parser context")
	parser, err := r.eng.NewParser()
	if err != nil {
		return fail(res, StageParse, err)
	}
	defer parser.Close()

	r.log.Debug("parsing WebAssembly module")
	mod, err := parser.ParseFile(path)
	if err != nil {
		return fail(res, StageParse, err)
	}
	defer mod.Close()

	r.log.Debug("creating validator context")
	validator, err := r.eng.NewValidator()
	if err != nil {
		return fail(res, StageValidate, err)
	}
	defer validator.Close()

	r.log.Debug("validating WebAssembly module")
	if err := validator.Validate(mod); err != nil {
		return fail(res, StageValidate, err)
	}

	r.log.Debug("validation completed")
	return res
}

// Instantiate runs [create VM, load file, validate, instantiate]. It never
// calls an exported function; success only means the module reached a
// ready, instantiated state.
func (r *Runner) Instantiate(path string, opts engine.VMOptions) Result {
	res := Result{Command: CommandInstantiate, File: path}
	r.logStart(path)

	r.log.Debug("creating VM context", zap.Bool("wasi", opts.WASI))
	vm, err := r.eng.NewVM(opts)
	if err != nil {
		return fail(res, StageLoad, err)
	}
	defer vm.Close()

	r.log.Debug("loading WebAssembly module")
	if err := vm.LoadFile(path); err != nil {
		return fail(res, StageLoad, err)
	}

	r.log.Debug("validating loaded module")
	if err := vm.Validate(); err != nil {
		return fail(res, StageValidate, err)
	}

	r.log.Debug("instantiating module")
	if err := vm.Instantiate(); err != nil {
		return fail(res, StageInstantiate, err)
	}

	r.log.Debug("instantiation completed")
	return res
}

func (r *Runner) logStart(path string) {
	r.log.Debug("engine ready",
		zap.String("version", r.eng.Version()),
		zap.String("file", path))
}

func fail(res Result, stage Stage, err error) Result {
	res.Stage = stage
	res.Err = err
	return res
}
