// Package engine is the capability boundary to the external WebAssembly
// runtime. The pipeline only ever talks to these interfaces; the single
// production implementation wraps the WasmEdge runtime through its Go
// binding. Nothing in this repository decodes, validates, or executes
// WebAssembly itself.
package engine

// VMOptions configures VM creation.
type VMOptions struct {
	// WASI registers and initializes the wasi_snapshot_preview1 host
	// module so modules importing it can be instantiated.
	WASI bool
}

// Engine creates the handles a pipeline run needs. Each create call either
// returns a usable handle or an error; a nil-handle condition inside the
// runtime surfaces as *ResourceError.
type Engine interface {
	// Version reports the underlying runtime's version string.
	Version() string

	NewParser() (Parser, error)
	NewValidator() (Validator, error)
	NewVM(opts VMOptions) (VM, error)
}

// Module is an in-memory parsed representation of a WebAssembly binary,
// owned by the engine. Callers only ever hold it between parse and
// validate, then release it.
type Module interface {
	// Close releases the module. Safe to call more than once.
	Close()
}

// Parser turns a binary file into a Module.
type Parser interface {
	ParseFile(path string) (Module, error)
	Close()
}

// Validator semantically validates a parsed Module.
type Validator interface {
	Validate(m Module) error
	Close()
}

// VM chains load, validate, and instantiate on a single engine VM. It is
// never asked to execute an exported function.
type VM interface {
	LoadFile(path string) error
	Validate() error
	Instantiate() error
	Close()
}
