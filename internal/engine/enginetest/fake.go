// Package enginetest provides a configurable in-memory Engine for tests.
// Failures are injected per stage, and every handle counts its Close calls
// so tests can assert release discipline.
package enginetest

import (
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/engine"
)

// Fake implements engine.Engine. The zero value succeeds at every stage.
type Fake struct {
	// Per-stage injected failures. nil means the stage succeeds.
	ParseErr       error
	ValidateErr    error
	LoadErr        error
	VMValidateErr  error
	InstantiateErr error

	// Creation failures. When set, the corresponding New* call returns a
	// *engine.ResourceError and no handle is handed out.
	ParserUnavailable    bool
	ValidatorUnavailable bool
	VMUnavailable        bool

	// Handles records every handle handed out, in creation order.
	Handles []*Handle

	// LastVMOptions holds the options of the most recent NewVM call.
	LastVMOptions engine.VMOptions
}

// Handle tracks Close calls for one handed-out resource.
type Handle struct {
	Kind   string // "parser", "validator", "vm", "module"
	Closes int
}

func (f *Fake) track(kind string) *Handle {
	h := &Handle{Kind: kind}
	f.Handles = append(f.Handles, h)
	return h
}

// OpenHandles returns the handles that were never closed.
func (f *Fake) OpenHandles() []*Handle {
	var open []*Handle
	for _, h := range f.Handles {
		if h.Closes == 0 {
			open = append(open, h)
		}
	}
	return open
}

func (f *Fake) Version() string { return "0.0.0-fake" }

func (f *Fake) NewParser() (engine.Parser, error) {
	if f.ParserUnavailable {
		return nil, &engine.ResourceError{Resource: "parser context"}
	}
	return &fakeParser{fake: f, handle: f.track("parser")}, nil
}

func (f *Fake) NewValidator() (engine.Validator, error) {
	if f.ValidatorUnavailable {
		return nil, &engine.ResourceError{Resource: "validator context"}
	}
	return &fakeValidator{fake: f, handle: f.track("validator")}, nil
}

func (f *Fake) NewVM(opts engine.VMOptions) (engine.VM, error) {
	f.LastVMOptions = opts
	if f.VMUnavailable {
		return nil, &engine.ResourceError{Resource: "VM context"}
	}
	return &fakeVM{fake: f, handle: f.track("vm")}, nil
}

type fakeParser struct {
	fake   *Fake
	handle *Handle
}

func (p *fakeParser) ParseFile(path string) (engine.Module, error) {
	if err := p.fake.ParseErr; err != nil {
		return nil, err
	}
	return &fakeModule{handle: p.fake.track("module")}, nil
}

func (p *fakeParser) Close() { p.handle.Closes++ }

type fakeValidator struct {
	fake   *Fake
	handle *Handle
}

func (v *fakeValidator) Validate(m engine.Module) error {
	return v.fake.ValidateErr
}

func (v *fakeValidator) Close() { v.handle.Closes++ }

type fakeModule struct {
	handle *Handle
}

func (m *fakeModule) Close() { m.handle.Closes++ }

type fakeVM struct {
	fake   *Fake
	handle *Handle
}

func (v *fakeVM) LoadFile(path string) error { return v.fake.LoadErr }
func (v *fakeVM) Validate() error            { return v.fake.VMValidateErr }
func (v *fakeVM) Instantiate() error         { return v.fake.InstantiateErr }
func (v *fakeVM) Close()                     { v.handle.Closes++ }
