package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/second-state/WasmEdge-go/wasmedge"
)

// WasmEdge implements Engine on top of the WasmEdge runtime. Handles map
// one-to-one onto the binding's Loader, Validator, VM, and AST objects,
// and Close releases the underlying context exactly once.
type WasmEdge struct{}

// NewWasmEdge returns the WasmEdge-backed engine.
func NewWasmEdge() *WasmEdge { return &WasmEdge{} }

func (*WasmEdge) Version() string { return wasmedge.GetVersion() }

func (*WasmEdge) NewParser() (Parser, error) {
	loader := wasmedge.NewLoader()
	if loader == nil {
		return nil, &ResourceError{Resource: "parser context"}
	}
	return &wasmEdgeParser{loader: loader}, nil
}

func (*WasmEdge) NewValidator() (Validator, error) {
	validator := wasmedge.NewValidator()
	if validator == nil {
		return nil, &ResourceError{Resource: "validator context"}
	}
	return &wasmEdgeValidator{validator: validator}, nil
}

func (*WasmEdge) NewVM(opts VMOptions) (VM, error) {
	var conf *wasmedge.Configure
	var vm *wasmedge.VM
	if opts.WASI {
		conf = wasmedge.NewConfigure(wasmedge.WASI)
		vm = wasmedge.NewVMWithConfig(conf)
	} else {
		vm = wasmedge.NewVM()
	}
	if vm == nil {
		if conf != nil {
			conf.Release()
		}
		return nil, &ResourceError{Resource: "VM context"}
	}
	if opts.WASI {
		wasi := vm.GetImportModule(wasmedge.WASI)
		wasi.InitWasi(nil, os.Environ(), nil)
	}
	return &wasmEdgeVM{vm: vm, conf: conf}, nil
}

type wasmEdgeParser struct {
	loader *wasmedge.Loader
}

func (p *wasmEdgeParser) ParseFile(path string) (Module, error) {
	ast, err := p.loader.LoadFile(path)
	if err != nil {
		return nil, wrapResult(err)
	}
	return &wasmEdgeModule{ast: ast}, nil
}

func (p *wasmEdgeParser) Close() {
	if p.loader != nil {
		p.loader.Release()
		p.loader = nil
	}
}

type wasmEdgeValidator struct {
	validator *wasmedge.Validator
}

func (v *wasmEdgeValidator) Validate(m Module) error {
	mod, ok := m.(*wasmEdgeModule)
	if !ok || mod.ast == nil {
		return fmt.Errorf("module was not produced by the WasmEdge parser")
	}
	return wrapResult(v.validator.Validate(mod.ast))
}

func (v *wasmEdgeValidator) Close() {
	if v.validator != nil {
		v.validator.Release()
		v.validator = nil
	}
}

type wasmEdgeModule struct {
	ast *wasmedge.AST
}

func (m *wasmEdgeModule) Close() {
	if m.ast != nil {
		m.ast.Release()
		m.ast = nil
	}
}

type wasmEdgeVM struct {
	vm   *wasmedge.VM
	conf *wasmedge.Configure
}

func (v *wasmEdgeVM) LoadFile(path string) error {
	return wrapResult(v.vm.LoadWasmFile(path))
}

func (v *wasmEdgeVM) Validate() error {
	return wrapResult(v.vm.Validate())
}

func (v *wasmEdgeVM) Instantiate() error {
	return wrapResult(v.vm.Instantiate())
}

func (v *wasmEdgeVM) Close() {
	if v.vm != nil {
		v.vm.Release()
		v.vm = nil
	}
	if v.conf != nil {
		v.conf.Release()
		v.conf = nil
	}
}

// wrapResult converts a WasmEdge result into *Error, preserving the
// runtime's numeric code when the binding exposes one.
func wrapResult(err error) error {
	if err == nil {
		return nil
	}
	var coded interface{ GetCode() int }
	if errors.As(err, &coded) {
		return NewError(uint32(coded.GetCode()), err.Error())
	}
	return NewError(0, err.Error())
}
