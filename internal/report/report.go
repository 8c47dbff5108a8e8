// Package report renders pipeline results in the tool's fixed textual
// protocol. The line set is a scripting surface: tokens and spacing must
// not change.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/engine"
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/pipeline"
)

// Reporter writes success blocks to Out and failure blocks to Err.
type Reporter struct {
	Out io.Writer
	Err io.Writer
}

// New returns a Reporter over the given streams.
func New(out, errw io.Writer) *Reporter {
	return &Reporter{Out: out, Err: errw}
}

// Report renders one result and reports whether it was a success.
func (r *Reporter) Report(res pipeline.Result) bool {
	if res.OK() {
		fmt.Fprintf(r.Out, "[%s]\nFile   : %s\nStatus : %s\n",
			res.Command, res.File, successStatus(res.Command))
		return true
	}
	fmt.Fprintf(r.Err, "[%s]\nFile   : %s\nStatus : %s\nError  : %s\n",
		res.Command, res.File, failureStatus(res), res.Err)
	return false
}

// successStatus is the fixed per-command success token.
func successStatus(c pipeline.Command) string {
	switch c {
	case pipeline.CommandValidate:
		return "VALID"
	case pipeline.CommandInstantiate:
		return "READY"
	default:
		return "SUCCESS"
	}
}

// failureStatus picks the failure token from the command and failing
// stage. Resource-creation failures are always plain FAILED.
func failureStatus(res pipeline.Result) string {
	var rerr *engine.ResourceError
	if errors.As(res.Err, &rerr) {
		return "FAILED"
	}
	switch res.Command {
	case pipeline.CommandValidate:
		if res.Stage == pipeline.StageParse {
			return "FAILED (Parse Error)"
		}
		return "INVALID"
	case pipeline.CommandInstantiate:
		switch res.Stage {
		case pipeline.StageLoad:
			return "FAILED (Load Error)"
		case pipeline.StageValidate:
			return "FAILED (Validation Error)"
		default:
			return "FAILED (Instantiation Error)"
		}
	default:
		return "FAILED"
	}
}
