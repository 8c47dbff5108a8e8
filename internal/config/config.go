// Package config carries the per-invocation settings resolved from the
// command line. The tool deliberately has no config file; everything comes
// from flags and is threaded through as an explicit value rather than
// process-global state.
package config

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is resolved once at startup and read-only afterwards.
type Config struct {
	// Verbose enables debug-level tracing of each pipeline step.
	Verbose bool

	// WASI makes instantiation register and initialize the WASI host
	// module so wasi_snapshot_preview1 imports resolve.
	WASI bool
}

// Logger builds the logger for this invocation. Verbose traces go to the
// given error stream so callers that inject their own writers capture
// them; non-verbose runs get a no-op logger so nothing but the report
// protocol reaches the terminal.
func (c Config) Logger(errw io.Writer) *zap.Logger {
	if !c.Verbose {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(errw), zapcore.DebugLevel)
	return zap.New(core)
}
