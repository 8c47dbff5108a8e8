package pipeline_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/engine"
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/engine/enginetest"
	"github.com/mrhapile/Wasm-Runtime-Inspektor/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// The release invariant: everything handed out got closed exactly once.
func assertAllClosedOnce(t *testing.T, fake *enginetest.Fake) {
	t.Helper()
	require.NotEmpty(t, fake.Handles, "expected at least one handle to be acquired")
	for _, h := range fake.Handles {
		assert.Equalf(t, 1, h.Closes, "%s handle closed %d times", h.Kind, h.Closes)
	}
}

func TestParse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &enginetest.Fake{}
		res := pipeline.New(fake, nil).Parse("x.wasm")

		assert.True(t, res.OK())
		assert.Equal(t, pipeline.CommandParse, res.Command)
		assert.Equal(t, "x.wasm", res.File)
		assertAllClosedOnce(t, fake)
	})

	t.Run("engine rejects module", func(t *testing.T) {
		fake := &enginetest.Fake{ParseErr: engine.NewError(2, "invalid magic")}
		res := pipeline.New(fake, nil).Parse("x.wasm")

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageParse, res.Stage)
		var engErr *engine.Error
		require.True(t, errors.As(res.Err, &engErr))
		assert.Equal(t, uint32(2), engErr.Code)
		assertAllClosedOnce(t, fake)
	})

	t.Run("parser unavailable", func(t *testing.T) {
		fake := &enginetest.Fake{ParserUnavailable: true}
		res := pipeline.New(fake, nil).Parse("x.wasm")

		require.False(t, res.OK())
		var rerr *engine.ResourceError
		require.True(t, errors.As(res.Err, &rerr))
		assert.Equal(t, "parser context", rerr.Resource)
		assert.Empty(t, fake.Handles, "no handle should be acquired")
	})
}

func TestValidate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &enginetest.Fake{}
		res := pipeline.New(fake, nil).Validate("x.wasm")

		assert.True(t, res.OK())
		assert.Equal(t, pipeline.CommandValidate, res.Command)
		assert.Len(t, fake.Handles, 3) // parser, module, validator
		assertAllClosedOnce(t, fake)
	})

	t.Run("stops at parse stage", func(t *testing.T) {
		fake := &enginetest.Fake{ParseErr: engine.NewError(2, "invalid magic")}
		res := pipeline.New(fake, nil).Validate("x.wasm")

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageParse, res.Stage)
		assert.Len(t, fake.Handles, 1, "validator must not be created after a parse failure")
		assertAllClosedOnce(t, fake)
	})

	t.Run("validator unavailable", func(t *testing.T) {
		fake := &enginetest.Fake{ValidatorUnavailable: true}
		res := pipeline.New(fake, nil).Validate("x.wasm")

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageValidate, res.Stage)
		var rerr *engine.ResourceError
		require.True(t, errors.As(res.Err, &rerr))
		assertAllClosedOnce(t, fake) // parser and module still release
	})

	t.Run("typing rule violation", func(t *testing.T) {
		fake := &enginetest.Fake{ValidateErr: engine.NewError(48, "type mismatch")}
		res := pipeline.New(fake, nil).Validate("x.wasm")

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageValidate, res.Stage)
		assertAllClosedOnce(t, fake)
	})
}

func TestInstantiate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &enginetest.Fake{}
		res := pipeline.New(fake, nil).Instantiate("x.wasm", engine.VMOptions{})

		assert.True(t, res.OK())
		assert.Equal(t, pipeline.CommandInstantiate, res.Command)
		assert.False(t, fake.LastVMOptions.WASI)
		assertAllClosedOnce(t, fake)
	})

	t.Run("wasi option reaches the engine", func(t *testing.T) {
		fake := &enginetest.Fake{}
		res := pipeline.New(fake, nil).Instantiate("x.wasm", engine.VMOptions{WASI: true})

		assert.True(t, res.OK())
		assert.True(t, fake.LastVMOptions.WASI)
	})

	t.Run("stops at load stage", func(t *testing.T) {
		fake := &enginetest.Fake{LoadErr: engine.NewError(2, "invalid magic")}
		res := pipeline.New(fake, nil).Instantiate("x.wasm", engine.VMOptions{})

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageLoad, res.Stage)
		assertAllClosedOnce(t, fake)
	})

	t.Run("stops at validate stage", func(t *testing.T) {
		fake := &enginetest.Fake{VMValidateErr: engine.NewError(48, "type mismatch")}
		res := pipeline.New(fake, nil).Instantiate("x.wasm", engine.VMOptions{})

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageValidate, res.Stage)
		assertAllClosedOnce(t, fake)
	})

	t.Run("stops at instantiate stage", func(t *testing.T) {
		fake := &enginetest.Fake{InstantiateErr: engine.NewError(7, "unknown import")}
		res := pipeline.New(fake, nil).Instantiate("x.wasm", engine.VMOptions{})

		require.False(t, res.OK())
		assert.Equal(t, pipeline.StageInstantiate, res.Stage)
		assertAllClosedOnce(t, fake)
	})

	t.Run("vm unavailable", func(t *testing.T) {
		fake := &enginetest.Fake{VMUnavailable: true}
		res := pipeline.New(fake, nil).Instantiate("x.wasm", engine.VMOptions{})

		require.False(t, res.OK())
		var rerr *engine.ResourceError
		require.True(t, errors.As(res.Err, &rerr))
		assert.Equal(t, "VM context", rerr.Resource)
		assert.Empty(t, fake.Handles)
	})
}

// Running the same subcommand twice over unchanged inputs yields identical
// result content.
func TestIdempotence(t *testing.T) {
	fake := &enginetest.Fake{ValidateErr: engine.NewError(48, "type mismatch")}
	runner := pipeline.New(fake, nil)

	first := runner.Validate("x.wasm")
	second := runner.Validate("x.wasm")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ between runs (-first +second):\n%s", diff)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "PARSE", pipeline.CommandParse.String())
	assert.Equal(t, "VALIDATE", pipeline.CommandValidate.String())
	assert.Equal(t, "INSTANTIATE", pipeline.CommandInstantiate.String())
}
