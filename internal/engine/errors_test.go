package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := NewError(2, "loading failed")
	assert.Equal(t, "[2] loading failed", err.Error())
}

func TestError_EmptyMessagePlaceholder(t *testing.T) {
	err := NewError(6, "")
	assert.Equal(t, "[6] Unknown error", err.Error())
}

func TestResourceError_Format(t *testing.T) {
	err := &ResourceError{Resource: "parser context"}
	assert.Equal(t, "Failed to create parser context", err.Error())
}

// codedErr mirrors the WasmEdge-go Result error surface: its code
// accessor is GetCode() int. Keep the signature in sync with the binding,
// otherwise wrapResult's assertion goes stale without any test noticing.
type codedErr struct {
	code int
}

func (e codedErr) GetCode() int  { return e.code }
func (e codedErr) Error() string { return "invalid magic" }

func TestWrapResult(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, wrapResult(nil))
	})

	t.Run("coded result keeps its code", func(t *testing.T) {
		wrapped := wrapResult(codedErr{code: 2})
		var engErr *Error
		require.True(t, errors.As(wrapped, &engErr))
		assert.Equal(t, uint32(2), engErr.Code)
		assert.Equal(t, "invalid magic", engErr.Message)
	})

	t.Run("uncoded error falls back to code zero", func(t *testing.T) {
		wrapped := wrapResult(errors.New("boom"))
		var engErr *Error
		require.True(t, errors.As(wrapped, &engErr))
		assert.Equal(t, uint32(0), engErr.Code)
		assert.Equal(t, "boom", engErr.Message)
	})
}
