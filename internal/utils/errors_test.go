package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorCarriesKindAndOffset(t *testing.T) {
	err := NewError(ErrTruncated, 0x40, "u32 read")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTruncated)
	assert.Contains(t, err.Error(), "0x40")
	assert.Contains(t, err.Error(), "u32 read")

	off, ok := ErrorOffset(err)
	require.True(t, ok)
	assert.Equal(t, int64(0x40), off)
}

func TestErrorOffsetOnForeignError(t *testing.T) {
	_, ok := ErrorOffset(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError("context", nil))

	cause := errors.New("cause")
	err := WrapError("context", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "context")
}

func TestValidateEntryCount(t *testing.T) {
	assert.NoError(t, ValidateEntryCount(10, 4, 40, "list"))
	assert.Error(t, ValidateEntryCount(11, 4, 40, "list"))
	assert.Error(t, ValidateEntryCount(1, 0, 40, "list"))
	// Overflow in count*size must be caught, not wrapped around.
	assert.Error(t, ValidateEntryCount(1<<62, 8, 40, "list"))
}

func TestCheckMultiplyOverflow(t *testing.T) {
	assert.NoError(t, CheckMultiplyOverflow(0, 1<<63))
	assert.NoError(t, CheckMultiplyOverflow(1<<31, 1<<31))
	assert.Error(t, CheckMultiplyOverflow(1<<33, 1<<33))
}
