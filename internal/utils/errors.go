// Package utils provides shared helpers for the gmdata library.
package utils

import (
	"errors"
	"fmt"
)

// Error kinds. Every parse failure wraps exactly one of these sentinels,
// so callers can classify with errors.Is.
var (
	ErrTruncated            = errors.New("truncated read")
	ErrOutOfBounds          = errors.New("seek out of bounds")
	ErrBadMagic             = errors.New("bad magic")
	ErrInvalidPointer       = errors.New("invalid pointer")
	ErrMalformedString      = errors.New("malformed string")
	ErrVersionUnsupported   = errors.New("unsupported bytecode version")
	ErrUnalignedBytecode    = errors.New("unaligned bytecode")
	ErrCycleDetected        = errors.New("pointer cycle detected")
	ErrTruncatedInstruction = errors.New("truncated instruction")
)

// GmError represents a structured parse error: the failure kind, the
// absolute byte offset where it occurred, and a short context string.
type GmError struct {
	Kind    error
	Offset  int64
	Context string
}

// Error implements the error interface.
func (e *GmError) Error() string {
	return fmt.Sprintf("%s at offset 0x%x: %v", e.Context, e.Offset, e.Kind)
}

// Unwrap provides compatibility with errors.Is/errors.Unwrap.
func (e *GmError) Unwrap() error {
	return e.Kind
}

// NewError creates a kind-tagged error at a byte offset.
func NewError(kind error, offset int64, context string) error {
	return &GmError{
		Kind:    kind,
		Offset:  offset,
		Context: context,
	}
}

// WrapError creates a contextual error without an offset or kind.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, cause)
}

// ErrorOffset reports the byte offset carried by err, when it is a GmError.
func ErrorOffset(err error) (int64, bool) {
	var ge *GmError
	if errors.As(err, &ge) {
		return ge.Offset, true
	}
	return 0, false
}
