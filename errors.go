package gmdata

import "github.com/scigolib/gmdata/internal/utils"

// Error kinds surfaced by container parsing. Match with errors.Is; use
// ErrorOffset to recover the absolute byte offset of a failure.
var (
	ErrTruncated          = utils.ErrTruncated
	ErrOutOfBounds        = utils.ErrOutOfBounds
	ErrBadMagic           = utils.ErrBadMagic
	ErrInvalidPointer     = utils.ErrInvalidPointer
	ErrMalformedString    = utils.ErrMalformedString
	ErrVersionUnsupported = utils.ErrVersionUnsupported
	ErrCycleDetected      = utils.ErrCycleDetected
)
