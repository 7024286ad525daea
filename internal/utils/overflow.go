package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// ValidateEntryCount validates that count fixed-size entries fit in the
// available byte budget. Counts come from untrusted file data, so the
// multiplication is overflow-checked before the comparison.
func ValidateEntryCount(count, entrySize, available uint64, description string) error {
	if entrySize == 0 {
		return fmt.Errorf("%s: entry size cannot be zero", description)
	}
	if err := CheckMultiplyOverflow(count, entrySize); err != nil {
		return fmt.Errorf("%s: %w", description, err)
	}
	if count*entrySize > available {
		return fmt.Errorf("%s: %d entries of %d bytes exceed %d available bytes",
			description, count, entrySize, available)
	}
	return nil
}
