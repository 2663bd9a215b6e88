package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Normalization errors
	ErrInvalidName = errors.New("invalid country name")

	// Merge errors
	ErrEmptyMerge = errors.New("merge produced no rows")

	// Ranking errors
	ErrInvalidTopN = errors.New("invalid top-n")

	// Table errors
	ErrEmptyTable    = errors.New("table has no rows")
	ErrUnknownColumn = errors.New("column not present in table")
)

// Error constructors with context
func NewInvalidNameError(raw string) error {
	return fmt.Errorf("%w: %q", ErrInvalidName, raw)
}

func NewEmptyMergeError(unmatchedPopulation, unmatchedCases int) error {
	return fmt.Errorf("%w: %d unmatched population keys, %d unmatched case keys",
		ErrEmptyMerge, unmatchedPopulation, unmatchedCases)
}

func NewInvalidTopNError(topN int) error {
	return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidTopN, topN)
}

func NewUnknownColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

// Error checking helpers
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

func IsEmptyMerge(err error) bool {
	return errors.Is(err, ErrEmptyMerge)
}

func IsInvalidTopN(err error) bool {
	return errors.Is(err, ErrInvalidTopN)
}
