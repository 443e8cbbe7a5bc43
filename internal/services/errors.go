package services

import (
	"errors"
	"fmt"
)

// NoID is returned by Insert when no row was written.
const NoID int64 = -1

var (
	// ErrInvalidTarget is returned when a resource string matches neither
	// the collection nor an item.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrNotFound is returned when an operation needs an existing product
	// and none has the requested id.
	ErrNotFound = errors.New("product not found")
	// ErrOutOfStock is returned when selling a product whose quantity is 0.
	ErrOutOfStock = errors.New("product out of stock")
)

// ValidationError reports the first field of a write payload that failed
// validation. The write did not happen.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError reports a write or read rejected by the record store for
// reasons outside validation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func invalidTarget(target string) error {
	return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
}
