package repository

import (
	"errors"
	"fmt"
)

// StorageError reports that the underlying slot I/O failed. Callers surface it to
// the user; the store never retries.
type StorageError struct {
	Op   string
	Slot string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Slot, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err (or anything it wraps) is a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op, slot string, err error) error {
	return &StorageError{Op: op, Slot: slot, Err: err}
}
