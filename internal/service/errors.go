package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSignedIn is returned by operations that need a live session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrHistoryEntryNotFound is returned when a comparison names an unknown scan.
	ErrHistoryEntryNotFound = errors.New("scan history entry not found")
	// ErrEmptyTranscript is returned when a voice turn produced no text.
	ErrEmptyTranscript = errors.New("no speech recognized")
)

// ValidationError rejects user input before any store or collaborator call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
