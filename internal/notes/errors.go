package notes

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation reasons surfaced to the dialog layer.
const (
	ReasonEmpty   = "empty"
	ReasonTooLong = "too_long"
	ReasonBadID   = "bad_id"
)

// ValidationError reports user input that cannot become a note operation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "notes: validation failed: " + e.Reason
}

// Code maps the reason to a stable error code for handler summary logs.
func (e *ValidationError) Code() string {
	switch e.Reason {
	case ReasonEmpty:
		return "EMPTY_TEXT"
	case ReasonTooLong:
		return "TEXT_TOO_LONG"
	case ReasonBadID:
		return "BAD_NOTE_ID"
	default:
		return "VALIDATION_ERROR"
	}
}

// NotFoundError reports an operation against a note id the user does not own.
type NotFoundError struct {
	NoteID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("notes: note %d not found", e.NoteID)
}

func (e *NotFoundError) Code() string { return "NOTE_NOT_FOUND" }

// NotInitializedError reports an operation on a store that was never created.
type NotInitializedError struct {
	UserID int64
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("notes: store for user %d not initialized", e.UserID)
}

func (e *NotInitializedError) Code() string { return "NOT_INITIALIZED" }

// StorageError wraps database failures so they never escape as raw driver errors.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("notes: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Code() string { return "STORAGE_ERROR" }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsNotInitialized reports whether err signals a missing per-user store.
func IsNotInitialized(err error) bool {
	var ni *NotInitializedError
	return errors.As(err, &ni)
}

// ValidateText trims the text and enforces the non-empty and length rules.
// Returns the trimmed text on success.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLen {
		return "", &ValidationError{Reason: ReasonTooLong}
	}
	return trimmed, nil
}
