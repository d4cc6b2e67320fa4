package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a malformed or out-of-range request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCursorNotFound signals a resume cursor that names no hit of the job.
	ErrCursorNotFound = errors.New("cursor not found")
	// ErrStorageUnavailable signals a failing backing store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCanceled signals that the caller abandoned the request.
	ErrCanceled = errors.New("operation canceled")
	// ErrTimeout signals that the request deadline expired.
	ErrTimeout = errors.New("operation timed out")
)

// CursorNotFoundError wraps ErrCursorNotFound with the offending cursor.
type CursorNotFoundError struct {
	JobID       string
	StructureID int64
}

func (e *CursorNotFoundError) Error() string {
	return fmt.Sprintf("%s: structure %d is not a hit of job %q",
		ErrCursorNotFound.Error(), e.StructureID, e.JobID)
}

func (e *CursorNotFoundError) Unwrap() error { return ErrCursorNotFound }

// NewCursorNotFound creates a cursor miss error.
func NewCursorNotFound(jobID string, structureID int64) error {
	return &CursorNotFoundError{JobID: jobID, StructureID: structureID}
}
