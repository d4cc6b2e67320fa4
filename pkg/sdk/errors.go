package phyrestorm

import "github.com/kailas-cloud/phyrestorm/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument    = domain.ErrInvalidArgument
	ErrCursorNotFound     = domain.ErrCursorNotFound
	ErrStorageUnavailable = domain.ErrStorageUnavailable
	ErrCanceled           = domain.ErrCanceled
	ErrTimeout            = domain.ErrTimeout
)

// CursorNotFoundError carries the job and structure ID of an unknown cursor.
// Use errors.As() to extract it.
type CursorNotFoundError = domain.CursorNotFoundError
