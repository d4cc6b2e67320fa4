package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrNoRows        = errors.New("db: no rows")
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrSessionClosed = errors.New("db: session released")
)

// Op names used for error context.
const (
	OpPing      = "PING"
	OpAcquire   = "ACQUIRE"
	OpScore     = "SELECT score"
	OpFirstPage = "SELECT first page"
	OpPageAfter = "SELECT page after"
	OpCount     = "SELECT count"
	OpMigrate   = "MIGRATE"
	OpGet       = "GET"
	OpSet       = "SET"
	OpDel       = "DEL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
