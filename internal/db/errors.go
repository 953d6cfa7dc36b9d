package db

import "errors"

// ErrUnsupportedDriver signals a driver name other than postgres or sqlite.
var ErrUnsupportedDriver = errors.New("db: unsupported driver")

// Op names used for error context.
const (
	OpOpen  = "OPEN"
	OpPing  = "PING"
	OpQuery = "QUERY"
	OpScan  = "SCAN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "db " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
