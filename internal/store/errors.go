package store

import (
	"fmt"
	"strings"
)

// uniqueViolationCode is the Postgres error code for a unique constraint
// violation.
const uniqueViolationCode = "23505"

// TransportError is a network or call failure: the request never produced a
// usable response. Retried per chunk up to the retry budget, then recorded;
// never escalated to abort a run.
type TransportError struct {
	Op  string // "insert" or "select"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SemanticError is an application error the remote store reported: the call
// succeeded at the transport layer but the response encodes a failure, either
// via status code or an error payload embedded in the body.
type SemanticError struct {
	StatusCode int
	Code       string // Postgres/PostgREST error code, when present
	Message    string
	Details    string
}

func (e *SemanticError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store error %s (http %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("store error (http %d): %s", e.StatusCode, e.Message)
}

// IsUniqueViolation reports whether the error means the rows are already
// present under the table's natural-key constraint. The loader treats this as
// success-equivalent rather than retrying the chunk.
func (e *SemanticError) IsUniqueViolation() bool {
	if e.Code == uniqueViolationCode {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "duplicate key value")
}
