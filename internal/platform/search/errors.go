package search

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed or disallowed search parameter. It is
// raised before any query executes and always names the offending parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// QueryTimeoutError indicates the store exceeded the configured query
// deadline. The request is safe to retry.
type QueryTimeoutError struct {
	Elapsed time.Duration
}

func (e *QueryTimeoutError) Error() string {
	return fmt.Sprintf("query timed out after %s", e.Elapsed.Truncate(time.Millisecond))
}

// InvalidCursorError indicates a pagination cursor that is malformed,
// tampered with, or issued under a different signing key or ordering. It is
// distinct from an empty page: a valid cursor past the end of the result set
// simply yields no rows.
type InvalidCursorError struct {
	Reason string
}

func (e *InvalidCursorError) Error() string {
	return "invalid cursor: " + e.Reason
}
