package lockservice

import "fmt"

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrLockQueryFailed = Error("can't list striper lock holders")
	ErrLockBreakFailed = Error("can't break striper lock")
)

// BreakError reports a failed lock break. It matches its Kind with
// errors.Is and unwraps to the status returned by the cluster.
type BreakError struct {
	Kind Error
	Oid  string
	Err  error
}

func (e *BreakError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Kind, e.Oid, e.Err)
}

// Unwrap returns the underlying cluster error.
func (e *BreakError) Unwrap() error { return e.Err }

// Is reports whether target is the kind of this error.
func (e *BreakError) Is(target error) bool {
	k, ok := target.(Error)
	return ok && k == e.Kind
}
