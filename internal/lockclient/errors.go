package lockclient

import (
	"fmt"

	"github.com/SystemBuilders/StripeKey/internal/lockservice"
	"github.com/SystemBuilders/StripeKey/internal/routing"
	"github.com/SystemBuilders/StripeKey/internal/storage"
)

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrBadResponse = Error("daemon sent a response that can't be decoded")
)

// RemoteError is a failure reported by the daemon.
type RemoteError struct {
	HTTPStatus int
	Kind       string
	Status     int
	Message    string
	RequestID  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (status %d, request %s)", e.Message, e.Status, e.RequestID)
}

// ErrorCode returns the librados status reported by the daemon.
func (e *RemoteError) ErrorCode() int { return e.Status }

// Is matches the sentinel error corresponding to the reported kind, or a
// storage.StatusError equal to the reported status.
func (e *RemoteError) Is(target error) bool {
	switch t := target.(type) {
	case storage.StatusError:
		return int(t) == e.Status
	case lockservice.Error:
		return (t == lockservice.ErrLockQueryFailed && e.Kind == routing.KindLockQueryFailed) ||
			(t == lockservice.ErrLockBreakFailed && e.Kind == routing.KindLockBreakFailed)
	case storage.Error:
		return t == storage.ErrPoolNotFound && e.Kind == routing.KindPoolNotFound
	}
	return false
}
