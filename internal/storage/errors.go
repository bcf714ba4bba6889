package storage

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrPoolNotFound = Error("pool doesn't exist")
	ErrEmptyOid     = Error("object name is empty")
)

// StatusError is a negative errno returned by librados.
type StatusError int

func (e StatusError) Error() string {
	errno := unix.Errno(-int(e))
	if name := unix.ErrnoName(errno); name != "" {
		return fmt.Sprintf("rados: ret=%d, %s (%s)", int(e), errno.Error(), name)
	}
	return fmt.Sprintf("rados: ret=%d", int(e))
}

// ErrorCode returns the status code, negative on failure.
func (e StatusError) ErrorCode() int { return int(e) }

// Status errors the core reacts to.
var (
	ErrBusy     = StatusError(-int(unix.EBUSY))
	ErrNotFound = StatusError(-int(unix.ENOENT))
	ErrRange    = StatusError(-int(unix.ERANGE))
	ErrIO       = StatusError(-int(unix.EIO))
	ErrInvalid  = StatusError(-int(unix.EINVAL))
)

// coder is implemented by StatusError and by go-ceph errors.
type coder interface {
	ErrorCode() int
}

// StatusOf returns the librados status code carried by err: 0 for nil, the
// wrapped errno when one is found and -EIO otherwise.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var c coder
	if errors.As(err, &c) {
		code := c.ErrorCode()
		if code > 0 {
			code = -code
		}
		if code != 0 {
			return code
		}
	}
	return int(ErrIO)
}

// AsStatus converts any error carrying an errno into a StatusError so that
// callers can compare it with errors.Is. Errors without one are returned as is.
func AsStatus(err error) error {
	if err == nil {
		return nil
	}
	var se StatusError
	if errors.As(err, &se) {
		return err
	}
	var c coder
	if errors.As(err, &c) {
		return StatusError(StatusOf(err))
	}
	return err
}

// IsBusy reports whether err carries -EBUSY.
func IsBusy(err error) bool {
	return err != nil && StatusOf(err) == int(ErrBusy)
}
