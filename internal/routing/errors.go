package routing

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrBodyTooLarge = Error("object body exceeds the maximum write size")
	ErrBadPath      = Error("bad escaping in object path")
)
