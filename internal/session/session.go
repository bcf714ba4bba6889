package session

import "github.com/oklog/ulid"

// Session identifies a client of the daemon. Every request it sends
// carries a fresh request ID so the daemon's logs can be matched with the
// client's.
type Session interface {
	// ClientID is the ID of the client, assigned when the session is
	// created.
	ClientID() ulid.ULID
	// NewRequestID returns a new ID for the next request.
	NewRequestID() ulid.ULID
}
