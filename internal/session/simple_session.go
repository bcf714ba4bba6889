package session

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var _ Session = (*SimpleSession)(nil)

// SimpleSession implements a session.
type SimpleSession struct {
	clientID ulid.ULID
}

// ClientID returns the clientID of the SimpleSession.
func (s *SimpleSession) ClientID() ulid.ULID {
	return s.clientID
}

// NewRequestID returns a new request ID.
func (s *SimpleSession) NewRequestID() ulid.ULID {
	return NewID()
}

// NewSession returns a new session with a fresh client ID.
func NewSession() Session {
	return &SimpleSession{
		clientID: NewID(),
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new ULID. IDs generated in the same millisecond are
// monotonically increasing.
func NewID() ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// ParseID parses a ULID sent by a client.
func ParseID(s string) (ulid.ULID, error) {
	return ulid.Parse(s)
}
