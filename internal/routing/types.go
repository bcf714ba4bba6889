package routing

import "time"

// RequestIDHeader carries the ULID of a request between client and daemon.
const RequestIDHeader = "X-Request-Id"

// Error kinds reported in Response.Kind.
const (
	KindBusy            = "busy"
	KindLockQueryFailed = "lock_query_failed"
	KindLockBreakFailed = "lock_break_failed"
	KindPoolNotFound    = "pool_not_found"
	KindInvalid         = "invalid"
	KindStorage         = "storage"
)

// Response is the JSON body of every object and lock endpoint.
type Response struct {
	Pool   string `json:"pool"`
	Object string `json:"object"`
	// Status is the librados status of the operation, 0 on success.
	Status int    `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`

	Size  uint64     `json:"size,omitempty"`
	Mtime *time.Time `json:"mtime,omitempty"`
	Lock  *LockInfo  `json:"lock,omitempty"`
}

// LockInfo is the JSON form of the holders of a striper lock.
type LockInfo struct {
	Chunk     string   `json:"chunk"`
	Exclusive bool     `json:"exclusive"`
	Tag       string   `json:"tag"`
	Clients   []string `json:"clients"`
	Cookies   []string `json:"cookies"`
	Addrs     []string `json:"addrs"`
}
