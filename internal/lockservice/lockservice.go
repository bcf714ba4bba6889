package lockservice

import "github.com/SystemBuilders/StripeKey/internal/storage"

// LockService describes a component that inspects and force-releases the
// coordination lock libradosstriper keeps on the first chunk of a striped
// object. The lock itself lives in the cluster; the service holds no state.
type LockService interface {
	// Lockers returns the current holders of the striper lock on the
	// object's first chunk. The result is a snapshot and may be stale by
	// the time it is used.
	Lockers(oid string) (*storage.LockInfo, error)
	// Break releases the striper lock on the object's first chunk for every
	// holder found, without their cooperation. An error is generated if the
	// holders can't be listed or any break request fails.
	Break(oid string) error
}
