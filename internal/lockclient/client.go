package lockclient

import (
	"context"

	"github.com/SystemBuilders/StripeKey/internal/routing"
)

// Client describes a client that can be used to interact with
// the StripeKey daemon.
//
// The client offers the user to force-remove a striped object, write a
// small new object with the new-object hint, stat an object, and inspect or
// break the striper lock on an object's first chunk.
//
// Failures reported by the daemon are returned as *RemoteError, which
// matches the sentinel errors of the storage and lockservice packages with
// errors.Is.
type Client interface {
	// Remove force-removes the striped object oid from pool. A striper
	// lock left behind on the object is broken once; a lock held again
	// after that is reported as storage.ErrBusy and not retried.
	Remove(ctx context.Context, pool, oid string) error
	// WriteNew writes data as the new object oid in pool.
	WriteNew(ctx context.Context, pool, oid string, data []byte) error
	// Stat returns the size and mtime of the striped object oid.
	Stat(ctx context.Context, pool, oid string) (*routing.Response, error)
	// Lockers lists the holders of the striper lock of oid.
	Lockers(ctx context.Context, pool, oid string) (*routing.LockInfo, error)
	// BreakLock force-releases the striper lock of oid.
	BreakLock(ctx context.Context, pool, oid string) error
}
