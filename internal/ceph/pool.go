package ceph

import (
	"time"

	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/ceph/go-ceph/rados"
)

var _ storage.Pool = (*Pool)(nil)

// Pool is an opened RADOS pool with a striper bound to it.
type Pool struct {
	name    string
	ioctx   *rados.IOContext
	striper *striper
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Remove removes the striped object oid. It fails with storage.ErrBusy
// while another client holds the object's striper lock.
func (p *Pool) Remove(oid string) error {
	return p.striper.remove(oid)
}

// Stat returns the size and mtime of the striped object oid.
func (p *Pool) Stat(oid string) (uint64, time.Time, error) {
	return p.striper.stat(oid)
}

// ListLockers lists the holders of the lock name on the RADOS object oid.
// Large locker lists are returned whole, see listLockers.
func (p *Pool) ListLockers(oid, name string) (*storage.LockInfo, error) {
	return listLockers(p.ioctx, oid, name)
}

// BreakLock releases the lock name held on oid by client and cookie.
func (p *Pool) BreakLock(oid, name, client, cookie string) error {
	ret, err := p.ioctx.BreakLock(oid, name, client, cookie)
	if err != nil {
		return storage.AsStatus(err)
	}
	// -ENOENT and -EINVAL come back as a status with a nil error.
	if ret < 0 {
		return storage.StatusError(ret)
	}
	return nil
}

// CreateWriteOp returns a write operation on this pool.
func (p *Pool) CreateWriteOp() storage.WriteOp {
	return newWriteOp(p.ioctx)
}

// Close destroys the striper and the IO context.
func (p *Pool) Close() {
	p.striper.destroy()
	p.ioctx.Destroy()
}
