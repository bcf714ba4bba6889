package storage

import "time"

// StriperLockName is the lock libradosstriper takes on the first chunk of a
// striped object before writing, truncating or removing it.
const StriperLockName = "striper.lock"

// firstChunkSuffix names chunk zero of a striped object: a dot followed by
// the chunk index as 16 zero padded hex digits.
const firstChunkSuffix = ".0000000000000000"

// FlagNewObject advises the OSD that the object written is new, so it can
// skip reading existing object state. OSDs that don't know the flag ignore it.
const FlagNewObject uint32 = 1 << 31

// FirstChunkID returns the RADOS object name of the first chunk of the
// striped object oid. This is a private convention of libradosstriper and
// the only place in this module that knows it.
func FirstChunkID(oid string) string {
	return oid + firstChunkSuffix
}

// LockInfo is a snapshot of the holders of a named lock on an object. It is
// only valid at the time it was listed.
type LockInfo struct {
	Exclusive bool
	Tag       string
	Clients   []string
	Cookies   []string
	Addrs     []string
}

// Holders returns the number of (client, cookie) pairs in the snapshot.
func (li *LockInfo) Holders() int {
	if li == nil {
		return 0
	}
	n := len(li.Clients)
	if len(li.Cookies) < n {
		n = len(li.Cookies)
	}
	return n
}

// StripedRemover removes striped objects. Remove fails with ErrBusy while
// another client holds the striper lock of the object.
type StripedRemover interface {
	Remove(oid string) error
}

// StripedStater reports the size and modification time of a striped object.
type StripedStater interface {
	Stat(oid string) (size uint64, mtime time.Time, err error)
}

// Locker lists and breaks advisory locks on plain RADOS objects.
type Locker interface {
	// ListLockers returns the current holders of the lock name on oid.
	ListLockers(oid, name string) (*LockInfo, error)
	// BreakLock releases the lock name held on oid by the given client
	// and cookie without its cooperation.
	BreakLock(oid, name, client, cookie string) error
}

// WriteOp is a compound write operation on a single object. It must be
// released after use whether or not Operate succeeded.
type WriteOp interface {
	// Write adds a write of data at offset to the operation.
	Write(data []byte, offset uint64)
	// SetFlags sets op flags on the last step added to the operation.
	SetFlags(flags uint32)
	// Operate executes the operation against oid.
	Operate(oid string) error
	// Release frees the operation.
	Release()
}

// WriteOpFactory creates write operations bound to a pool.
type WriteOpFactory interface {
	CreateWriteOp() WriteOp
}

// Pool is the narrow view of an opened RADOS pool used by this module.
type Pool interface {
	StripedRemover
	StripedStater
	Locker
	WriteOpFactory
	// Name returns the pool name.
	Name() string
	// Close releases the pool handles.
	Close()
}

// PoolProvider opens pools by name.
type PoolProvider interface {
	Pool(name string) (Pool, error)
}
