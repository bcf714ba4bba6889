package lockservice

import (
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/rs/zerolog"
)

var _ LockService = (*StriperLockService)(nil)

// StriperLockService is a lock service that implements LockService on top
// of a pool's lock primitives. It only ever targets storage.StriperLockName
// on chunk zero: every striper writer serializes through that one lock.
type StriperLockService struct {
	log    zerolog.Logger
	locker storage.Locker
}

// NewStriperLockService creates and returns a new lock service ready to use.
func NewStriperLockService(log zerolog.Logger, locker storage.Locker) *StriperLockService {
	return &StriperLockService{
		log:    log,
		locker: locker,
	}
}

// Lockers lists the holders of the striper lock of oid.
func (ls *StriperLockService) Lockers(oid string) (*storage.LockInfo, error) {
	if oid == "" {
		return nil, storage.ErrEmptyOid
	}
	info, err := ls.locker.ListLockers(storage.FirstChunkID(oid), storage.StriperLockName)
	if err != nil {
		ls.
			log.
			Debug().
			Str("object", oid).
			Err(err).
			Msg("can't list lockers")
		return nil, &BreakError{Kind: ErrLockQueryFailed, Oid: oid, Err: storage.AsStatus(err)}
	}
	return info, nil
}

// Break force-releases the striper lock of oid. Holders are listed once and
// each (client, cookie) pair found is broken in turn; the first failure
// stops the loop. Finding no holders is not an error, the lock may have been
// released between the caller's failed operation and the listing.
func (ls *StriperLockService) Break(oid string) error {
	info, err := ls.Lockers(oid)
	if err != nil {
		return err
	}

	chunk := storage.FirstChunkID(oid)
	for i := 0; i < info.Holders(); i++ {
		client, cookie := info.Clients[i], info.Cookies[i]
		if err := ls.locker.BreakLock(chunk, storage.StriperLockName, client, cookie); err != nil {
			ls.
				log.
				Debug().
				Str("object", oid).
				Str("client", client).
				Str("cookie", cookie).
				Err(err).
				Msg("can't break lock")
			return &BreakError{Kind: ErrLockBreakFailed, Oid: oid, Err: storage.AsStatus(err)}
		}
		ls.
			log.
			Debug().
			Str("object", oid).
			Str("client", client).
			Str("cookie", cookie).
			Msg("lock broken")
	}
	return nil
}
