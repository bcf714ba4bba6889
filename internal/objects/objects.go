// Package objects implements the operations served on striped objects of a
// single pool: forced removal, hinted writes, stat and striper lock
// inspection.
package objects

import (
	"time"

	"github.com/SystemBuilders/StripeKey/internal/lockservice"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/rs/zerolog"
)

// Store bundles the operations available on one pool.
type Store struct {
	pool   storage.Pool
	locks  *lockservice.StriperLockService
	remove *Remover
	write  *HintedWriter
}

// New returns a Store operating on pool.
func New(log zerolog.Logger, pool storage.Pool) *Store {
	log = log.With().Str("pool", pool.Name()).Logger()
	locks := lockservice.NewStriperLockService(log, pool)
	return &Store{
		pool:   pool,
		locks:  locks,
		remove: NewRemover(log, pool, locks),
		write:  NewHintedWriter(log, pool),
	}
}

// Remove force-removes the striped object oid. See Remover.Remove.
func (s *Store) Remove(oid string) error { return s.remove.Remove(oid) }

// WriteNew writes a new object. See HintedWriter.WriteNew.
func (s *Store) WriteNew(oid string, data []byte) error { return s.write.WriteNew(oid, data) }

// Lockers lists the holders of the striper lock of oid.
func (s *Store) Lockers(oid string) (*storage.LockInfo, error) { return s.locks.Lockers(oid) }

// BreakLock force-releases the striper lock of oid.
func (s *Store) BreakLock(oid string) error { return s.locks.Break(oid) }

// Stat returns the size and modification time of the striped object oid.
func (s *Store) Stat(oid string) (uint64, time.Time, error) {
	if oid == "" {
		return 0, time.Time{}, storage.ErrEmptyOid
	}
	return s.pool.Stat(oid)
}
