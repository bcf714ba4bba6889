package objects

import (
	"errors"

	"github.com/SystemBuilders/StripeKey/internal/lockservice"
	"github.com/SystemBuilders/StripeKey/internal/metrics"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/rs/zerolog"
)

// maxRetries bounds the removals retried after a lock break.
const maxRetries = 1

// Remover deletes striped objects, recovering from a striper lock left
// behind by a writer that died mid-write.
type Remover struct {
	log   zerolog.Logger
	pool  storage.StripedRemover
	locks lockservice.LockService
}

// NewRemover returns a Remover deleting from pool and breaking locks
// through locks.
func NewRemover(log zerolog.Logger, pool storage.StripedRemover, locks lockservice.LockService) *Remover {
	return &Remover{
		log:   log,
		pool:  pool,
		locks: locks,
	}
}

// Remove deletes the striped object oid.
//
// A removal rejected with storage.ErrBusy on the first attempt triggers a
// break of the object's striper lock followed by exactly one more removal,
// whose result is returned. A failed break is returned instead of the busy
// status. Any other result is returned unchanged.
//
// Busy on the retry is returned as is: a live writer holds the lock again.
// IsRetryable reports true for it and it is up to the caller to try later or
// escalate; Remove never makes a third attempt.
func (r *Remover) Remove(oid string) error {
	if oid == "" {
		return storage.ErrEmptyOid
	}

	var err error
	for attempt := 0; ; attempt++ {
		metrics.RemoveAttempts.Inc()
		err = r.pool.Remove(oid)
		if !storage.IsBusy(err) || attempt == maxRetries {
			break
		}
		r.
			log.
			Debug().
			Str("object", oid).
			Int("attempt", attempt).
			Msg("busy, breaking striper lock")
		if err = r.locks.Break(oid); err != nil {
			break
		}
		metrics.LockBreaks.Inc()
	}
	metrics.Removes.WithLabelValues(outcome(err)).Inc()
	return err
}

// IsRetryable reports whether a removal failed only because the striper lock
// was held again after the one lock break Remove performs. A lock query or
// break failure is never retryable, whatever status it carries.
func IsRetryable(err error) bool {
	return storage.IsBusy(err) &&
		!errors.Is(err, lockservice.ErrLockQueryFailed) &&
		!errors.Is(err, lockservice.ErrLockBreakFailed)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, lockservice.ErrLockQueryFailed):
		return metrics.OutcomeLockQueryFailed
	case errors.Is(err, lockservice.ErrLockBreakFailed):
		return metrics.OutcomeLockBreakFailed
	case storage.IsBusy(err):
		return metrics.OutcomeBusy
	default:
		return metrics.OutcomeError
	}
}
