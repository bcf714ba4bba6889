package objects

import (
	"os"
	"testing"

	"github.com/SystemBuilders/StripeKey/internal/lockservice"
	"github.com/SystemBuilders/StripeKey/internal/metrics"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/SystemBuilders/StripeKey/internal/storage/storagetest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(pool *storagetest.Pool) *Store {
	log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())
	return New(log, pool)
}

func TestRemove(t *testing.T) {
	t.Run("unlocked object is removed in one call", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.Put("obj", []byte("data"))
		s := newTestStore(pool)

		require.NoError(t, s.Remove("obj"))
		assert.Equal(t, []string{"obj"}, pool.RemoveCalls)
		assert.Empty(t, pool.ListCalls)
		assert.Empty(t, pool.BreakCalls)
		assert.Nil(t, pool.Get("obj"))
	})

	t.Run("stale lock is broken and removal retried", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.Put("obj", []byte("data"))
		pool.HoldStriperLock("obj", "client.4121", "cookie", "10.0.0.1:0/1")
		s := newTestStore(pool)

		before := testutil.ToFloat64(metrics.LockBreaks)
		require.NoError(t, s.Remove("obj"))

		assert.Equal(t, []string{"obj", "obj"}, pool.RemoveCalls)
		assert.Equal(t, []string{"obj.0000000000000000"}, pool.ListCalls)
		assert.Len(t, pool.BreakCalls, 1)
		assert.Nil(t, pool.Get("obj"))
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.LockBreaks))
	})

	t.Run("busy after retry is returned without a third attempt", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.Put("obj", []byte("data"))
		pool.RemoveErrs = []error{storage.ErrBusy, storage.ErrBusy, storage.ErrBusy}
		s := newTestStore(pool)

		err := s.Remove("obj")
		assert.ErrorIs(t, err, storage.ErrBusy)
		assert.True(t, IsRetryable(err))
		assert.Len(t, pool.RemoveCalls, 2)
		assert.Len(t, pool.ListCalls, 1)
	})

	t.Run("lock query failure stops before break and retry", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.Put("obj", []byte("data"))
		pool.HoldStriperLock("obj", "client.1", "c", "")
		pool.ListErr = storage.ErrRange
		s := newTestStore(pool)

		err := s.Remove("obj")
		assert.ErrorIs(t, err, lockservice.ErrLockQueryFailed)
		assert.False(t, IsRetryable(err))
		assert.Len(t, pool.RemoveCalls, 1)
		assert.Empty(t, pool.BreakCalls)
	})

	t.Run("lock break failure is returned instead of busy", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.Put("obj", []byte("data"))
		pool.HoldStriperLock("obj", "client.1", "c", "")
		pool.BreakErr = storage.StatusError(-1)
		s := newTestStore(pool)

		err := s.Remove("obj")
		assert.ErrorIs(t, err, lockservice.ErrLockBreakFailed)
		assert.False(t, storage.IsBusy(err))
		assert.Equal(t, -1, storage.StatusOf(err))
		assert.Len(t, pool.RemoveCalls, 1)
	})

	t.Run("busy lock break is not retryable", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.Put("obj", []byte("data"))
		pool.HoldStriperLock("obj", "client.1", "c", "")
		pool.BreakErr = storage.ErrBusy
		s := newTestStore(pool)

		err := s.Remove("obj")
		assert.ErrorIs(t, err, lockservice.ErrLockBreakFailed)
		assert.True(t, storage.IsBusy(err))
		assert.False(t, IsRetryable(err))
		assert.Len(t, pool.RemoveCalls, 1)
	})

	t.Run("other failures are returned verbatim", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		s := newTestStore(pool)

		err := s.Remove("missing")
		assert.Equal(t, storage.ErrNotFound, err)
		assert.Len(t, pool.RemoveCalls, 1)
		assert.Empty(t, pool.ListCalls)
	})

	t.Run("retry may fail differently", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.RemoveErrs = []error{storage.ErrBusy, storage.StatusError(-5)}
		s := newTestStore(pool)

		assert.Equal(t, storage.StatusError(-5), s.Remove("obj"))
		assert.Len(t, pool.RemoveCalls, 2)
	})

	t.Run("empty object name", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		s := newTestStore(pool)

		assert.ErrorIs(t, s.Remove(""), storage.ErrEmptyOid)
		assert.Empty(t, pool.RemoveCalls)
	})
}

func TestRemoveOutcomes(t *testing.T) {
	pool := storagetest.NewPool("rabbit")
	pool.RemoveErrs = []error{storage.ErrBusy, storage.ErrBusy}
	s := newTestStore(pool)

	busy := metrics.Removes.WithLabelValues(metrics.OutcomeBusy)
	before := testutil.ToFloat64(busy)
	_ = s.Remove("obj")
	assert.Equal(t, before+1, testutil.ToFloat64(busy))
}

func TestWriteNew(t *testing.T) {
	t.Run("single flagged write at offset zero", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		s := newTestStore(pool)
		data := []byte("hello, rados")

		require.NoError(t, s.WriteNew("small", data))

		require.Len(t, pool.WriteOps, 1)
		op := pool.WriteOps[0]
		assert.Equal(t, []storagetest.WriteStep{{Data: data, Offset: 0, Flags: storage.FlagNewObject}}, op.Steps)
		assert.Equal(t, []string{"small"}, op.Operated)
		assert.True(t, op.Released)
		assert.Equal(t, data, pool.Get("small").Data)
	})

	t.Run("failure is returned without retry", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		pool.OperateErr = storage.StatusError(-28)
		s := newTestStore(pool)

		err := s.WriteNew("small", []byte("x"))
		assert.Equal(t, storage.StatusError(-28), err)
		require.Len(t, pool.WriteOps, 1)
		assert.Len(t, pool.WriteOps[0].Operated, 1)
		assert.True(t, pool.WriteOps[0].Released)
	})

	t.Run("flag has the top bit set", func(t *testing.T) {
		assert.Equal(t, uint32(0x80000000), storage.FlagNewObject)
	})

	t.Run("empty object name", func(t *testing.T) {
		pool := storagetest.NewPool("rabbit")
		s := newTestStore(pool)

		assert.ErrorIs(t, s.WriteNew("", []byte("x")), storage.ErrEmptyOid)
		assert.Empty(t, pool.WriteOps)
	})
}

func TestStat(t *testing.T) {
	pool := storagetest.NewPool("tiger")
	pool.Put("big", make([]byte, 4096))
	s := newTestStore(pool)

	size, _, err := s.Stat("big")
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), size)

	_, _, err = s.Stat("gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
