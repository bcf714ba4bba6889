package cache

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/SystemBuilders/StripeKey/internal/storage/storagetest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider counts the pools opened through it.
type countingProvider struct {
	*storagetest.Provider
	opened map[string]int
}

func (cp *countingProvider) Pool(name string) (storage.Pool, error) {
	p, err := cp.Provider.Pool(name)
	if err == nil {
		cp.opened[name]++
	}
	return p, err
}

// gatedProvider opens a fresh pool per call. Opens of "slow" signal
// entered and then wait for gate to be closed.
type gatedProvider struct {
	gate    chan struct{}
	entered chan struct{}

	mu     sync.Mutex
	opened []*storagetest.Pool
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{gate: make(chan struct{}), entered: make(chan struct{}, 8)}
}

func (gp *gatedProvider) Pool(name string) (storage.Pool, error) {
	if name == "slow" {
		gp.entered <- struct{}{}
		<-gp.gate
	}
	p := storagetest.NewPool(name)
	gp.mu.Lock()
	gp.opened = append(gp.opened, p)
	gp.mu.Unlock()
	return p, nil
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func newTestCache(capacity int, pools ...*storagetest.Pool) (*PoolCache, *countingProvider) {
	log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())
	cp := &countingProvider{Provider: storagetest.NewProvider(pools...), opened: make(map[string]int)}
	return NewPoolCache(log, cp, capacity), cp
}

func TestPoolCache(t *testing.T) {
	t.Run("pools are opened once", func(t *testing.T) {
		rabbit := storagetest.NewPool("rabbit")
		pc, cp := newTestCache(2, rabbit)

		for i := 0; i < 3; i++ {
			p, err := pc.Pool("rabbit")
			require.NoError(t, err)
			assert.Equal(t, "rabbit", p.Name())
			p.Close()
		}
		assert.Equal(t, 1, cp.opened["rabbit"])
		assert.False(t, rabbit.Closed)
	})

	t.Run("unknown pool", func(t *testing.T) {
		pc, _ := newTestCache(2)

		_, err := pc.Pool("nope")
		assert.ErrorIs(t, err, storage.ErrPoolNotFound)
		assert.Equal(t, 0, pc.Size())
	})

	t.Run("evicted idle pool is closed", func(t *testing.T) {
		rabbit, tiger := storagetest.NewPool("rabbit"), storagetest.NewPool("tiger")
		pc, _ := newTestCache(1, rabbit, tiger)

		p, err := pc.Pool("rabbit")
		require.NoError(t, err)
		p.Close()

		p, err = pc.Pool("tiger")
		require.NoError(t, err)
		defer p.Close()

		assert.True(t, rabbit.Closed)
		assert.False(t, tiger.Closed)
		assert.Equal(t, 1, pc.Size())
	})

	t.Run("evicted busy pool is closed by its last user", func(t *testing.T) {
		rabbit, tiger := storagetest.NewPool("rabbit"), storagetest.NewPool("tiger")
		pc, _ := newTestCache(1, rabbit, tiger)

		inUse, err := pc.Pool("rabbit")
		require.NoError(t, err)

		p, err := pc.Pool("tiger")
		require.NoError(t, err)
		p.Close()

		assert.False(t, rabbit.Closed)
		inUse.Close()
		assert.True(t, rabbit.Closed)

		// closing twice releases once
		inUse.Close()
	})

	t.Run("close drops everything", func(t *testing.T) {
		rabbit := storagetest.NewPool("rabbit")
		pc, _ := newTestCache(2, rabbit)

		p, err := pc.Pool("rabbit")
		require.NoError(t, err)
		p.Close()

		pc.Close()
		assert.True(t, rabbit.Closed)
		_, err = pc.Pool("rabbit")
		assert.Equal(t, ErrCacheClosed, err)
	})

	t.Run("slow open doesn't block other pools", func(t *testing.T) {
		log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())
		gp := newGatedProvider()
		pc := NewPoolCache(log, gp, 4)
		defer close(gp.gate)

		go func() {
			if p, err := pc.Pool("slow"); err == nil {
				p.Close()
			}
		}()
		waitFor(t, gp.entered)

		got := make(chan struct{})
		go func() {
			p, err := pc.Pool("rabbit")
			if err == nil {
				p.Close()
			}
			close(got)
		}()
		waitFor(t, got)
	})

	t.Run("concurrent opens keep one pool", func(t *testing.T) {
		log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())
		gp := newGatedProvider()
		pc := NewPoolCache(log, gp, 4)

		handles := make(chan storage.Pool, 2)
		for i := 0; i < 2; i++ {
			go func() {
				p, err := pc.Pool("slow")
				if err != nil {
					p = nil
				}
				handles <- p
			}()
		}
		waitFor(t, gp.entered)
		waitFor(t, gp.entered)
		close(gp.gate)

		a, b := <-handles, <-handles
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.Same(t, a.(*handle).Pool, b.(*handle).Pool)
		assert.Equal(t, 1, pc.Size())

		require.Len(t, gp.opened, 2)
		closed := 0
		for _, p := range gp.opened {
			if p.Closed {
				closed++
			}
		}
		assert.Equal(t, 1, closed)
		a.Close()
		b.Close()
	})

	t.Run("pool opened after close is dropped", func(t *testing.T) {
		log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())
		gp := newGatedProvider()
		pc := NewPoolCache(log, gp, 4)

		errs := make(chan error, 1)
		go func() {
			_, err := pc.Pool("slow")
			errs <- err
		}()
		waitFor(t, gp.entered)
		pc.Close()
		close(gp.gate)

		assert.Equal(t, ErrCacheClosed, <-errs)
		require.Len(t, gp.opened, 1)
		assert.True(t, gp.opened[0].Closed)
	})
}
