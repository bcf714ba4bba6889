package cache

import (
	"sync"

	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/rs/zerolog"
)

// Entry is an opened pool held by the cache. refs counts the handles given
// out and not yet closed; an evicted entry is closed when refs drops to 0.
type Entry struct {
	pool    storage.Pool
	refs    int
	evicted bool
}

var _ storage.PoolProvider = (*PoolCache)(nil)

// PoolCache opens pools through another provider and keeps the most
// recently used ones open. Handles returned by Pool must be closed by the
// caller; closing a handle only releases it back to the cache.
type PoolCache struct {
	log    zerolog.Logger
	opener storage.PoolProvider

	mu     sync.Mutex
	lru    *LRUCache
	closed bool
}

// NewPoolCache returns a cache keeping at most capacity pools open.
func NewPoolCache(log zerolog.Logger, opener storage.PoolProvider, capacity int) *PoolCache {
	pc := &PoolCache{
		log:    log,
		opener: opener,
	}
	pc.lru = NewLRUCache(capacity, pc.evict)
	return pc
}

// Pool returns a handle on the pool called name, opening it on first use.
// Opening happens without holding the cache lock, so a slow pool doesn't
// hold up requests on others. When two callers open the same pool at once,
// the first to insert it wins and the other's copy is closed.
func (pc *PoolCache) Pool(name string) (storage.Pool, error) {
	if h, err := pc.cached(name); h != nil || err != nil {
		return h, err
	}

	p, err := pc.opener.Pool(name)
	if err != nil {
		return nil, err
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		p.Close()
		return nil, ErrCacheClosed
	}
	e, err := pc.lru.GetElement(name)
	if err == nil {
		p.Close()
	} else {
		e = &Entry{pool: p}
		if err := pc.lru.PutElement(name, e); err != nil {
			p.Close()
			return nil, err
		}
		pc.
			log.
			Debug().
			Str("pool", name).
			Int("cached", pc.lru.Size()).
			Msg("pool cached")
	}
	return pc.acquire(e), nil
}

// cached returns a handle on name if it is already open.
func (pc *PoolCache) cached(name string) (storage.Pool, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return nil, ErrCacheClosed
	}
	e, err := pc.lru.GetElement(name)
	if err != nil {
		return nil, nil
	}
	return pc.acquire(e), nil
}

// acquire is called with pc.mu held.
func (pc *PoolCache) acquire(e *Entry) storage.Pool {
	e.refs++
	return &handle{Pool: e.pool, pc: pc, e: e}
}

// Size returns the number of pools held open.
func (pc *PoolCache) Size() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.lru.Size()
}

// Close drops every cached pool. Pools still in use are closed when their
// last handle is.
func (pc *PoolCache) Close() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.closed = true
	for _, key := range pc.lru.Keys() {
		e, _ := pc.lru.GetElement(key)
		pc.lru.RemoveElement(key)
		pc.evict(key, e)
	}
}

// evict is called with pc.mu held.
func (pc *PoolCache) evict(key string, e *Entry) {
	e.evicted = true
	if e.refs == 0 {
		e.pool.Close()
	}
	pc.
		log.
		Debug().
		Str("pool", key).
		Int("refs", e.refs).
		Msg("pool evicted")
}

func (pc *PoolCache) release(e *Entry) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	e.refs--
	if e.evicted && e.refs == 0 {
		e.pool.Close()
	}
}

// handle is a reference on a cached pool.
type handle struct {
	storage.Pool
	pc   *PoolCache
	e    *Entry
	once sync.Once
}

// Close releases the reference; it doesn't close the pool itself.
func (h *handle) Close() {
	h.once.Do(func() { h.pc.release(h.e) })
}
