// Package storagetest provides an in-memory storage.Pool for tests. It keeps
// striped objects and striper locks the way a cluster would, and lets tests
// inject failures and inspect every call made.
package storagetest

import (
	"sync"
	"time"

	"github.com/SystemBuilders/StripeKey/internal/storage"
)

var _ storage.Pool = (*Pool)(nil)

// BreakCall records a BreakLock invocation.
type BreakCall struct {
	Oid, Name, Client, Cookie string
}

// Object is a striped object kept by Pool.
type Object struct {
	Data  []byte
	Mtime time.Time
}

type holder struct {
	client, cookie, addr string
}

// Pool is a fake storage.Pool.
type Pool struct {
	mu sync.Mutex

	name    string
	objects map[string]*Object
	// locks maps a RADOS object name to the holders of StriperLockName.
	locks map[string][]holder

	// RemoveErrs are returned by successive Remove calls before the
	// simulated behaviour applies.
	RemoveErrs []error
	// ListErr, when set, is returned by every ListLockers call.
	ListErr error
	// BreakErr, when set, is returned by every BreakLock call.
	BreakErr error
	// OperateErr, when set, is returned by every WriteOp.Operate call.
	OperateErr error

	RemoveCalls []string
	ListCalls   []string
	BreakCalls  []BreakCall
	WriteOps    []*WriteOp
	Closed      bool
}

// NewPool returns an empty fake pool.
func NewPool(name string) *Pool {
	return &Pool{
		name:    name,
		objects: make(map[string]*Object),
		locks:   make(map[string][]holder),
	}
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Close marks the pool closed.
func (p *Pool) Close() {
	p.mu.Lock()
	p.Closed = true
	p.mu.Unlock()
}

// Put stores a striped object.
func (p *Pool) Put(oid string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[oid] = &Object{Data: append([]byte(nil), data...), Mtime: time.Now()}
}

// Get returns a stored object, or nil.
func (p *Pool) Get(oid string) *Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.objects[oid]
}

// HoldStriperLock makes client hold the striper lock of the striped object
// oid, as a writer that died mid-write would.
func (p *Pool) HoldStriperLock(oid, client, cookie, addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	chunk := storage.FirstChunkID(oid)
	p.locks[chunk] = append(p.locks[chunk], holder{client: client, cookie: cookie, addr: addr})
}

// Locked reports whether the striper lock of oid is held.
func (p *Pool) Locked(oid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks[storage.FirstChunkID(oid)]) > 0
}

// Remove removes a striped object.
func (p *Pool) Remove(oid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RemoveCalls = append(p.RemoveCalls, oid)
	if len(p.RemoveErrs) > 0 {
		err := p.RemoveErrs[0]
		p.RemoveErrs = p.RemoveErrs[1:]
		if err != nil {
			return err
		}
	}
	if len(p.locks[storage.FirstChunkID(oid)]) > 0 {
		return storage.ErrBusy
	}
	if _, ok := p.objects[oid]; !ok {
		return storage.ErrNotFound
	}
	delete(p.objects, oid)
	return nil
}

// Stat returns the size and mtime of a striped object.
func (p *Pool) Stat(oid string) (uint64, time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	obj, ok := p.objects[oid]
	if !ok {
		return 0, time.Time{}, storage.ErrNotFound
	}
	return uint64(len(obj.Data)), obj.Mtime, nil
}

// ListLockers lists the holders of name on the RADOS object oid.
func (p *Pool) ListLockers(oid, name string) (*storage.LockInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls = append(p.ListCalls, oid)
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	info := &storage.LockInfo{}
	if name != storage.StriperLockName {
		return info, nil
	}
	for _, h := range p.locks[oid] {
		info.Exclusive = true
		info.Clients = append(info.Clients, h.client)
		info.Cookies = append(info.Cookies, h.cookie)
		info.Addrs = append(info.Addrs, h.addr)
	}
	return info, nil
}

// BreakLock drops the holder identified by client and cookie.
func (p *Pool) BreakLock(oid, name, client, cookie string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.BreakCalls = append(p.BreakCalls, BreakCall{Oid: oid, Name: name, Client: client, Cookie: cookie})
	if p.BreakErr != nil {
		return p.BreakErr
	}
	holders := p.locks[oid]
	for i, h := range holders {
		if h.client == client && h.cookie == cookie {
			p.locks[oid] = append(holders[:i], holders[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// CreateWriteOp returns a recording write operation.
func (p *Pool) CreateWriteOp() storage.WriteOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	op := &WriteOp{pool: p}
	p.WriteOps = append(p.WriteOps, op)
	return op
}

// WriteStep is one write added to a WriteOp.
type WriteStep struct {
	Data   []byte
	Offset uint64
	Flags  uint32
}

// WriteOp records the steps added to it and applies them on Operate.
type WriteOp struct {
	pool *Pool

	Steps    []WriteStep
	Operated []string
	Released bool
}

// Write adds a write step.
func (op *WriteOp) Write(data []byte, offset uint64) {
	op.Steps = append(op.Steps, WriteStep{Data: append([]byte(nil), data...), Offset: offset})
}

// SetFlags sets flags on the last step.
func (op *WriteOp) SetFlags(flags uint32) {
	if len(op.Steps) == 0 {
		return
	}
	op.Steps[len(op.Steps)-1].Flags = flags
}

// Operate applies the steps to oid.
func (op *WriteOp) Operate(oid string) error {
	p := op.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	op.Operated = append(op.Operated, oid)
	if p.OperateErr != nil {
		return p.OperateErr
	}
	obj, ok := p.objects[oid]
	if !ok {
		obj = &Object{}
		p.objects[oid] = obj
	}
	for _, s := range op.Steps {
		end := s.Offset + uint64(len(s.Data))
		if uint64(len(obj.Data)) < end {
			grown := make([]byte, end)
			copy(grown, obj.Data)
			obj.Data = grown
		}
		copy(obj.Data[s.Offset:], s.Data)
	}
	obj.Mtime = time.Now()
	return nil
}

// Release marks the operation released.
func (op *WriteOp) Release() { op.Released = true }

// Provider is a fake storage.PoolProvider over a fixed set of pools.
type Provider struct {
	Pools map[string]*Pool
}

// NewProvider returns a provider serving the given pools.
func NewProvider(pools ...*Pool) *Provider {
	pr := &Provider{Pools: make(map[string]*Pool)}
	for _, p := range pools {
		pr.Pools[p.Name()] = p
	}
	return pr
}

// Pool returns the pool called name.
func (pr *Provider) Pool(name string) (storage.Pool, error) {
	p, ok := pr.Pools[name]
	if !ok {
		return nil, storage.ErrPoolNotFound
	}
	return p, nil
}
