package cache

var _ Cache = (*LRUCache)(nil)

// LRUCache implements a cache. It uses a linked list as
// the primary data structure along with a hash-map for
// checking existance of an element in the cache.
//
// The head of the linked list is always the most recently used
// element and the tail the least recently used one:
// * All insertions occur at the head of the DLL.
// * After every access, the element is moved to the head.
// * When the cache is full, the tail is evicted to make room.
//
// LRUCache is not safe for concurrent use; PoolCache serializes access.
type LRUCache struct {
	capacity int
	m        map[string]*DLLNode
	dll      *DoublyLinkedList
	onEvict  func(key string, e *Entry)
}

// NewLRUCache creates a new LRUCache of provided size. onEvict, if not nil,
// is called with every element dropped to make room for a new one.
func NewLRUCache(capacity int, onEvict func(key string, e *Entry)) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		m:        make(map[string]*DLLNode),
		dll:      NewDoublyLinkedList(),
		onEvict:  onEvict,
	}
}

// GetElement gets an element from the cache and bumps it to the MRU
// position. Error is returned only if the element doesn't exist in the cache.
func (lru *LRUCache) GetElement(key string) (*Entry, error) {
	node, ok := lru.m[key]
	if !ok {
		return nil, ErrElementDoesntExist
	}
	lru.dll.MoveToFront(node)
	return node.value, nil
}

// PutElement inserts an element at the MRU position. When the cache is
// full the LRU element is evicted first.
func (lru *LRUCache) PutElement(key string, e *Entry) error {
	if _, ok := lru.m[key]; ok {
		return ErrElementAlreadyExists
	}
	if lru.Full() {
		tail := lru.dll.Tail
		lru.dll.DeleteNode(tail)
		delete(lru.m, tail.key)
		if lru.onEvict != nil {
			lru.onEvict(tail.key, tail.value)
		}
	}
	lru.m[key] = lru.dll.PushFront(key, e)
	return nil
}

// RemoveElement deletes the element stored under key. The eviction
// callback is not called.
func (lru *LRUCache) RemoveElement(key string) error {
	node, ok := lru.m[key]
	if !ok {
		return ErrElementDoesntExist
	}
	lru.dll.DeleteNode(node)
	delete(lru.m, key)
	return nil
}

// Keys returns the cached keys from most to least recently used.
func (lru *LRUCache) Keys() []string {
	return lru.dll.Keys()
}

// Capacity returns the max capacity of the cache.
func (lru *LRUCache) Capacity() int {
	return lru.capacity
}

// Size returns the number of elements in the cache.
func (lru *LRUCache) Size() int {
	return lru.dll.Len()
}

// Full returns true if the cache is full, else returns false.
func (lru *LRUCache) Full() bool {
	return lru.dll.Len() >= lru.capacity
}
