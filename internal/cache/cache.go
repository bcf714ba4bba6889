package cache

// Cache describes a bounded cache of opened pools keyed by pool name.
type Cache interface {
	// GetElement gets the entry stored under key.
	// Getting the entry makes it the most recently used one
	// in the cache. This function must be implemented in O(1) complexity.
	// If the key doesn't exist in the cache, an error is raised.
	GetElement(key string) (*Entry, error)
	// PutElement inserts an entry into the cache, evicting the least
	// recently used one when the cache is full. This function must be
	// implemented in O(1) complexity.
	// If the key already exists in the cache, an error is raised.
	PutElement(key string, e *Entry) error
	// RemoveElement removes the entry stored under key.
	RemoveElement(key string) error
	// Capacity returns the max capacity of the cache.
	Capacity() int
	// Size returns the number of elements currently in the cache.
	Size() int
	// Full checks whether the cache is full or not. It returns true if the
	// cache is full.
	Full() bool
}
