package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LRUCache(t *testing.T) {
	var evicted []string
	lruCache := NewLRUCache(3, func(key string, e *Entry) {
		evicted = append(evicted, key)
	})

	for _, k := range []string{"1", "2", "3"} {
		require.NoError(t, lruCache.PutElement(k, &Entry{}))
	}
	assert.True(t, lruCache.Full())
	assert.Equal(t, []string{"3", "2", "1"}, lruCache.Keys())

	err := lruCache.PutElement("2", &Entry{})
	assert.Equal(t, ErrElementAlreadyExists, err)

	_, err = lruCache.GetElement("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "2"}, lruCache.Keys())

	// LRU Cache is full, so the tail element
	// must be evicted on insertion of 4
	require.NoError(t, lruCache.PutElement("4", &Entry{}))
	assert.Equal(t, []string{"2"}, evicted)
	assert.Equal(t, []string{"4", "1", "3"}, lruCache.Keys())

	_, err = lruCache.GetElement("2")
	assert.Equal(t, ErrElementDoesntExist, err)

	require.NoError(t, lruCache.RemoveElement("1"))
	assert.Equal(t, ErrElementDoesntExist, lruCache.RemoveElement("1"))
	assert.Equal(t, 2, lruCache.Size())
	assert.False(t, lruCache.Full())
	assert.Equal(t, []string{"2"}, evicted)
}
