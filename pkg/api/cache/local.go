// Package cache keeps recently used values in memory, keyed by string.
// Only cache values that never change once written.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultItems = 1024

type LocalCache[V any] struct {
	items *lru.Cache[string, V]
}

// New returns a cache holding at most maxItems, evicting the least recently used.
func New[V any](maxItems int) *LocalCache[V] {
	if maxItems < 1 {
		maxItems = DefaultItems
	}
	items, err := lru.New[string, V](maxItems)
	if err != nil {
		// lru.New only fails for non-positive sizes
		panic(err)
	}
	return &LocalCache[V]{items: items}
}

func (l *LocalCache[V]) Get(key string) (V, bool) {
	return l.items.Get(key)
}

func (l *LocalCache[V]) Set(key string, v V) {
	l.items.Add(key, v)
}

func (l *LocalCache[V]) Len() int {
	return l.items.Len()
}

// Fetch returns the cached value for key, calling fetch and storing its result on a miss.
// Errors are returned as is and never cached.
func (l *LocalCache[V]) Fetch(key string, fetch func() (V, error)) (V, error) {
	if v, ok := l.items.Get(key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	l.items.Add(key, v)
	return v, nil
}
