// Package cache provides a bounded map that evicts in insertion order.
package cache

import "sync"

const DefaultCapacity = 100

type (
	// FIFO holds at most capacity entries. When full, the oldest inserted
	// entry is evicted. Reads do not refresh an entry's position.
	FIFO[K comparable, V any] struct {
		mu       sync.Mutex
		capacity int
		entries  map[K]V
		order    []K

		hits      uint64
		misses    uint64
		evictions uint64
	}

	Stats struct {
		Len       int    `json:"len"`
		Capacity  int    `json:"capacity"`
		Hits      uint64 `json:"hits"`
		Misses    uint64 `json:"misses"`
		Evictions uint64 `json:"evictions"`
	}
)

func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FIFO[K, V]{
		capacity: capacity,
		entries:  make(map[K]V, capacity+1),
		order:    make([]K, 0, capacity+1),
	}
}

// GetOrCompute returns the cached value for key, or calls compute and caches
// its result. The lookup, compute, insert and eviction run under one lock so
// concurrent callers never compute the same key twice. A failed compute is
// not cached. The bool result reports a cache hit.
func (c *FIFO[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		c.hits++
		return v, true, nil
	}
	c.misses++

	v, err := compute()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.insert(key, v)
	return v, false, nil
}

func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	return v, ok
}

func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *FIFO[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// caller holds c.mu
func (c *FIFO[K, V]) insert(key K, v V) {
	c.entries[key] = v
	c.order = append(c.order, key)

	for len(c.entries) > c.capacity {
		oldest := c.order[0]
		var zero K
		c.order[0] = zero
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions++
	}
}
