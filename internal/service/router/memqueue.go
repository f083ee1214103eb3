package router

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryQueue is an in-process RouteQueue. Used when redis is disabled.
// Expired lists are dropped lazily on the next access.
type MemoryQueue struct {
	mu     sync.Mutex
	lists  map[string][]string
	expiry map[string]time.Time
	now    func() time.Time
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		lists:  make(map[string][]string),
		expiry: make(map[string]time.Time),
		now:    time.Now,
	}
}

// evict drops key if its ttl has passed. Caller holds mu.
func (q *MemoryQueue) evict(key string) {
	if deadline, ok := q.expiry[key]; ok && !q.now().Before(deadline) {
		delete(q.lists, key)
		delete(q.expiry, key)
	}
}

func (q *MemoryQueue) RPush(_ context.Context, key string, value ...any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.evict(key)
	for _, v := range value {
		switch v := v.(type) {
		case []byte:
			q.lists[key] = append(q.lists[key], string(v))
		case string:
			q.lists[key] = append(q.lists[key], v)
		default:
			return fmt.Errorf("memory queue: unsupported value %T", v)
		}
	}
	return nil
}

func (q *MemoryQueue) Drain(_ context.Context, key string) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.evict(key)
	vals := q.lists[key]
	delete(q.lists, key)
	delete(q.expiry, key)
	return vals, nil
}

func (q *MemoryQueue) LLen(_ context.Context, key string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.evict(key)
	return int64(len(q.lists[key])), nil
}

// Expire sets a ttl on an existing list, like redis EXPIRE. A missing key is
// left alone.
func (q *MemoryQueue) Expire(_ context.Context, key string, ttl time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.evict(key)
	if _, ok := q.lists[key]; !ok {
		return nil
	}
	q.expiry[key] = q.now().Add(ttl)
	return nil
}
