// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package lrucache

import (
	"context"
	"sync"
)

// ComputeValue is the closure passed to `Get` to compute the value in
// case it is not cached. It returns the value and a size estimate in
// whatever unit the cache budget is counted in.
type ComputeValue[V any] func() (value V, size int, err error)

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
	err   error
	size  int

	// Closed once the computation finished. Entries reachable through
	// the LRU list always have a closed done channel.
	done chan struct{}

	next, prev *cacheEntry[K, V]
}

// Cache is an in-memory LRU cache with a size budget and single-flight
// computation: concurrent Gets of one key share the computation, and a
// waiter abandoning via its context does not cancel the computation for
// the others.
type Cache[K comparable, V any] struct {
	mutex        sync.Mutex
	budget, used int
	entries      map[K]*cacheEntry[K, V]
	head, tail   *cacheEntry[K, V]
}

// New returns a new cache instance with the given total size budget.
func New[K comparable, V any](budget int) *Cache[K, V] {
	return &Cache[K, V]{
		budget:  budget,
		entries: map[K]*cacheEntry[K, V]{},
	}
}

// Get returns the cached value for `key` or calls `computeValue` and
// stores its result. The closure runs without the cache lock held and
// shall not call back into the same cache. If another goroutine is
// already computing the value for this key, the call waits for that
// computation; a canceled context aborts only the wait.
func (c *Cache[K, V]) Get(ctx context.Context, key K, computeValue ComputeValue[V]) (V, error) {
	var zero V

	c.mutex.Lock()
	if entry, ok := c.entries[key]; ok {
		select {
		case <-entry.done:
			v := entry.value
			c.unlinkEntry(entry)
			c.insertFront(entry)
			c.mutex.Unlock()
			return v, nil
		default:
		}

		// Computation in flight: wait on it, but honor our own
		// context. The computation itself keeps running.
		done := entry.done
		c.mutex.Unlock()
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-done:
		}
		if entry.err != nil {
			return zero, entry.err
		}
		return entry.value, nil
	}

	entry := &cacheEntry[K, V]{
		key:  key,
		done: make(chan struct{}),
	}
	c.entries[key] = entry
	c.mutex.Unlock()

	completed := false
	defer func() {
		if !completed {
			// computeValue paniced. Unblock waiters and forget the
			// entry before re-panicing.
			c.mutex.Lock()
			entry.err = context.Canceled
			if c.entries[key] == entry {
				delete(c.entries, key)
			}
			close(entry.done)
			c.mutex.Unlock()
		}
	}()

	value, size, err := computeValue()

	c.mutex.Lock()
	completed = true
	entry.value = value
	entry.size = size
	entry.err = err

	if err != nil || c.entries[key] != entry {
		// Failed, or evicted/invalidated while computing: hand the
		// result to the waiters but keep nothing.
		if err != nil && c.entries[key] == entry {
			delete(c.entries, key)
		}
		close(entry.done)
		c.mutex.Unlock()
		return value, err
	}

	close(entry.done)
	c.used += size
	c.insertFront(entry)

	// Evict from the cold end until the budget holds again. Entries in
	// the list are never in flight, so eviction cannot strand waiters.
	evictionCandidate := c.tail
	for c.used > c.budget && evictionCandidate != nil {
		nextCandidate := evictionCandidate.prev
		c.evictEntry(evictionCandidate)
		evictionCandidate = nextCandidate
	}

	c.mutex.Unlock()
	return value, nil
}

// Del removes the value at key `key` from the cache. An in-flight
// computation is detached: it completes for its waiters, but the result
// is discarded. Returns true if the key was present.
func (c *Cache[K, V]) Del(key K) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}

	select {
	case <-entry.done:
		c.evictEntry(entry)
	default:
		delete(c.entries, key)
	}
	return true
}

// DelFunc removes every entry whose key matches the predicate. Used for
// eager invalidation when a log is dropped.
func (c *Cache[K, V]) DelFunc(match func(K) bool) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	n := 0
	for key, entry := range c.entries {
		if !match(key) {
			continue
		}
		select {
		case <-entry.done:
			c.evictEntry(entry)
		default:
			delete(c.entries, key)
		}
		n++
	}
	return n
}

// Stats returns the entry count, the used size and the budget.
func (c *Cache[K, V]) Stats() (entries int, used int, budget int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries), c.used, c.budget
}

func (c *Cache[K, V]) insertFront(e *cacheEntry[K, V]) {
	e.next = c.head
	c.head = e

	e.prev = nil
	if e.next != nil {
		e.next.prev = e
	}

	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache[K, V]) unlinkEntry(e *cacheEntry[K, V]) {
	if e == c.head {
		c.head = e.next
	}
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if e == c.tail {
		c.tail = e.prev
	}
	e.next, e.prev = nil, nil
}

func (c *Cache[K, V]) evictEntry(e *cacheEntry[K, V]) {
	c.unlinkEntry(e)
	c.used -= e.size
	delete(c.entries, e.key)
}
