// Package keylock provides an in-process mutual exclusion lock keyed by string.
// Waiters for the same key are serialized; different keys never contend.
// Acquisition honors context cancellation.
package keylock

import (
	"context"
	"sync"
)

// entry is the per-key semaphore together with the number of goroutines holding or waiting for it.
type entry struct {
	sem  chan struct{}
	refs int
}

// KeyLock serializes work per key. The zero value is not usable; call New.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{
		entries: make(map[string]*entry),
	}
}

// acquireRef returns the entry for key, creating it if needed, and registers the caller on it.
func (k *KeyLock) acquireRef(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++

	return e
}

// releaseRef unregisters the caller and drops the entry once nobody references it.
func (k *KeyLock) releaseRef(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock blocks until the lock for key is held or ctx is done.
//
// On success it returns the function that releases the lock; it must be called exactly once.
// On cancellation it returns ctx.Err() and nothing is held.
func (k *KeyLock) Lock(ctx context.Context, key string) (func(), error) {
	e := k.acquireRef(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.releaseRef(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.releaseRef(key, e)
		})
	}, nil
}

// Len reports how many keys are currently held or awaited.
func (k *KeyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.entries)
}
