package blobstore

import (
	"sync"

	"github.com/gofrs/flock"

	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
)

// handlePool serializes creation of per-network store handles and hands
// out exclusive-owned values; readers reuse the handle unserialized, and
// writes funnel through whatever locking the concrete backend applies
// (spec.md §5 "Blob store per-network handles/connections").
//
// Modeled as a lock-protected owned map (spec.md / SPEC_FULL.md design
// notes — "Global hash map of open writers"), not a ConcurrentHashMap
// translation: insert hands over ownership, remove closes explicitly.
type handlePool[T any] struct {
	mu      sync.Mutex
	entries map[string]*poolEntry[T]
	create  func(acronym string) (T, error)
}

type poolEntry[T any] struct {
	value T
	lock  *flock.Flock // advisory per-network file lock, held only if TryLock succeeded
}

func newHandlePool[T any](create func(acronym string) (T, error)) *handlePool[T] {
	return &handlePool[T]{
		entries: make(map[string]*poolEntry[T]),
		create:  create,
	}
}

// Get returns the existing handle for acronym, creating one under the pool
// lock if absent. Before creating it, Get tries a non-blocking flock on
// lockPath; if that fails or the lock is held by another process, a
// warning is logged and creation proceeds anyway.
func (p *handlePool[T]) Get(acronym, lockPath string) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[acronym]; ok {
		return e.value, nil
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		log.Warn("blobstore: handle lock failed, proceeding unlocked", "acronym", acronym, "err", err)
	} else if !locked {
		log.Warn("blobstore: handle already locked by another process", "acronym", acronym)
	}

	v, err := p.create(acronym)
	if err != nil {
		var zero T
		_ = fl.Unlock()
		return zero, err
	}

	p.entries[acronym] = &poolEntry[T]{value: v, lock: fl}
	return v, nil
}

// CloseAll closes every handle the pool holds, releasing file locks.
func (p *handlePool[T]) CloseAll(closeFn func(T) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for acronym, e := range p.entries {
		if err := closeFn(e.value); err != nil && firstErr == nil {
			firstErr = err
		}
		if e.lock != nil {
			_ = e.lock.Unlock()
		}
		delete(p.entries, acronym)
	}
	return firstErr
}
