package storage

import (
	"sort"
	"sync"
)

// Locker hands out one mutex per key. Every collection sharing a store must share a Locker.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker returns an empty lock registry.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

func (l *Locker) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key and returns its release function.
func (l *Locker) Lock(key string) (unlock func()) {
	m := l.get(key)
	m.Lock()
	return m.Unlock
}

// LockAll acquires the mutexes for keys in sorted order so overlapping batches cannot
// deadlock. Duplicate keys are locked once. Release happens in reverse order.
func (l *Locker) LockAll(keys ...string) (unlock func()) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for i, key := range sorted {
		if i > 0 && sorted[i-1] == key {
			continue
		}
		m := l.get(key)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
