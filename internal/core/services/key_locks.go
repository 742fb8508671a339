package services

import (
	"sync"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// keyLocks serializes work per hold key. Entries are reference counted and
// dropped once no goroutine holds or waits on them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[domain.HoldKey]*refMutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[domain.HoldKey]*refMutex)}
}

func (l *keyLocks) Lock(key domain.HoldKey) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &refMutex{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
