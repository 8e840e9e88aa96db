package session

import "sync"

// lockArena hands out one mutex per user so that mutating sequences for a
// single user serialize while distinct users never contend. Locks are
// refcounted and removed from the arena once the last holder releases,
// keeping memory proportional to in-flight users rather than all users ever
// seen.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*arenaLock
}

type arenaLock struct {
	mu   sync.Mutex
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]*arenaLock)}
}

// acquire blocks until the per-key lock is held and returns the handle to
// pass back to release.
func (a *lockArena) acquire(key string) *arenaLock {
	a.mu.Lock()
	l, ok := a.locks[key]
	if !ok {
		l = &arenaLock{}
		a.locks[key] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return l
}

func (a *lockArena) release(key string, l *arenaLock) {
	l.mu.Unlock()

	a.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(a.locks, key)
	}
	a.mu.Unlock()
}
