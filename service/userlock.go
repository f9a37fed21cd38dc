package service

import "sync"

// UserLocks serializes message handling per user id. Session state is a
// read-modify-save on the user record, so two updates from the same
// user must never interleave; different users proceed in parallel.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewUserLocks creates an empty lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*userLock)}
}

// Lock blocks until the lock for userID is held. Entries are reference
// counted so the table does not grow with the user population.
func (l *UserLocks) Lock(userID int64) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for userID.
func (l *UserLocks) Unlock(userID int64) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
