package qdb

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type lockState struct {
	exclusive uuid.UUID
	shared    map[uuid.UUID]int
}

func (s *lockState) empty() bool {
	return s.exclusive == uuid.Nil && len(s.shared) == 0
}

// grantable reports whether owner may take the lock in the given mode.
// Locks held by the same owner never conflict with each other.
func (s *lockState) grantable(owner uuid.UUID, shared bool) bool {
	if s.exclusive != uuid.Nil && s.exclusive != owner {
		return false
	}
	if shared {
		return true
	}
	for o := range s.shared {
		if o != owner {
			return false
		}
	}
	return true
}

// lockTable emulates transaction-scoped advisory locks for MemQDB.
type lockTable struct {
	mu   sync.Mutex
	held map[int64]*lockState
	// closed and replaced on every release so that waiters re-check
	wake chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{
		held: map[int64]*lockState{},
		wake: make(chan struct{}),
	}
}

func (l *lockTable) acquire(ctx context.Context, key int64, owner uuid.UUID, shared bool) error {
	for {
		l.mu.Lock()
		st, ok := l.held[key]
		if !ok {
			st = &lockState{shared: map[uuid.UUID]int{}}
			l.held[key] = st
		}
		if st.grantable(owner, shared) {
			if shared {
				st.shared[owner]++
			} else {
				st.exclusive = owner
			}
			l.mu.Unlock()
			return nil
		}
		wake := l.wake
		l.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *lockTable) releaseAll(owner uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	released := false
	for key, st := range l.held {
		if st.exclusive == owner {
			st.exclusive = uuid.Nil
			released = true
		}
		if _, ok := st.shared[owner]; ok {
			delete(st.shared, owner)
			released = true
		}
		if st.empty() {
			delete(l.held, key)
		}
	}
	if released {
		close(l.wake)
		l.wake = make(chan struct{})
	}
}
