// Package ctxsync provides a mutual exclusion lock that honors context
// cancellation while waiting.
package ctxsync

import "context"

// NewMutex creates a new unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{unlock: make(chan struct{})}
}

// A Mutex is a mutual exclusion lock whose acquisition can be abandoned when
// a context is cancelled. The zero value is not usable; call NewMutex.
type Mutex struct {
	unlock chan struct{}
}

// Lock acquires the mutex, blocking until it is available or the context is
// done. It returns the context error when cancelled before acquisition.
func (m *Mutex) Lock(ctx context.Context) error {
	// An already-canceled context never acquires, even when the mutex is
	// free.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.unlock <- struct{}{}:
		return nil
	}
}

// Unlock releases the mutex. Unlocking an unlocked mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.unlock:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
