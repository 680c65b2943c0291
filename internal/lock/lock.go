// Package lock serializes stage operations per season.  Acquisition never
// waits: a season that is already locked reports ErrBusy immediately.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when another stage operation holds the season.
var ErrBusy = errors.New("another stage operation is running for this season")

// Locker hands out per-season locks.  The returned release function must
// be called exactly once.
type Locker interface {
	TryLock(ctx context.Context, seasonID string) (release func(), err error)
}

// Local is an in-process Locker.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal returns an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// TryLock implements Locker.
func (l *Local) TryLock(_ context.Context, seasonID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[seasonID]; ok {
		return nil, ErrBusy
	}
	l.held[seasonID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, seasonID)
			l.mu.Unlock()
		})
	}, nil
}
