package keylock

import (
	"context"
	"sync"
)

// Lock serializes callers sharing the same key.
type Lock interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type entry struct {
	ch   chan struct{}
	refs int
}

type lock struct {
	lck     sync.Mutex
	entries map[string]*entry
}

// New creates a lock that serializes callers sharing the same key.
func New() Lock {
	return &lock{
		entries: map[string]*entry{},
	}
}

// Lock waits until the key is free or the context is done. It returns a
// function that unlocks the key.
func (l *lock) Lock(ctx context.Context, key string) (func(), error) {
	l.lck.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.lck.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

// release drops the entry once nobody holds or waits for the key.
func (l *lock) release(key string, e *entry) {
	l.lck.Lock()
	defer l.lck.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *lock) keys() int {
	l.lck.Lock()
	defer l.lck.Unlock()
	return len(l.entries)
}
