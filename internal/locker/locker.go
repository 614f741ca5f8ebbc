package locker

import (
	"context"
	"errors"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker serializes work on a key. The returned func releases the lock and is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type entry struct {
	sem  chan struct{}
	refs int
}

// KeyedLocker is an in-process Locker. Entries are dropped once no goroutine
// holds or waits for them.
type KeyedLocker struct {
	entries *xsync.Map[string, *entry]
}

func New() *KeyedLocker {
	return &KeyedLocker{
		entries: xsync.NewMap[string, *entry](),
	}
}

// Lock blocks until key is free or ctx is done.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	e, _ := l.entries.Compute(key, func(old *entry, loaded bool) (*entry, xsync.ComputeOp) {
		if !loaded {
			old = &entry{sem: make(chan struct{}, 1)}
		}
		old.refs++
		return old, xsync.UpdateOp
	})

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(key)
		})
	}, nil
}

// Len is the number of keys currently held or awaited.
func (l *KeyedLocker) Len() int {
	return l.entries.Size()
}

func (l *KeyedLocker) release(key string) {
	l.entries.Compute(key, func(old *entry, loaded bool) (*entry, xsync.ComputeOp) {
		if !loaded {
			return old, xsync.CancelOp
		}
		old.refs--
		if old.refs == 0 {
			return old, xsync.DeleteOp
		}
		return old, xsync.UpdateOp
	})
}
