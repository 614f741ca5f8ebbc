package locker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepAliveExtendsUntilStopped(t *testing.T) {
	stop := make(chan struct{})
	done := make(chan struct{})
	var calls atomic.Int32

	go func() {
		defer close(done)
		keepAlive(stop, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			calls.Add(1)
			return true, nil
		}, func(err error) {
			t.Errorf("unexpected lost lock: %v", err)
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	close(stop)
	<-done

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no extension after stop")
}

func TestKeepAliveGivesUpWhenLockIsGone(t *testing.T) {
	done := make(chan struct{})
	var lost error

	go func() {
		defer close(done)
		keepAlive(make(chan struct{}), 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			return false, nil
		}, func(err error) {
			lost = err
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepAlive did not return after losing the lock")
	}
	assert.ErrorIs(t, lost, errLockLost)
}

func TestKeepAliveRetriesFailedExtension(t *testing.T) {
	stop := make(chan struct{})
	done := make(chan struct{})
	var calls, failures atomic.Int32

	go func() {
		defer close(done)
		keepAlive(stop, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			if calls.Add(1) == 1 {
				return false, errors.New("connection reset")
			}
			return true, nil
		}, func(err error) {
			failures.Add(1)
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	close(stop)
	<-done
	assert.Equal(t, int32(1), failures.Load())
}
