package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameKeySerialized(t *testing.T) {
	l := New().(*lock)
	var running, max int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "a")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&max)
				if n <= m || atomic.CompareAndSwapInt32(&max, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), max)
	assert.Equal(t, 0, l.keys())
}

func TestDifferentKeysParallel(t *testing.T) {
	l := New().(*lock)
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestContextDone(t *testing.T) {
	l := New().(*lock)
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	// Unlocking twice is a no-op
	unlock()
	assert.Equal(t, 0, l.keys())

	unlock, err = l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock()
}

func TestNewReturnsLock(t *testing.T) {
	var l Lock = New()
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock()
}
