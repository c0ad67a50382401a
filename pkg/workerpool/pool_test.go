package workerpool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/sofreh/pkg/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEverything(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var done atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			done.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, n, done.Load())
}

func TestPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})

	// Occupy the only worker, then fill the 2-slot queue.
	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-block
	}))
	<-started
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)
	close(block)
}

func TestPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
}

func TestPoolSurvivesPanic(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.SubmitWait(func() {
		defer wg.Done()
		panic("boom")
	}))
	wg.Wait()

	ran := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task after a panic never ran")
	}
}

func TestPoolShutdownDrains(t *testing.T) {
	pool := workerpool.New(10)

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			done.Add(1)
		}))
	}
	wg.Wait()
	pool.Shutdown()

	assert.EqualValues(t, 50, done.Load())
	assert.True(t, errors.Is(pool.Submit(func() {}), workerpool.ErrPoolClosed))
}
