package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/sofreh/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

var delivered atomic.Int32

type alertJob struct {
	Guest string `json:"guest"`
}

func (j *alertJob) Handle() error {
	delivered.Add(1)
	return nil
}

type failJob struct{}

func (j *failJob) Handle() error {
	return errors.New("webhook unreachable")
}

func init() {
	// Start workers so jobs actually get processed in tests.
	queue.StartWorkers(context.Background(), 2)

	queue.Register("*queue_test.alertJob", func() queue.Job { return &alertJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndProcess(t *testing.T) {
	before := delivered.Load()
	if err := queue.Dispatch(&alertJob{Guest: "Sara"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for delivered.Load() == before {
		select {
		case <-deadline:
			t.Fatal("job was never processed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestFailedJobRetry(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	if err := queue.Dispatch(&failJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 1 attempt + 1s backoff + slack.
	time.Sleep(2500 * time.Millisecond)

	if len(queue.FailedJobs()) == 0 {
		t.Error("expected at least one failed job")
	}
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&alertJob{Guest: "walk-in"}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
