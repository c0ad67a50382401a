// Package queue runs background jobs for the dashboard, so slow work like
// vendor alert delivery never blocks the feed.
//
// Usage:
//
//	// Define a job
//	type ReservationAlertJob struct { Reservation models.Reservation }
//	func (j *ReservationAlertJob) Handle() error {
//	    return sendAlert(j.Reservation)
//	}
//
//	// Register once at boot, then dispatch. The registry key is the
//	// dispatched value's type string, pointer included.
//	queue.Register("*dashboard.ReservationAlertJob", func() queue.Job { return &ReservationAlertJob{} })
//	queue.Dispatch(&ReservationAlertJob{Reservation: r})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/sofreh/pkg/logger"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle() error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// delayedDriver is implemented by drivers with native delayed delivery.
type delayedDriver interface {
	PushDelayed(payload []byte, delay time.Duration) error
}

// ─── Manager ──────────────────────────────────────────────────────────────────

// Manager owns the driver, the job registry, and the failure log.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job // type string to constructor
	failed   []FailedJob
	maxRetry int
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	driver:   NewMemoryDriver(),
}

// SetDriver swaps the underlying queue driver (e.g. Redis).
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// SetMaxRetry sets how many times a failing job is attempted.
func SetMaxRetry(n int) { defaultManager.maxRetry = n }

// Register makes a job type reconstructable by name. Call once at boot
// for every job type.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

// ─── Dispatch ─────────────────────────────────────────────────────────────────

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue immediately.
func Dispatch(job Job) error {
	return defaultManager.push(job, 0)
}

// DispatchAfter pushes job onto the queue after a delay. The Redis
// driver schedules it server-side; the memory driver sleeps in a
// goroutine, so the delay does not survive a restart.
func DispatchAfter(job Job, delay time.Duration) error {
	return defaultManager.push(job, delay)
}

func (m *Manager) push(job Job, delay time.Duration) error {
	typeName := fmt.Sprintf("%T", job)

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}
	env, err := json.Marshal(envelope{Type: typeName, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if delay <= 0 {
		return d.Push(env)
	}
	if dd, ok := d.(delayedDriver); ok {
		return dd.PushDelayed(env, delay)
	}
	go func() {
		time.Sleep(delay)
		if err := d.Push(env); err != nil {
			logger.Error("queue: delayed push failed", "type", typeName, "error", err)
		}
	}()
	return nil
}

// ─── Workers ──────────────────────────────────────────────────────────────────

// StartWorkers launches n workers that consume jobs until ctx is
// cancelled.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go defaultManager.consume(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) consume(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		m.handle(raw)
	}
}

func (m *Manager) handle(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(job, env.Type)
}

func (m *Manager) runWithRetry(job Job, typeName string) {
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		if err := job.Handle(); err != nil {
			lastErr = err
			logger.Warn("queue: job failed, retrying",
				"type", typeName, "attempt", attempt, "error", err)
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}
		logger.Debug("queue: job processed", "type", typeName)
		return
	}

	m.recordFailure(job, typeName, lastErr, m.maxRetry)
	logger.Error("queue: job exhausted retries", "type", typeName, "error", lastErr)
}

// FailedJobs returns a snapshot of every job that exhausted its retries.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}
