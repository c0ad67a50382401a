// Package schedule runs recurring housekeeping tasks for the dashboard,
// the kind of work that should not hang off any request. The only
// built-in consumer today is the daily order-history prune.
//
// Usage:
//
//	schedule.Daily().Name("history-prune").WithoutOverlapping().Run(prune)
//	schedule.Every(15).Minutes().Run(warmCatalog)
//	schedule.Cron("30 3 * * *").Run(nightly)
//
//	schedule.Start(ctx) // once, at boot
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/sofreh/pkg/logger"
)

// tick is how often the loop checks for due jobs. One second keeps cron
// minute boundaries accurate without burning CPU.
const tick = time.Second

// Task is the function signature for a scheduled task.
type Task func()

type job struct {
	name      string
	every     time.Duration
	cron      string // set instead of every when built via Cron()
	task      Task
	last      time.Time
	busy      bool
	noOverlap bool
	mu        sync.Mutex
}

// Builder configures a job before it is registered with Run.
type Builder struct {
	j *job
}

var (
	regMu sync.Mutex
	jobs  []*job
)

// ─── Registration ─────────────────────────────────────────────────────────────

// Every starts a fluent interval builder: Every(15).Minutes().
func Every(n int) intervalBuilder { return intervalBuilder{n: n} }

// Hourly runs the task once an hour.
func Hourly() *Builder { return Every(1).Hours() }

// Daily runs the task once every 24 hours, starting at boot.
func Daily() *Builder { return Every(24).Hours() }

// Cron registers a 5-field cron expression (minute hour dom month dow).
func Cron(expr string) *Builder {
	return &Builder{j: &job{cron: expr}}
}

type intervalBuilder struct{ n int }

func (b intervalBuilder) Minutes() *Builder {
	return &Builder{j: &job{every: time.Duration(b.n) * time.Minute}}
}

func (b intervalBuilder) Hours() *Builder {
	return &Builder{j: &job{every: time.Duration(b.n) * time.Hour}}
}

// Name gives the job an identifier for logging.
func (b *Builder) Name(name string) *Builder {
	b.j.name = name
	return b
}

// WithoutOverlapping skips a run while the previous one is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.j.noOverlap = true
	return b
}

// Run registers the task. Nothing executes until Start is called.
func (b *Builder) Run(fn Task) {
	b.j.task = fn
	regMu.Lock()
	if b.j.name == "" {
		b.j.name = fmt.Sprintf("job-%d", len(jobs)+1)
	}
	jobs = append(jobs, b.j)
	regMu.Unlock()
}

// ─── Loop ─────────────────────────────────────────────────────────────────────

// Start launches the scheduler loop. It stops when ctx is cancelled.
func Start(ctx context.Context) {
	go loop(ctx)
	logger.Info("schedule: started")
}

func loop(ctx context.Context) {
	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: stopped")
			return
		case now := <-t.C:
			regMu.Lock()
			due := make([]*job, 0, len(jobs))
			for _, j := range jobs {
				if j.due(now) {
					due = append(due, j)
				}
			}
			regMu.Unlock()

			for _, j := range due {
				j.fire()
			}
		}
	}
}

func (j *job) due(now time.Time) bool {
	if j.cron != "" {
		// Cron jobs fire on the minute boundary, once per matching minute.
		if now.Second() != 0 || !cronMatch(j.cron, now) {
			return false
		}
		return now.Sub(j.last) >= time.Minute
	}
	if j.last.IsZero() {
		return true
	}
	return now.Sub(j.last) >= j.every
}

func (j *job) fire() {
	j.mu.Lock()
	if j.noOverlap && j.busy {
		j.mu.Unlock()
		logger.Warn("schedule: still running, skipped", "job", j.name)
		return
	}
	j.busy = true
	j.last = time.Now()
	j.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: job panicked", "job", j.name, "panic", r)
			}
			j.mu.Lock()
			j.busy = false
			j.mu.Unlock()
		}()
		logger.Debug("schedule: running", "job", j.name)
		j.task()
	}()
}

// ─── Cron matching ────────────────────────────────────────────────────────────

// cronMatch evaluates a 5-field expression against t. Fields accept
// "*", an exact number, "*/step", or "lo-hi" ranges.
func cronMatch(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	vals := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !fieldMatch(f, vals[i]) {
			return false
		}
	}
	return true
}

func fieldMatch(field string, val int) bool {
	switch {
	case field == "*":
		return true
	case strings.HasPrefix(field, "*/"):
		var step int
		fmt.Sscanf(field[2:], "%d", &step)
		return step > 0 && val%step == 0
	case strings.Contains(field, "-"):
		var lo, hi int
		fmt.Sscanf(field, "%d-%d", &lo, &hi)
		return val >= lo && val <= hi
	default:
		var n int
		fmt.Sscanf(field, "%d", &n)
		return n == val
	}
}

// List reports registered jobs, for diagnostic output.
func List() []string {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		freq := j.cron
		if freq == "" {
			freq = j.every.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", j.name, freq))
	}
	return out
}
