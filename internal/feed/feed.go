// Package feed maintains the vendor's live reservation list by merging two
// sources: periodic GET /reservations/ snapshots and pushed broker events.
//
// Both sources funnel through one keyed ingest, so a reservation that
// arrives over the socket and then again in the next poll shows up exactly
// once. Records are kept newest first. Subscribers are notified through
// pkg/event off a bounded worker pool, so a slow consumer never blocks the
// socket reader.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/config"
	"github.com/shashiranjanraj/sofreh/pkg/event"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/metrics"
	"github.com/shashiranjanraj/sofreh/pkg/workerpool"
	"github.com/shashiranjanraj/sofreh/pkg/ws"
)

// PushEvent is the broker event name carrying a new reservation.
const PushEvent = "new-reservation"

// Feed is the merged, deduplicated reservation stream.
type Feed struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	items []models.Reservation // newest first

	svc       *services.ReservationService
	pool      *workerpool.Pool
	PollEvery time.Duration
}

func New(svc *services.ReservationService) *Feed {
	return &Feed{
		seen:      make(map[string]struct{}),
		svc:       svc,
		pool:      workerpool.New(8),
		PollEvery: 30 * time.Second,
	}
}

// Run starts the poll loop and the push subscription and blocks until ctx
// is cancelled.
func (f *Feed) Run(ctx context.Context) {
	defer f.pool.Shutdown()

	go f.consumePush(ctx)

	// First snapshot immediately, then on the ticker.
	f.poll(ctx)
	ticker := time.NewTicker(f.PollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.poll(ctx)
		}
	}
}

// Items returns a copy of the current feed, newest first.
func (f *Feed) Items() []models.Reservation {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Reservation, len(f.items))
	copy(out, f.items)
	return out
}

// ─── Sources ──────────────────────────────────────────────────────────────────

func (f *Feed) poll(ctx context.Context) {
	list, err := f.svc.List(ctx)
	if err != nil {
		logger.Warn("feed: poll failed", "error", err)
		return
	}
	for _, r := range list {
		f.ingest(r, "poll")
	}
}

func (f *Feed) consumePush(ctx context.Context) {
	sub := ws.Subscribe(ctx, config.PushURL(), config.PushChannel())
	for ev := range sub.Events {
		if ev.Event != PushEvent {
			continue
		}
		var r models.Reservation
		if err := json.Unmarshal(ev.Data, &r); err != nil {
			logger.Warn("feed: bad push payload", "error", err)
			continue
		}
		f.ingest(r, "push")
	}
}

// ─── Ingest ───────────────────────────────────────────────────────────────────

// ingest admits a reservation exactly once across both sources.
func (f *Feed) ingest(r models.Reservation, source string) {
	keys := dedupKeys(r)

	f.mu.Lock()
	for _, k := range keys {
		if _, dup := f.seen[k]; dup {
			f.mu.Unlock()
			metrics.FeedEvents.WithLabelValues(source, "duplicate").Inc()
			return
		}
	}
	for _, k := range keys {
		f.seen[k] = struct{}{}
	}
	f.insertLocked(r)
	f.mu.Unlock()

	metrics.FeedEvents.WithLabelValues(source, "new").Inc()

	err := f.pool.Submit(func() {
		event.Fire("reservation.received", r)
	})
	if err != nil {
		logger.Warn("feed: notification dropped", "error", err, "key", r.Key())
	}
}

// dedupKeys returns every key the reservation is known under. A record with
// a server id also registers its composite key, so a push event that arrived
// without an id does not come back as "new" in the next poll.
func dedupKeys(r models.Reservation) []string {
	keys := []string{r.Key()}
	if r.ID != 0 {
		withoutID := r
		withoutID.ID = 0
		keys = append(keys, withoutID.Key())
	}
	return keys
}

// insertLocked places r in newest-first position. CreatedAt is an ISO
// timestamp, so string comparison orders correctly; records without one
// (fresh push events) go to the front.
func (f *Feed) insertLocked(r models.Reservation) {
	if r.CreatedAt == "" {
		f.items = append([]models.Reservation{r}, f.items...)
		return
	}
	for i, existing := range f.items {
		if existing.CreatedAt != "" && existing.CreatedAt <= r.CreatedAt {
			f.items = append(f.items[:i], append([]models.Reservation{r}, f.items[i:]...)...)
			return
		}
	}
	f.items = append(f.items, r)
}
