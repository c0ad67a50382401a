package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/event"
)

func reservation(id int, name, createdAt string) models.Reservation {
	return models.Reservation{
		ID:        id,
		Name:      name,
		Date:      "2026-09-01",
		Time:      "19:00",
		Guests:    2,
		Phone:     "09123456789",
		CreatedAt: createdAt,
	}
}

func TestIngest_DeduplicatesAcrossSources(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	r := reservation(5, "Sara", "2026-08-30T18:00:00Z")
	f.ingest(r, "push")
	f.ingest(r, "poll")
	f.ingest(r, "poll")

	assert.Len(t, f.Items(), 1)
}

func TestIngest_PushWithoutIDThenPollWithID(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	// The broker event carries no server id.
	pushed := reservation(0, "Sara", "")
	f.ingest(pushed, "push")

	// The next poll returns the same booking, now with its id. The composite
	// key must keep it from showing up a second time.
	polled := reservation(5, "Sara", "2026-08-30T18:00:00Z")
	f.ingest(polled, "poll")

	assert.Len(t, f.Items(), 1)
}

func TestIngest_PollWithIDThenPushWithoutID(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	f.ingest(reservation(5, "Sara", "2026-08-30T18:00:00Z"), "poll")
	f.ingest(reservation(0, "Sara", ""), "push")

	assert.Len(t, f.Items(), 1)
}

func TestIngest_DistinctBookingsBothKept(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	f.ingest(reservation(1, "Sara", "2026-08-30T18:00:00Z"), "poll")
	f.ingest(reservation(2, "Omid", "2026-08-30T19:00:00Z"), "poll")

	assert.Len(t, f.Items(), 2)
}

func TestItems_NewestFirst(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	f.ingest(reservation(1, "a", "2026-08-30T10:00:00Z"), "poll")
	f.ingest(reservation(2, "b", "2026-08-30T12:00:00Z"), "poll")
	f.ingest(reservation(3, "c", "2026-08-30T11:00:00Z"), "poll")

	items := f.Items()
	require.Len(t, items, 3)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 3, items[1].ID)
	assert.Equal(t, 1, items[2].ID)
}

func TestItems_NoTimestampGoesFirst(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	f.ingest(reservation(1, "a", "2026-08-30T10:00:00Z"), "poll")
	f.ingest(reservation(0, "fresh", ""), "push")

	items := f.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "fresh", items[0].Name)
}

func TestIngest_NotifiesSubscribersOnce(t *testing.T) {
	f := New(nil)
	defer f.pool.Shutdown()

	got := make(chan models.Reservation, 4)
	event.Listen("reservation.received", func(payload interface{}) {
		if r, ok := payload.(models.Reservation); ok {
			got <- r
		}
	})

	r := reservation(5, "Sara", "2026-08-30T18:00:00Z")
	f.ingest(r, "push")
	f.ingest(r, "poll") // duplicate, must not notify

	select {
	case delivered := <-got:
		assert.Equal(t, "Sara", delivered.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
	}

	select {
	case <-got:
		t.Fatal("duplicate was notified")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDedupKeys(t *testing.T) {
	withID := reservation(5, "Sara", "")
	keys := dedupKeys(withID)
	require.Len(t, keys, 2)
	assert.Equal(t, "id:5", keys[0])
	assert.Equal(t, "Sara|2026-09-01|19:00|09123456789", keys[1])

	withoutID := reservation(0, "Sara", "")
	assert.Equal(t, []string{"Sara|2026-09-01|19:00|09123456789"}, dedupKeys(withoutID))
}
