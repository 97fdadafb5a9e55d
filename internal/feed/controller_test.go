package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
)

func testNotification(t *testing.T, createdAt time.Time, read bool) db.Notification {
	t.Helper()
	return db.Notification{
		ID:          uuid.New(),
		RecipientID: "user-1",
		Category:    db.NotificationCategoryProfileMatch,
		Title:       "New match",
		Message:     "A property matches your profile",
		IsRead:      read,
		CreatedAt:   createdAt,
	}
}

func TestApplyInsertIsIdempotent(t *testing.T) {
	c := NewController()
	n := testNotification(t, time.Now(), false)

	ev := event.Event{Topic: event.RecipientTopic(n.RecipientID), Type: event.EventTypeInsert, Payload: n}

	// The same insert delivered twice, e.g. a local optimistic write followed
	// by its own realtime echo.
	c.Apply(ev)
	c.Apply(ev)

	if got := c.Len(); got != 1 {
		t.Fatalf("expected exactly one entry after duplicate insert, got %d", got)
	}
	if got := c.UnreadCount(); got != 1 {
		t.Fatalf("expected unread count 1 after duplicate insert, got %d", got)
	}
}

func TestLoadThenRealtimeEchoDoesNotDuplicate(t *testing.T) {
	c := NewController()
	n := testNotification(t, time.Now(), false)

	c.Load([]db.Notification{n})
	c.Apply(event.Event{Type: event.EventTypeInsert, Payload: n})

	if got := c.Len(); got != 1 {
		t.Fatalf("expected one entry after list + echo, got %d", got)
	}
}

func TestUpdateEventReplacesRecord(t *testing.T) {
	c := NewController()
	n := testNotification(t, time.Now(), false)
	c.Load([]db.Notification{n})

	n.IsRead = true
	c.Apply(event.Event{Type: event.EventTypeUpdate, Payload: n})

	if got := c.UnreadCount(); got != 0 {
		t.Fatalf("expected unread count 0 after read update, got %d", got)
	}
	if got := c.Len(); got != 1 {
		t.Fatalf("expected one entry after update, got %d", got)
	}
}

func TestDeleteEventRemovesRecord(t *testing.T) {
	c := NewController()
	n := testNotification(t, time.Now(), false)
	c.Load([]db.Notification{n})

	c.Apply(event.Event{Type: event.EventTypeDelete, Payload: n})
	// A replayed delete must stay a no-op.
	c.Apply(event.Event{Type: event.EventTypeDelete, Payload: n})

	if got := c.Len(); got != 0 {
		t.Fatalf("expected empty collection after delete, got %d entries", got)
	}
}

func TestSnapshotOrdersByCreatedAtDescending(t *testing.T) {
	c := NewController()
	base := time.Now()

	oldest := testNotification(t, base.Add(-2*time.Hour), false)
	middle := testNotification(t, base.Add(-time.Hour), false)
	newest := testNotification(t, base, false)

	// Out-of-order arrival.
	c.Load([]db.Notification{middle, newest, oldest})

	snap := c.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap))
	}
	if snap[0].ID != newest.ID || snap[1].ID != middle.ID || snap[2].ID != oldest.ID {
		t.Fatalf("snapshot not ordered by created_at descending: %v, %v, %v", snap[0].CreatedAt, snap[1].CreatedAt, snap[2].CreatedAt)
	}
}

func TestSnapshotBreaksTiesByArrivalOrder(t *testing.T) {
	c := NewController()
	createdAt := time.Now()

	first := testNotification(t, createdAt, false)
	second := testNotification(t, createdAt, false)

	c.Load([]db.Notification{first})
	c.Load([]db.Notification{second})

	snap := c.Snapshot()
	if snap[0].ID != second.ID {
		t.Fatalf("expected the later arrival first on equal created_at")
	}

	// Re-delivering the first record must not promote it.
	c.Apply(event.Event{Type: event.EventTypeUpdate, Payload: first})
	snap = c.Snapshot()
	if snap[0].ID != second.ID {
		t.Fatalf("re-delivery reshuffled the tie-break order")
	}
}

func TestUnreadCountRecomputedFromMergedSet(t *testing.T) {
	c := NewController()
	base := time.Now()

	unread1 := testNotification(t, base, false)
	unread2 := testNotification(t, base.Add(time.Second), false)
	read := testNotification(t, base.Add(2*time.Second), true)

	c.Load([]db.Notification{unread1, unread2, read})

	if got := c.UnreadCount(); got != 2 {
		t.Fatalf("expected unread count 2, got %d", got)
	}

	unread1.IsRead = true
	c.Apply(event.Event{Type: event.EventTypeUpdate, Payload: unread1})

	if got := c.UnreadCount(); got != 1 {
		t.Fatalf("expected unread count 1 after update, got %d", got)
	}
}

func TestMarkReadLocalRollback(t *testing.T) {
	c := NewController()
	n := testNotification(t, time.Now(), false)
	c.Load([]db.Notification{n})

	rollback, ok := c.MarkReadLocal(n.ID)
	if !ok {
		t.Fatal("expected optimistic mark-read to find the entry")
	}
	if got := c.UnreadCount(); got != 0 {
		t.Fatalf("expected unread count 0 after optimistic mark-read, got %d", got)
	}

	// Backing call failed: the optimistic update must roll back.
	rollback()
	if got := c.UnreadCount(); got != 1 {
		t.Fatalf("expected unread count 1 after rollback, got %d", got)
	}
}

func TestRemoveLocalRollback(t *testing.T) {
	c := NewController()
	n := testNotification(t, time.Now(), false)
	c.Load([]db.Notification{n})

	rollback, ok := c.RemoveLocal(n.ID)
	if !ok {
		t.Fatal("expected optimistic remove to find the entry")
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("expected empty collection after optimistic remove, got %d", got)
	}

	rollback()
	if got := c.Len(); got != 1 {
		t.Fatalf("expected entry restored after rollback, got %d", got)
	}
}

func TestApplyIgnoresUnknownPayload(t *testing.T) {
	c := NewController()
	c.Apply(event.Event{Type: event.EventTypeInsert, Payload: "not a notification"})

	if got := c.Len(); got != 0 {
		t.Fatalf("expected unknown payload to be ignored, got %d entries", got)
	}
}
