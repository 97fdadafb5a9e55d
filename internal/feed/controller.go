package feed

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
)

// Controller merges three independent sources into one view: initial list
// results, local optimistic mutations, and asynchronous realtime events. The
// merge is a keyed upsert on the notification id, so duplicate or out-of-order
// delivery (a local write followed by its own realtime echo, a replayed
// insert) leaves exactly one entry behind. Display order is createdAt
// descending; the unread count is recomputed from the merged set on demand,
// never kept as a separate counter.
type Controller struct {
	mu    sync.Mutex
	items map[uuid.UUID]entry
	seq   uint64
}

type entry struct {
	n db.Notification
	// seq records local arrival order, the tie-break for equal createdAt.
	seq uint64
}

func NewController() *Controller {
	return &Controller{
		items: make(map[uuid.UUID]entry),
	}
}

// Load upserts a batch of list results.
func (c *Controller) Load(notifications []db.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range notifications {
		c.upsert(n)
	}
}

// Apply folds one realtime event into the collection. Unknown payload types
// are logged and ignored rather than corrupting the view.
func (c *Controller) Apply(ev event.Event) {
	n, ok := ev.Payload.(db.Notification)
	if !ok {
		log.Warn().Str("type", string(ev.Type)).Msg("ignored realtime event with unexpected payload")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case event.EventTypeInsert, event.EventTypeUpdate:
		c.upsert(n)
	case event.EventTypeDelete:
		delete(c.items, n.ID)
	}
}

// upsert inserts or replaces by id. A replace keeps the original sequence
// number so re-delivery does not reshuffle the view.
func (c *Controller) upsert(n db.Notification) {
	if existing, ok := c.items[n.ID]; ok {
		existing.n = n
		c.items[n.ID] = existing
		return
	}
	c.seq++
	c.items[n.ID] = entry{n: n, seq: c.seq}
}

// MarkReadLocal optimistically flips the read flag before the backing call
// confirms. The returned rollback restores the previous record and must be
// invoked when the mutation fails; it is a no-op after a realtime update has
// already replaced the record.
func (c *Controller) MarkReadLocal(id uuid.UUID) (rollback func(), ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, found := c.items[id]
	if !found {
		return func() {}, false
	}

	prev := existing.n
	existing.n.IsRead = true
	c.items[id] = existing

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if cur, still := c.items[id]; still && cur.n.IsRead && !prev.IsRead {
			cur.n = prev
			c.items[id] = cur
		}
	}, true
}

// RemoveLocal optimistically drops a notification. The returned rollback
// reinserts the previous record if the backing delete fails.
func (c *Controller) RemoveLocal(id uuid.UUID) (rollback func(), ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, found := c.items[id]
	if !found {
		return func() {}, false
	}
	delete(c.items, id)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, still := c.items[id]; !still {
			c.items[id] = existing
		}
	}, true
}

// Snapshot returns the merged view ordered for display: createdAt descending,
// later local arrival first on ties.
func (c *Controller) Snapshot() []db.Notification {
	c.mu.Lock()
	entries := make([]entry, 0, len(c.items))
	for _, e := range c.items {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].n.CreatedAt.Equal(entries[j].n.CreatedAt) {
			return entries[i].n.CreatedAt.After(entries[j].n.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	out := make([]db.Notification, len(entries))
	for i, e := range entries {
		out[i] = e.n
	}
	return out
}

// UnreadCount recomputes the unread count from the merged set.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, e := range c.items {
		if !e.n.IsRead {
			count++
		}
	}
	return count
}

// Len returns the number of merged entries.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
