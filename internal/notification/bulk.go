package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/metrics"
	"github.com/huurnet/huurnet-BE/internal/util"
)

// Announcer mirrors system announcements to an external ops channel.
type Announcer interface {
	Announce(title string, body string) error
}

// BulkPayload is the shared content fanned out to every recipient.
type BulkPayload struct {
	Category    db.NotificationCategory
	Title       string
	Message     string
	RelatedID   *string
	RelatedType *string
}

// SetAnnouncer attaches an optional ops-channel mirror for system announcements.
func (s *Service) SetAnnouncer(a Announcer) {
	s.announcer = a
}

// BulkCreate fans the payload out to every recipient, best effort. It requires
// the administrative role and returns the count of rows actually created: a
// recipient that no longer exists is skipped, the remaining rows are still
// inserted, and the true number is reported. This is not a transaction.
func (s *Service) BulkCreate(ctx context.Context, caller Caller, recipientIDs []string, payload BulkPayload) (int64, error) {
	if !caller.IsAdmin() {
		return 0, ErrUnauthorized
	}

	if !payload.Category.IsValid() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCategory, payload.Category)
	}

	var created int64
	for _, recipientID := range recipientIDs {
		n, err := s.store.CreateNotification(ctx, db.CreateNotificationParams{
			RecipientID: recipientID,
			Category:    payload.Category,
			Title:       payload.Title,
			Message:     payload.Message,
			RelatedID:   payload.RelatedID,
			RelatedType: payload.RelatedType,
		})
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				log.Warn().Str("recipient_id", recipientID).Msg("skipped unknown recipient in bulk dispatch")
				continue
			}
			log.Error().Err(err).Str("recipient_id", recipientID).Msg("failed to create notification in bulk dispatch")
			continue
		}

		created++
		metrics.NotificationsCreated.WithLabelValues(string(n.Category)).Inc()
		s.broadcast(event.EventTypeInsert, n)
	}

	if payload.Category == db.NotificationCategorySystemAnnouncement && s.announcer != nil {
		if err := s.announcer.Announce(payload.Title, payload.Message); err != nil {
			log.Error().Err(err).Msg("failed to mirror announcement to ops channel")
		}
	}

	log.Info().Int("recipients", len(recipientIDs)).Int64("created", created).
		Str("category", string(payload.Category)).
		Str("title", util.TruncateContent(payload.Title, 64)).Msg("bulk dispatch finished")

	return created, nil
}
