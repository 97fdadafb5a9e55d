package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/metrics"
)

// Caller is the authenticated identity every operation is scoped to.
type Caller struct {
	UserID string
	Role   db.UserRole
}

// IsAdmin reports whether the caller holds the elevated administrative role.
func (c Caller) IsAdmin() bool {
	return c.Role == db.UserRoleBeheerder
}

// Service is the permission-scoped access layer over the notification store.
// Row-level changes are mirrored onto the realtime channel of the affected
// recipient so open dashboards converge without polling.
type Service struct {
	store     db.Store
	sender    event.EventSender
	announcer Announcer
}

func NewService(store db.Store, sender event.EventSender) *Service {
	return &Service{
		store:  store,
		sender: sender,
	}
}

// authorize returns the recipient the operation may act on. A caller may act
// on itself; acting on another recipient requires the administrative role.
func (s *Service) authorize(caller Caller, recipientID string) (string, error) {
	if recipientID == "" {
		return caller.UserID, nil
	}
	if recipientID != caller.UserID && !caller.IsAdmin() {
		return "", ErrUnauthorized
	}
	return recipientID, nil
}

func (s *Service) broadcast(eventType event.EventType, n db.Notification) {
	if s.sender == nil {
		return
	}
	s.sender.Broadcast(event.Event{
		Topic:   event.RecipientTopic(n.RecipientID),
		Type:    eventType,
		Payload: n,
	})
}

// Create inserts one notification for a recipient.
func (s *Service) Create(ctx context.Context, caller Caller, arg db.CreateNotificationParams) (db.Notification, error) {
	recipientID, err := s.authorize(caller, arg.RecipientID)
	if err != nil {
		return db.Notification{}, err
	}
	arg.RecipientID = recipientID

	if !arg.Category.IsValid() {
		return db.Notification{}, fmt.Errorf("%w: %s", ErrInvalidCategory, arg.Category)
	}

	created, err := s.store.CreateNotification(ctx, arg)
	if err != nil {
		return db.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(string(created.Category)).Inc()
	s.broadcast(event.EventTypeInsert, created)

	return created, nil
}

// List returns the recipient's notifications with optional filters,
// pagination and sort order.
func (s *Service) List(ctx context.Context, caller Caller, arg db.ListNotificationsParams) ([]db.Notification, error) {
	recipientID, err := s.authorize(caller, arg.RecipientID)
	if err != nil {
		return nil, err
	}
	arg.RecipientID = recipientID

	items, err := s.store.ListNotifications(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return items, nil
}

// MarkRead marks one notification as read. The read flag only ever moves
// from false to true.
func (s *Service) MarkRead(ctx context.Context, caller Caller, id uuid.UUID) (db.Notification, error) {
	updated, err := s.store.MarkNotificationRead(ctx, db.MarkNotificationReadParams{
		ID:          id,
		RecipientID: caller.UserID,
	})
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return db.Notification{}, ErrNotFound
		}
		return db.Notification{}, fmt.Errorf("failed to mark notification read: %w", err)
	}

	s.broadcast(event.EventTypeUpdate, updated)

	return updated, nil
}

// MarkAllRead marks every unread notification of the recipient as read in a
// single batched statement. It returns the count of rows actually changed so
// callers never see a success that hides a partial mutation.
func (s *Service) MarkAllRead(ctx context.Context, caller Caller, recipientID string) (int64, error) {
	recipientID, err := s.authorize(caller, recipientID)
	if err != nil {
		return 0, err
	}

	changed, err := s.store.MarkAllNotificationsRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	log.Info().Str("recipient_id", recipientID).Int64("changed", changed).Msg("marked all notifications read")

	return changed, nil
}

// Delete removes one notification with a verify-then-delete-then-confirm
// sequence: fetch scoped to the caller, delete, then re-fetch by id. If the
// confirming read still finds the row the caller gets ErrDeletionUnconfirmed
// instead of a silent success, so a permissive trigger swallowing the delete
// cannot masquerade as one.
func (s *Service) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	_, err := s.store.GetNotificationForRecipient(ctx, db.GetNotificationForRecipientParams{
		ID:          id,
		RecipientID: caller.UserID,
	})
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to verify notification before delete: %w", err)
	}

	deleted := db.Notification{ID: id, RecipientID: caller.UserID}

	err = s.store.DeleteNotification(ctx, db.DeleteNotificationParams{
		ID:          id,
		RecipientID: caller.UserID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	// Confirm the row is actually gone.
	_, err = s.store.GetNotificationByID(ctx, id)
	if err == nil {
		log.Error().Str("notification_id", id.String()).Msg("notification still present after delete")
		return ErrDeletionUnconfirmed
	}
	if !errors.Is(err, db.ErrRecordNotFound) {
		return fmt.Errorf("failed to confirm notification deletion: %w", err)
	}

	s.broadcast(event.EventTypeDelete, deleted)

	return nil
}

// UnreadCount recomputes the unread count from the store. It is always a pure
// function of the recipient's rows, never a separately maintained counter.
func (s *Service) UnreadCount(ctx context.Context, caller Caller, recipientID string) (int64, error) {
	recipientID, err := s.authorize(caller, recipientID)
	if err != nil {
		return 0, err
	}

	count, err := s.store.CountUnreadNotifications(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
