package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const notificationColumns = `id, recipient_id, category, title, message, is_read, related_id, related_type, created_at`

func scanNotification(row interface{ Scan(dest ...any) error }) (Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Category,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&n.RelatedID,
		&n.RelatedType,
		&n.CreatedAt,
	)
	return n, err
}

type CreateNotificationParams struct {
	RecipientID string               `json:"recipient_id"`
	Category    NotificationCategory `json:"category"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	RelatedID   *string              `json:"related_id"`
	RelatedType *string              `json:"related_type"`
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO notifications (id, recipient_id, category, title, message, is_read, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
		RETURNING `+notificationColumns,
		uuid.New(), arg.RecipientID, arg.Category, arg.Title, arg.Message, arg.RelatedID, arg.RelatedType,
	)
	return scanNotification(row)
}

func (q *Queries) GetNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

type GetNotificationForRecipientParams struct {
	ID          uuid.UUID `json:"id"`
	RecipientID string    `json:"recipient_id"`
}

// GetNotificationForRecipient fetches a notification scoped to its recipient.
// Returns ErrRecordNotFound when the row exists but belongs to someone else.
func (q *Queries) GetNotificationForRecipient(ctx context.Context, arg GetNotificationForRecipientParams) (Notification, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE id = $1 AND recipient_id = $2`,
		arg.ID, arg.RecipientID)
	return scanNotification(row)
}

type ListNotificationsParams struct {
	RecipientID string                `json:"recipient_id"`
	Category    *NotificationCategory `json:"category"`
	IsRead      *bool                 `json:"is_read"`
	DateFrom    *time.Time            `json:"date_from"`
	DateTo      *time.Time            `json:"date_to"`
	Limit       int64                 `json:"limit"`
	Offset      int64                 `json:"offset"`
	Ascending   bool                  `json:"ascending"`
}

func (q *Queries) ListNotifications(ctx context.Context, arg ListNotificationsParams) ([]Notification, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`)

	args := []interface{}{arg.RecipientID}
	if arg.Category != nil {
		args = append(args, *arg.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if arg.IsRead != nil {
		args = append(args, *arg.IsRead)
		fmt.Fprintf(&sb, " AND is_read = $%d", len(args))
	}
	if arg.DateFrom != nil {
		args = append(args, *arg.DateFrom)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if arg.DateTo != nil {
		args = append(args, *arg.DateTo)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}

	// created_at with id as tie-break so pagination is stable
	if arg.Ascending {
		sb.WriteString(" ORDER BY created_at ASC, id ASC")
	} else {
		sb.WriteString(" ORDER BY created_at DESC, id DESC")
	}

	if arg.Limit > 0 {
		args = append(args, arg.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if arg.Offset > 0 {
		args = append(args, arg.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := q.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

type MarkNotificationReadParams struct {
	ID          uuid.UUID `json:"id"`
	RecipientID string    `json:"recipient_id"`
}

// MarkNotificationRead flips is_read to true. The transition is one-way;
// there is no query that resets it to false.
func (q *Queries) MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) (Notification, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE notifications SET is_read = true
		WHERE id = $1 AND recipient_id = $2
		RETURNING `+notificationColumns,
		arg.ID, arg.RecipientID)
	return scanNotification(row)
}

// MarkAllNotificationsRead marks every unread notification of the recipient
// as read in one statement and returns the number of rows actually changed.
func (q *Queries) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE notifications SET is_read = true
		WHERE recipient_id = $1 AND is_read = false`, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type DeleteNotificationParams struct {
	ID          uuid.UUID `json:"id"`
	RecipientID string    `json:"recipient_id"`
}

func (q *Queries) DeleteNotification(ctx context.Context, arg DeleteNotificationParams) error {
	_, err := q.db.Exec(ctx, `
		DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`,
		arg.ID, arg.RecipientID)
	return err
}

func (q *Queries) CountUnreadNotifications(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`,
		recipientID).Scan(&count)
	return count, err
}
