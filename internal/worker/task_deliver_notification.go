package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/metrics"
)

// PayloadDeliverNotification contains all data of the task that we want to store in Redis.
// Event producers (payment callbacks, document review, matching) enqueue it so
// delivery does not block their own flow.
type PayloadDeliverNotification struct {
	RecipientID string  `json:"recipient_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	RelatedID   *string `json:"related_id"`
	RelatedType *string `json:"related_type"`
}

func (distributor *RedisTaskDistributor) DistributeTaskDeliverNotification(
	ctx context.Context,
	payload *PayloadDeliverNotification,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskDeliverNotification, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Bytes("payload", task.Payload()).Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("task enqueued")

	return nil
}

// ProcessTaskDeliverNotification persists the notification row, then pushes
// the insert onto the recipient's realtime channel.
func (processor *RedisTaskProcessor) ProcessTaskDeliverNotification(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadDeliverNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	category := db.NotificationCategory(payload.Category)
	if !category.IsValid() {
		return fmt.Errorf("unknown notification category %q: %w", payload.Category, asynq.SkipRetry)
	}

	created, err := processor.store.CreateNotification(ctx, db.CreateNotificationParams{
		RecipientID: payload.RecipientID,
		Category:    category,
		Title:       payload.Title,
		Message:     payload.Message,
		RelatedID:   payload.RelatedID,
		RelatedType: payload.RelatedType,
	})
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("recipient %s does not exist: %w", payload.RecipientID, asynq.SkipRetry)
		}
		log.Error().Err(err).Msg("failed to deliver notification")
		return err
	}

	metrics.NotificationsCreated.WithLabelValues(string(created.Category)).Inc()
	processor.eventSender.Broadcast(event.Event{
		Topic:   event.RecipientTopic(created.RecipientID),
		Type:    event.EventTypeInsert,
		Payload: created,
	})

	log.Info().Str("type", task.Type()).Str("recipient_id", created.RecipientID).
		Str("notification_id", created.ID.String()).Msg("task processed")

	return nil
}
