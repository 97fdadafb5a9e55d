package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/notification"
	"github.com/huurnet/huurnet-BE/internal/worker"
)

type bulkCreateNotificationsRequest struct {
	RecipientIDs []string `json:"recipient_ids" binding:"required,min=1"`
	Category     string   `json:"category" binding:"required"`
	Title        string   `json:"title" binding:"required"`
	Message      string   `json:"message" binding:"required"`
	RelatedID    *string  `json:"related_id"`
	RelatedType  *string  `json:"related_type"`
}

type bulkCreateNotificationsResponse struct {
	RequestedCount int64 `json:"requested_count"`
	CreatedCount   int64 `json:"created_count"`
}

// @Summary		Fan one payload out to many recipients
// @Description	Best effort, not a transaction: invalid recipients are skipped and the response reports the count of rows actually created.
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			request	body		bulkCreateNotificationsRequest	true	"Recipients and shared payload"
// @Success		200		{object}	bulkCreateNotificationsResponse
// @Failure		403		{object}	object	"Requires administrator role"
// @Security		accessToken
// @Router			/admin/notifications/bulk [post]
func (server *Server) bulkCreateNotifications(ctx *gin.Context) {
	req := new(bulkCreateNotificationsRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	created, err := server.notificationService.BulkCreate(ctx, callerFromContext(ctx), req.RecipientIDs, notification.BulkPayload{
		Category:    db.NotificationCategory(req.Category),
		Title:       req.Title,
		Message:     req.Message,
		RelatedID:   req.RelatedID,
		RelatedType: req.RelatedType,
	})
	if err != nil {
		ctx.JSON(notificationErrorStatus(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, bulkCreateNotificationsResponse{
		RequestedCount: int64(len(req.RecipientIDs)),
		CreatedCount:   created,
	})
}

type enqueueNotificationRequest struct {
	RecipientID string  `json:"recipient_id" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Message     string  `json:"message" binding:"required"`
	RelatedID   *string `json:"related_id"`
	RelatedType *string `json:"related_type"`
}

// @Summary		Enqueue a notification for asynchronous delivery
// @Description	Used by event producers (payment callbacks, document review) so delivery does not block their flow.
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			request	body	enqueueNotificationRequest	true	"Notification content"
// @Success		202	{object}	object
// @Failure		403	{object}	object	"Requires administrator role"
// @Security		accessToken
// @Router			/admin/notifications/async [post]
func (server *Server) enqueueNotification(ctx *gin.Context) {
	req := new(enqueueNotificationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if !db.NotificationCategory(req.Category).IsValid() {
		ctx.JSON(http.StatusBadRequest, errorResponse(notification.ErrInvalidCategory))
		return
	}

	err := server.taskDistributor.DistributeTaskDeliverNotification(ctx, &worker.PayloadDeliverNotification{
		RecipientID: req.RecipientID,
		Category:    req.Category,
		Title:       req.Title,
		Message:     req.Message,
		RelatedID:   req.RelatedID,
		RelatedType: req.RelatedType,
	}, asynq.Queue(worker.QueueDefault))
	if err != nil {
		log.Err(err).Msg("failed to enqueue notification delivery")
		ctx.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "notification enqueued"})
}
