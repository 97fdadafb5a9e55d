package api

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
)

type createNotificationRequest struct {
	RecipientID string  `json:"recipient_id"`
	Category    string  `json:"category" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Message     string  `json:"message" binding:"required"`
	RelatedID   *string `json:"related_id"`
	RelatedType *string `json:"related_type"`
}

// @Summary		Create a notification
// @Description	Creates a notification for the caller, or for another recipient when the caller is an administrator.
// @Tags			notifications
// @Accept			json
// @Produce		json
// @Param			request	body		createNotificationRequest	true	"Notification content"
// @Success		201		{object}	notificationResponse
// @Failure		403		{object}	object	"Caller may not write for this recipient"
// @Security		accessToken
// @Router			/notifications [post]
func (server *Server) createNotification(ctx *gin.Context) {
	req := new(createNotificationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	created, err := server.notificationService.Create(ctx, callerFromContext(ctx), db.CreateNotificationParams{
		RecipientID: req.RecipientID,
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

	ctx.JSON(http.StatusCreated, newNotificationResponse(created))
}

type listNotificationsRequest struct {
	Category string `form:"category"`
	IsRead   *bool  `form:"is_read"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int64  `form:"page,default=1" binding:"min=1"`
	PageSize int64  `form:"page_size,default=20" binding:"min=1,max=100"`
	Sort     string `form:"sort,default=desc" binding:"oneof=asc desc"`
}

// @Summary		List the caller's notifications
// @Tags			notifications
// @Produce		json
// @Param			category	query		string	false	"Filter by category"
// @Param			is_read		query		bool	false	"Filter by read state"
// @Param			date_from	query		string	false	"RFC3339 lower bound on created_at"
// @Param			date_to		query		string	false	"RFC3339 upper bound on created_at"
// @Param			page		query		int		false	"Page number"	default(1)
// @Param			page_size	query		int		false	"Page size"		default(20)
// @Param			sort		query		string	false	"created_at order: asc or desc"	default(desc)
// @Success		200	{object}	listNotificationsResponse
// @Security		accessToken
// @Router			/users/me/notifications [get]
func (server *Server) listNotifications(ctx *gin.Context) {
	req := new(listNotificationsRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	arg := db.ListNotificationsParams{
		Limit:     req.PageSize,
		Offset:    (req.Page - 1) * req.PageSize,
		Ascending: req.Sort == "asc",
		IsRead:    req.IsRead,
	}

	if req.Category != "" {
		category := db.NotificationCategory(req.Category)
		arg.Category = &category
	}
	if req.DateFrom != "" {
		t, err := time.Parse(time.RFC3339, req.DateFrom)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
		arg.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := time.Parse(time.RFC3339, req.DateTo)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
		arg.DateTo = &t
	}

	items, err := server.notificationService.List(ctx, callerFromContext(ctx), arg)
	if err != nil {
		log.Err(err).Msg("failed to list notifications")
		ctx.JSON(notificationErrorStatus(err), errorResponse(err))
		return
	}

	resp := listNotificationsResponse{
		Notifications: make([]notificationResponse, len(items)),
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	for i, n := range items {
		resp.Notifications[i] = newNotificationResponse(n)
	}

	ctx.JSON(http.StatusOK, resp)
}

// @Summary		Get the caller's unread notification count
// @Description	Always recomputed from the store, never a cached counter.
// @Tags			notifications
// @Produce		json
// @Success		200	{object}	unreadCountResponse
// @Security		accessToken
// @Router			/users/me/notifications/unread-count [get]
func (server *Server) getUnreadCount(ctx *gin.Context) {
	count, err := server.notificationService.UnreadCount(ctx, callerFromContext(ctx), "")
	if err != nil {
		log.Err(err).Msg("failed to count unread notifications")
		ctx.JSON(notificationErrorStatus(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, unreadCountResponse{UnreadCount: count})
}

// @Summary		Mark one notification as read
// @Tags			notifications
// @Produce		json
// @Param			id	path		string	true	"Notification ID"
// @Success		200	{object}	notificationResponse
// @Failure		404	{object}	object	"Notification absent or not owned by caller"
// @Security		accessToken
// @Router			/notifications/{id}/read [patch]
func (server *Server) markNotificationRead(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	updated, err := server.notificationService.MarkRead(ctx, callerFromContext(ctx), id)
	if err != nil {
		ctx.JSON(notificationErrorStatus(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, newNotificationResponse(updated))
}

// @Summary		Mark all of the caller's notifications as read
// @Description	One batched transition. The response carries the count of rows actually changed.
// @Tags			notifications
// @Produce		json
// @Success		200	{object}	markAllReadResponse
// @Security		accessToken
// @Router			/users/me/notifications/read-all [post]
func (server *Server) markAllNotificationsRead(ctx *gin.Context) {
	changed, err := server.notificationService.MarkAllRead(ctx, callerFromContext(ctx), "")
	if err != nil {
		log.Err(err).Msg("failed to mark all notifications read")
		ctx.JSON(notificationErrorStatus(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, markAllReadResponse{UpdatedCount: changed})
}

// @Summary		Delete one notification
// @Description	Verifies ownership, deletes, then confirms the row is gone before reporting success.
// @Tags			notifications
// @Produce		json
// @Param			id	path		string	true	"Notification ID"
// @Success		204	"Deleted and confirmed"
// @Failure		404	{object}	object	"Notification absent or not owned by caller"
// @Failure		500	{object}	object	"Deletion could not be confirmed"
// @Security		accessToken
// @Router			/notifications/{id} [delete]
func (server *Server) deleteNotification(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	err = server.notificationService.Delete(ctx, callerFromContext(ctx), id)
	if err != nil {
		ctx.JSON(notificationErrorStatus(err), errorResponse(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

type notificationResponse struct {
	ID          uuid.UUID `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	RelatedID   *string   `json:"related_id"`
	RelatedType *string   `json:"related_type"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedAgo  string    `json:"created_ago"`
}

func newNotificationResponse(n db.Notification) notificationResponse {
	return notificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Category:    string(n.Category),
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      n.IsRead,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
		CreatedAt:   n.CreatedAt,
		CreatedAgo:  humanize.Time(n.CreatedAt),
	}
}

type listNotificationsResponse struct {
	Notifications []notificationResponse `json:"notifications"`
	Page          int64                  `json:"page"`
	PageSize      int64                  `json:"page_size"`
}

type unreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type markAllReadResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}
