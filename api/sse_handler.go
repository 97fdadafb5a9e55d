package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huurnet/huurnet-BE/internal/token"
)

// @Summary		Stream the caller's notification events via Server-Sent Events
// @Description	Establishes an SSE connection delivering insert/update/delete events for the caller's own notifications. Format: 'event: {eventType}\ndata: {notification}'
// @Tags			notifications
// @Produce		text/event-stream
// @Success		200	{string}	string	"Event stream"
// @Security		accessToken
// @Router			/users/me/notifications/stream [get]
func (server *Server) streamNotifications(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	// Set up SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	// One live feed per authenticated recipient; closed with the request so
	// the registration does not leak.
	sub := server.subscriber.Subscribe(authPayload.Subject)
	defer sub.Close()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, _ := json.Marshal(ev.Payload)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
