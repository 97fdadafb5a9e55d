package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huurnet/huurnet-BE/internal/session"
	"github.com/huurnet/huurnet-BE/internal/token"
)

type openSessionResponse struct {
	SessionID string `json:"session_id"`
}

// @Summary		Open a session for one page instance
// @Description	Each loaded page opens its own session; two tabs hold two independent sessions that reach their own sign-out conclusions.
// @Tags			sessions
// @Produce		json
// @Success		201	{object}	openSessionResponse
// @Security		accessToken
// @Router			/sessions [post]
func (server *Server) openSession(ctx *gin.Context) {
	authPayload := ctx.MustGet(authorizationPayloadKey).(*token.Payload)

	sess := server.sessionManager.Open(authPayload.Subject, authPayload.ID)

	ctx.JSON(http.StatusCreated, openSessionResponse{SessionID: sess.ID})
}

// ownedSession resolves the session and checks it belongs to the caller.
func (server *Server) ownedSession(ctx *gin.Context) (*session.Session, bool) {
	authPayload := ctx.MustGet(authorizationPayloadKey).(*token.Payload)

	sess, ok := server.sessionManager.Get(ctx.Param("sessionID"))
	if !ok {
		ctx.JSON(http.StatusNotFound, errorResponse(ErrSessionNotFound))
		return nil, false
	}
	if sess.UserID != authPayload.Subject {
		ctx.JSON(http.StatusForbidden, errorResponse(ErrSessionIDMismatch))
		return nil, false
	}
	return sess, true
}

// @Summary		Close a session
// @Description	Page teardown. Cancels any pending sign-out timer; nothing may fire after this.
// @Tags			sessions
// @Produce		json
// @Param			sessionID	path	string	true	"Session ID"
// @Success		204	"Closed"
// @Security		accessToken
// @Router			/sessions/{sessionID} [delete]
func (server *Server) closeSession(ctx *gin.Context) {
	sess, ok := server.ownedSession(ctx)
	if !ok {
		return
	}

	server.sessionManager.Close(sess.ID)
	ctx.Status(http.StatusNoContent)
}

type sessionSignalRequest struct {
	Signal     string `json:"signal" binding:"required,oneof=interaction navigation visibility unload"`
	Visibility string `json:"visibility" binding:"omitempty,oneof=visible hidden"`
}

// @Summary		Forward a raw browser signal into the session
// @Description	interaction: pointer/keyboard/scroll activity. navigation: route-change intent emitted by the router before committing. visibility: page show/hide. unload: best-effort page close beacon.
// @Tags			sessions
// @Accept			json
// @Produce		json
// @Param			sessionID	path	string					true	"Session ID"
// @Param			request		body	sessionSignalRequest	true	"Signal"
// @Success		202	{object}	object
// @Security		accessToken
// @Router			/sessions/{sessionID}/signals [post]
func (server *Server) recordSessionSignal(ctx *gin.Context) {
	req := new(sessionSignalRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	sess, ok := server.ownedSession(ctx)
	if !ok {
		return
	}

	switch req.Signal {
	case "interaction":
		sess.Signals.RecordInteraction()
	case "navigation":
		sess.Signals.RecordNavigation()
	case "visibility":
		v := session.Visibility(req.Visibility)
		sess.Signals.SetVisibility(v)
		sess.Engine.HandleVisibilityChange(v)
	case "unload":
		sess.Engine.HandleUnload()
	}

	ctx.JSON(http.StatusAccepted, gin.H{"state": string(sess.Engine.State())})
}

type setPaymentFlowRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type paymentFlowResponse struct {
	Active    bool       `json:"active"`
	StartedAt *time.Time `json:"started_at"`
}

// @Summary		Set or clear the payment-flow flag
// @Description	Called by the checkout collaborator. While active, the session can never be signed out automatically; a hard 10-minute ceiling clears a stuck flag.
// @Tags			sessions
// @Accept			json
// @Produce		json
// @Param			sessionID	path	string					true	"Session ID"
// @Param			request		body	setPaymentFlowRequest	true	"Flag state"
// @Success		200	{object}	paymentFlowResponse
// @Security		accessToken
// @Router			/sessions/{sessionID}/payment-flow [put]
func (server *Server) setPaymentFlow(ctx *gin.Context) {
	req := new(setPaymentFlowRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	sess, ok := server.ownedSession(ctx)
	if !ok {
		return
	}

	sess.Signals.SetPaymentFlow(*req.Active)
	sess.Engine.HandlePaymentFlowChange(*req.Active)

	ctx.JSON(http.StatusOK, currentPaymentFlow(sess))
}

// @Summary		Read the payment-flow flag
// @Tags			sessions
// @Produce		json
// @Param			sessionID	path	string	true	"Session ID"
// @Success		200	{object}	paymentFlowResponse
// @Security		accessToken
// @Router			/sessions/{sessionID}/payment-flow [get]
func (server *Server) getPaymentFlow(ctx *gin.Context) {
	sess, ok := server.ownedSession(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, currentPaymentFlow(sess))
}

func currentPaymentFlow(sess *session.Session) paymentFlowResponse {
	resp := paymentFlowResponse{Active: sess.Signals.PaymentFlowActive()}
	if startedAt, ok := sess.Signals.PaymentFlowStartedAt(); ok {
		resp.StartedAt = &startedAt
	}
	return resp
}
