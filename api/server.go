package api

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/notification"
	"github.com/huurnet/huurnet-BE/internal/realtime"
	"github.com/huurnet/huurnet-BE/internal/session"
	"github.com/huurnet/huurnet-BE/internal/token"
	"github.com/huurnet/huurnet-BE/internal/util"
	"github.com/huurnet/huurnet-BE/internal/worker"
)

// AuthService is the authentication collaborator as the HTTP layer sees it.
type AuthService interface {
	SignOut(ctx context.Context, userID string, tokenID string, trigger string) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Server struct {
	router              *gin.Engine
	dbStore             db.Store
	tokenMaker          token.Maker
	config              *util.Config
	authService         AuthService
	notificationService *notification.Service
	sessionManager      *session.Manager
	taskDistributor     worker.TaskDistributor
	eventSender         event.EventSender
	subscriber          *realtime.Subscriber
}

// NewServer creates a new HTTP server and sets up routing.
func NewServer(
	store db.Store,
	config *util.Config,
	authService AuthService,
	notificationService *notification.Service,
	sessionManager *session.Manager,
	taskDistributor worker.TaskDistributor,
	eventSender event.EventSender,
) (*Server, error) {
	// Create a new JWT token maker
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("Token maker created successfully ✅")

	server := &Server{
		dbStore:             store,
		tokenMaker:          tokenMaker,
		config:              config,
		authService:         authService,
		notificationService: notificationService,
		sessionManager:      sessionManager,
		taskDistributor:     taskDistributor,
		eventSender:         eventSender,
		subscriber:          realtime.NewSubscriber(eventSender),
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	gin.ForceConsoleColor()
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/v1")

	v1.POST("/auth/login", server.loginUser)

	authRoutes := v1.Group("/").Use(server.authMiddleware())

	authRoutes.POST("/auth/logout", server.logoutUser)

	authRoutes.GET("/users/me/notifications", server.listNotifications)
	authRoutes.GET("/users/me/notifications/unread-count", server.getUnreadCount)
	authRoutes.GET("/users/me/notifications/stream", server.streamNotifications)
	authRoutes.POST("/users/me/notifications/read-all", server.markAllNotificationsRead)
	authRoutes.POST("/notifications", server.createNotification)
	authRoutes.PATCH("/notifications/:id/read", server.markNotificationRead)
	authRoutes.DELETE("/notifications/:id", server.deleteNotification)

	authRoutes.POST("/sessions", server.openSession)
	authRoutes.DELETE("/sessions/:sessionID", server.closeSession)
	authRoutes.POST("/sessions/:sessionID/signals", server.recordSessionSignal)
	authRoutes.PUT("/sessions/:sessionID/payment-flow", server.setPaymentFlow)
	authRoutes.GET("/sessions/:sessionID/payment-flow", server.getPaymentFlow)

	adminRoutes := v1.Group("/admin").Use(server.authMiddleware(), requiredAdminRole())
	adminRoutes.POST("/notifications/bulk", server.bulkCreateNotifications)
	adminRoutes.POST("/notifications/async", server.enqueueNotification)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server.router = router
	return router
}

// Start runs the HTTP server on the given address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}
