package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/huurnet/huurnet-BE/api"
	"github.com/huurnet/huurnet-BE/internal/announce"
	"github.com/huurnet/huurnet-BE/internal/auth"
	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/notification"
	"github.com/huurnet/huurnet-BE/internal/session"
	"github.com/huurnet/huurnet-BE/internal/util"
	"github.com/huurnet/huurnet-BE/internal/worker"

	_ "github.com/huurnet/huurnet-BE/docs"
)

//	@title			HuurNet Platform API
//	@version		1.0.0
//	@description	API documentation for the HuurNet rental platform notification and session services

//	@host		localhost:8080
//	@BasePath	/v1
//	@schemes	http https

//	@securityDefinitions.apikey	accessToken
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	log.Info().Msg("configurations loaded successfully ✅")

	// Create connection pool
	connPool, err := pgxpool.New(context.Background(), config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to validate db connection string 😣")
	}

	pingErr := connPool.Ping(context.Background())
	if pingErr != nil {
		log.Fatal().Err(pingErr).Msg("failed to connect to db 😣")
	}
	log.Info().Msg("connected to db ✅")

	store := db.NewStore(connPool)

	redisDb := redis.NewClient(&redis.Options{
		Addr:     config.RedisServerAddress,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	redisOpt := asynq.RedisClientOpt{
		Addr: config.RedisServerAddress,
	}

	// Realtime event hub
	eventSender := event.NewSSEServer()
	go eventSender.Run()

	// Authentication collaborator: token denylist + optional signout webhook
	authService := auth.NewService(redisDb, config.SignoutWebhookURL, config.AccessTokenDuration)

	// Notification access layer, with optional ops-channel mirror
	notificationService := notification.NewService(store, eventSender)
	if config.DiscordBotToken != "" && config.DiscordChannelID != "" {
		announcer, err := announce.NewDiscordAnnouncer(config.DiscordBotToken, config.DiscordChannelID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create discord announcer 😣")
		}
		notificationService.SetAnnouncer(announcer)
		log.Info().Msg("discord announcer created successfully ✅")
	}

	// Session manager with periodic sweep of dead sessions
	sessionManager, err := session.NewManager(authService, config.SessionIdleTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session manager 😣")
	}
	if err = sessionManager.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start session manager 😣")
	}

	taskDistributor := worker.NewTaskDistributor(redisOpt)

	go runTaskProcessor(redisOpt, store, eventSender)
	runHTTPServer(config, store, authService, notificationService, sessionManager, taskDistributor, eventSender)
}

func runTaskProcessor(redisOpt asynq.RedisClientOpt, store db.Store, eventSender event.EventSender) {
	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, store, eventSender)
	log.Info().Msg("starting task processor ✅")

	if err := taskProcessor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start task processor 😣")
	}
}

func runHTTPServer(
	config util.Config,
	store db.Store,
	authService *auth.Service,
	notificationService *notification.Service,
	sessionManager *session.Manager,
	taskDistributor worker.TaskDistributor,
	eventSender event.EventSender,
) {
	server, err := api.NewServer(store, &config, authService, notificationService, sessionManager, taskDistributor, eventSender)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server 😣")
	}

	err = server.Start(config.HTTPServerAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
	}
}
