package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"
)

const revokedTokenKeyPrefix = "revoked_token:"

// Service implements the authentication collaborator. Sign-out revokes the
// session's access token by putting its ID on a redis denylist; the auth
// middleware rejects denylisted tokens on every request. Revoking an already
// revoked token is a no-op, which makes SignOut idempotent.
type Service struct {
	redisClient *redis.Client
	restyClient *resty.Client
	webhookURL  string
	tokenTTL    time.Duration
}

func NewService(redisClient *redis.Client, webhookURL string, tokenTTL time.Duration) *Service {
	return &Service{
		redisClient: redisClient,
		restyClient: resty.New(),
		webhookURL:  webhookURL,
		tokenTTL:    tokenTTL,
	}
}

type signoutEvent struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
	Trigger string `json:"trigger"`
}

// SignOut revokes the token. The denylist entry lives as long as the token
// could, after which it expires together with the token itself.
func (s *Service) SignOut(ctx context.Context, userID string, tokenID string, trigger string) error {
	set, err := s.redisClient.SetNX(ctx, revokedTokenKeyPrefix+tokenID, trigger, s.tokenTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if !set {
		// Already revoked earlier; nothing more to do.
		return nil
	}

	log.Info().Str("user_id", userID).Str("trigger", trigger).Msg("access token revoked")

	if s.webhookURL != "" {
		go s.postWebhook(signoutEvent{UserID: userID, TokenID: tokenID, Trigger: trigger})
	}

	return nil
}

// IsRevoked reports whether the token ID is on the denylist.
func (s *Service) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, revokedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

func (s *Service) postWebhook(event signoutEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := s.restyClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(s.webhookURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to post signout webhook")
		return
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Msg("signout webhook rejected")
	}
}
