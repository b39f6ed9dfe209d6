package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kikiminyes/TutyJuicy/config"
)

// tokenTTL bounds how long a checkout request token is remembered. Retries
// arrive within seconds; an hour is plenty.
const tokenTTL = time.Hour

const tokenKeyFormat = "tutyjuicy:checkout:token:%s"

// IdempotencyInterface maps checkout request tokens to the order code they
// produced, so a retried checkout submission returns the original order
// instead of reserving stock twice.
type IdempotencyInterface interface {
	Lookup(ctx context.Context, token string) (string, bool)
	Remember(ctx context.Context, token, orderCode string)
}

// IdempotencyStore is the redis-backed token store used in production
type IdempotencyStore struct {
	client *redis.Client
}

var idempotencyStore IdempotencyInterface

// NewIdempotencyStore connects to redis at the given URL
func NewIdempotencyStore(redisURL string) (*IdempotencyStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.TODO()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &IdempotencyStore{client: client}, nil
}

// SetIdempotencyStore installs the store used by PlaceOrder. A nil store
// disables the token check (redis is optional; without it checkout retries
// are simply not deduplicated).
func SetIdempotencyStore(s IdempotencyInterface) {
	idempotencyStore = s
}

// Lookup returns the order code previously stored for this token
func (s *IdempotencyStore) Lookup(ctx context.Context, token string) (string, bool) {
	code, err := s.client.Get(ctx, fmt.Sprintf(tokenKeyFormat, token)).Result()
	if err != nil {
		if err != redis.Nil {
			config.Logger().Warn("idempotency lookup failed", zap.Error(err))
		}
		return "", false
	}
	return code, true
}

// Remember stores the token -> order code mapping with a TTL. Best effort:
// a failed write only means a retry would place a second order.
func (s *IdempotencyStore) Remember(ctx context.Context, token, orderCode string) {
	err := s.client.SetNX(ctx, fmt.Sprintf(tokenKeyFormat, token), orderCode, tokenTTL).Err()
	if err != nil {
		config.Logger().Warn("idempotency remember failed", zap.Error(err))
	}
}
