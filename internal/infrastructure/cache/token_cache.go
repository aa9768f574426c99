package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/marketplace"
)

// defaultTokenTTL keeps cached tokens shorter-lived than the marketplace's
// one hour expiry
const defaultTokenTTL = 50 * time.Minute

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TokenCache caches marketplace access tokens in Redis so repeated sync
// passes for the same store reuse one token exchange. Cache failures fall
// through to the wrapped provider; the cache never turns a working exchange
// into an error.
type TokenCache struct {
	next      marketplace.TokenProvider
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

var _ marketplace.TokenProvider = (*TokenCache)(nil)

// NewTokenCache creates a token cache connected per the given config
func NewTokenCache(cfg RedisConfig, next marketplace.TokenProvider, ttl time.Duration, log *zap.Logger) (*TokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewTokenCacheWithClient(client, next, ttl, log), nil
}

// NewTokenCacheWithClient creates a token cache with an existing Redis client
func NewTokenCacheWithClient(client *redis.Client, next marketplace.TokenProvider, ttl time.Duration, log *zap.Logger) *TokenCache {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenCache{
		next:      next,
		client:    client,
		keyPrefix: "marketplace:token:",
		ttl:       ttl,
		logger:    log,
	}
}

// GetAccessToken returns a cached token when present, otherwise exchanges
// credentials through the wrapped provider and stores the result.
func (c *TokenCache) GetAccessToken(ctx context.Context, clientID, clientSecret string) (string, error) {
	key := c.key(clientID, clientSecret)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		c.logger.Warn("token cache read failed", zap.Error(err))
	}

	token, err := c.next.GetAccessToken(ctx, clientID, clientSecret)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, token, c.ttl).Err(); err != nil {
		c.logger.Warn("token cache write failed", zap.Error(err))
	}
	return token, nil
}

// Close closes the Redis client
func (c *TokenCache) Close() error {
	return c.client.Close()
}

// key derives a cache key from the credentials without storing them.
// Hashing both parts means a rotated secret misses the old entry.
func (c *TokenCache) key(clientID, clientSecret string) string {
	sum := sha256.Sum256([]byte(clientID + ":" + clientSecret))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}
