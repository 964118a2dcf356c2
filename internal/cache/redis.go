// Package cache stores semantic score maps in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

// Config holds Redis connection configuration.
type Config struct {
	Address  string        `env:"REDIS_ADDRESS"   yaml:"address"`
	Password string        `env:"REDIS_PASSWORD"  yaml:"password"`
	DB       int           `env:"REDIS_DB"        yaml:"db"`
	TTL      time.Duration `env:"REDIS_SCORE_TTL" yaml:"ttl"`
	Enabled  bool          `env:"REDIS_ENABLED"   yaml:"enabled"`
}

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	connectionTimeout = 5 * time.Second
	defaultTTL        = 24 * time.Hour
	keyPrefix         = "glassgov:scores:"
)

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// ScoreCache caches semantic score maps keyed by the SHA-256 of the text.
// Redis errors count as misses.
type ScoreCache struct {
	client    redis.Cmdable
	ttl       time.Duration
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewScoreCache wraps client. ttl <= 0 uses 24h.
func NewScoreCache(client redis.Cmdable, ttl time.Duration, logger infralogger.Logger, tp *telemetry.Provider) *ScoreCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &ScoreCache{client: client, ttl: ttl, logger: logger, telemetry: tp}
}

// Key is the Redis key for text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached scores for text.
func (c *ScoreCache) Get(ctx context.Context, text string) (map[domain.Label]float64, bool) {
	raw, err := c.client.Get(ctx, Key(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.telemetry.RecordCache("miss")
		return nil, false
	}
	if err != nil {
		c.telemetry.RecordCache("error")
		c.logger.Warn("Score cache read failed", infralogger.Error(err))
		return nil, false
	}

	var scores map[domain.Label]float64
	if err = json.Unmarshal(raw, &scores); err != nil {
		c.telemetry.RecordCache("error")
		c.logger.Warn("Score cache entry corrupt", infralogger.Error(err))
		return nil, false
	}
	c.telemetry.RecordCache("hit")
	return scores, true
}

// Set stores scores for text with the configured TTL.
func (c *ScoreCache) Set(ctx context.Context, text string, scores map[domain.Label]float64) {
	raw, err := json.Marshal(scores)
	if err != nil {
		return
	}
	if err = c.client.Set(ctx, Key(text), raw, c.ttl).Err(); err != nil {
		c.telemetry.RecordCache("error")
		c.logger.Warn("Score cache write failed", infralogger.Error(err))
	}
}
