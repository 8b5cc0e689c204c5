package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gwi.com/chatmood/internal/metrics"
)

// ErrCacheMiss is returned by a PredictionCache that holds no entry for a key.
var ErrCacheMiss = errors.New("cache miss")

// PredictionCache stores predictions by key.
type PredictionCache interface {
	Get(ctx context.Context, key string) (Prediction, error)
	Set(ctx context.Context, key string, p Prediction, ttl time.Duration) error
}

// RedisCache is a PredictionCache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and pings it once.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (Prediction, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Prediction{}, ErrCacheMiss
	}
	if err != nil {
		return Prediction{}, err
	}
	var p Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		return Prediction{}, fmt.Errorf("failed to decode cached prediction: %w", err)
	}
	return p, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, p Prediction, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// CachedClassifier consults a PredictionCache before the wrapped
// classifier. Cache failures never fail a classification.
type CachedClassifier struct {
	next   Classifier
	cache  PredictionCache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedClassifier(next Classifier, cache PredictionCache, ttl time.Duration, logger zerolog.Logger) *CachedClassifier {
	return &CachedClassifier{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedClassifier) Provider() string { return c.next.Provider() }

func (c *CachedClassifier) Model() string { return c.next.Model() }

func (c *CachedClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	key := c.key(text)

	p, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return p, nil
	case errors.Is(err, ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Msg("classification cache lookup failed")
	}

	p, err = c.next.Classify(ctx, text)
	if err != nil {
		return Prediction{}, err
	}
	if err := c.cache.Set(ctx, key, p, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("classification cache write failed")
	}
	return p, nil
}

func (c *CachedClassifier) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("chatmood:prediction:%s:%s:%s", c.next.Provider(), c.next.Model(), hex.EncodeToString(sum[:]))
}
