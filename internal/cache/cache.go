package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "aeo:result:"

// Cache remembers finished analyses so identical comparisons skip the
// upstream call.
type Cache interface {
	Get(ctx context.Context, key string) (*model.Analysis, bool, error)
	Set(ctx context.Context, key string, a *model.Analysis) error
}

// Key derives the cache key for one comparison. Fields are NUL separated so
// that moving text between the snippets changes the key.
func Key(provider, modelName, promptVersion, snippetA, snippetB string) string {
	h := sha256.New()
	for _, part := range []string{provider, modelName, promptVersion, snippetA, snippetB} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.Analysis, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}

	var a model.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false, fmt.Errorf("decoding cached analysis: %w", err)
	}
	return &a, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, a *model.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding analysis for cache: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) (*model.Analysis, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(ctx context.Context, key string, a *model.Analysis) error {
	return nil
}
