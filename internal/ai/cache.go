package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "autoengine:reply:"

// CachedAI memoizes raw model output for identical prompts. Redis failures
// degrade to a direct call.
type CachedAI struct {
	next AI
	rdb  redis.UniversalClient
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedAI(next AI, rdb redis.UniversalClient, ttl time.Duration, log *zap.Logger) *CachedAI {
	return &CachedAI{next: next, rdb: rdb, ttl: ttl, log: log.Named("cache")}
}

func (c *CachedAI) GetReply(
	ctx context.Context,
	systemPrompt string,
	history []Message,
	message string,
) (string, error) {
	key := cacheKey(systemPrompt, history, message)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.log.Debug("hit", zap.String("key", key))
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.log.Warn("get failed", zap.Error(err))
	}

	raw, err := c.next.GetReply(ctx, systemPrompt, history, message)
	if err != nil || raw == "" {
		return raw, err
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("set failed", zap.Error(err))
	}

	return raw, nil
}

func cacheKey(systemPrompt string, history []Message, message string) string {
	h := sha256.New()
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	_ = json.NewEncoder(h).Encode(history)
	h.Write([]byte(message))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
