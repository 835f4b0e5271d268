package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/spotme/internal/config"
	"github.com/redis/go-redis/v9"
)

// LikeCountTTL is refreshed on every read and write of a like counter.
const LikeCountTTL = time.Hour

// incrIfPresent bumps a counter only when it is already cached, so a cold
// key is never initialized to a partial value.
var incrIfPresent = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	local n = redis.call("INCR", KEYS[1])
	redis.call("EXPIRE", KEYS[1], ARGV[1])
	return n
end
return -1
`)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.Client.Exists(ctx, key).Result()
	return n > 0, err
}

// KeyForLikeCount generates the Redis key for a user's received-like count.
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

// KeyForRevokedSession marks a signed-out session id.
func (c *RedisCache) KeyForRevokedSession(sessionID string) string {
	return fmt.Sprintf("session:revoked:%s", sessionID)
}

// ChannelForUser is the pub/sub channel carrying a user's realtime events.
func (c *RedisCache) ChannelForUser(userID string) string {
	return fmt.Sprintf("events:user:%s", userID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, userID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, LikeCountTTL).Err()
}

// GetLikeCount returns the cached count and whether it was present.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat garbage as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()
	return n, true, nil
}

// IncrLikeCount bumps a cached like counter; a cold key stays cold.
func (c *RedisCache) IncrLikeCount(ctx context.Context, userID string) error {
	key := c.KeyForLikeCount(userID)
	return incrIfPresent.Run(ctx, c.Client, []string{key}, int(LikeCountTTL.Seconds())).Err()
}

// RevokeSession remembers a signed-out session until its token would expire anyway.
func (c *RedisCache) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return c.Client.Set(ctx, c.KeyForRevokedSession(sessionID), 1, ttl).Err()
}

func (c *RedisCache) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	return c.Exists(ctx, c.KeyForRevokedSession(sessionID))
}

// Publish sends a payload on a user's event channel.
func (c *RedisCache) Publish(ctx context.Context, userID string, payload []byte) error {
	return c.Client.Publish(ctx, c.ChannelForUser(userID), payload).Err()
}

// Subscribe opens a pub/sub subscription on a user's event channel and waits
// for the server to confirm it.
func (c *RedisCache) Subscribe(ctx context.Context, userID string) (*redis.PubSub, error) {
	sub := c.Client.Subscribe(ctx, c.ChannelForUser(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}
