package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis is a JSON read cache in front of the post store. Misses and redis
// outages both fall through to the database; the cache is never load-bearing.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(cfg RedisConfig, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Redis{rdb: rdb, ttl: ttl}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

// GetJSON reports whether key was present and, if so, unmarshals it into out.
func (c *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}

	return true, nil
}

func (c *Redis) SetJSON(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)

	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteByPattern drops every key matching pattern, used to invalidate the
// post list keys after a mutation.
func (c *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	return c.Delete(ctx, keys...)
}
