package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iiroan/formwatch/internal/validate"
)

const redisKeyPrefix = "formwatch:taken:"

// Redis keeps one set per field kind.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{client: rdb}, nil
}

// RedisKey returns the set key holding claimed values of kind.
func RedisKey(kind validate.Kind) string {
	return redisKeyPrefix + kind.String()
}

func (r *Redis) Taken(ctx context.Context, kind validate.Kind, value string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, RedisKey(kind), value).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return ok, nil
}

func (r *Redis) Claim(ctx context.Context, kind validate.Kind, value string) error {
	if err := r.client.SAdd(ctx, RedisKey(kind), value).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

func (r *Redis) Release(ctx context.Context, kind validate.Kind, value string) error {
	if err := r.client.SRem(ctx, RedisKey(kind), value).Err(); err != nil {
		return fmt.Errorf("redis srem: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
