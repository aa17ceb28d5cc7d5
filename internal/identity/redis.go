package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "servo:session:"

// RedisBackend stores each session under servo:session:<sid>:<key>.
type RedisBackend struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisBackend(addr, password string, db int, ttl time.Duration) *RedisBackend {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &RedisBackend{Client: rdb, TTL: ttl}
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}

func (b *RedisBackend) Session(sessionID string) KV {
	return &redisKV{b: b, sid: sessionID}
}

type redisKV struct {
	b   *RedisBackend
	sid string
}

func (r *redisKV) key(k string) string { return keyPrefix + r.sid + ":" + k }

func (r *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.b.Client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *redisKV) Set(ctx context.Context, key, value string) error {
	return r.b.Client.Set(ctx, r.key(key), value, r.b.TTL).Err()
}

func (r *redisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	return r.b.Client.Del(ctx, full...).Err()
}
