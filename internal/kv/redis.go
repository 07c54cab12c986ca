package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

type redisStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
	prefix string
}

// NewRedis connects to cfg.RedisURL. Calls go through a circuit breaker so a
// dead server fails fast instead of stalling every request.
func NewRedis(ctx context.Context, cfg Config) (Store, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryBackoff > 0 {
		opts.MinRetryBackoff = cfg.RetryBackoff
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-kv",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{client: client, cb: cb, prefix: cfg.KeyPrefix}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Get(ctx, s.prefix+key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v.([]byte), nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, s.prefix+key, value, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, s.prefix+key).Err()
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		var keys []string
		iter := s.client.Scan(ctx, 0, s.prefix+prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
		}
		return keys, iter.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	keys, _ := v.([]string)
	sort.Strings(keys)
	return keys, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
