package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisConfig struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func init() {
	Register("redis", createRedisStore)
}

func createRedisStore(opts Options) (Store, error) {
	cfg := &redisConfig{}
	if err := decodeConfig(opts.Data, cfg); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis session addr is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "advisor:session:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisStore{client: client, prefix: cfg.KeyPrefix, ttl: opts.TTL}, nil
}

func (s *redisStore) key(sid string) string {
	return s.prefix + sid
}

func (s *redisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, sid, key, value string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(sid), key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key(sid), s.ttl)
		}
		return nil
	})
	return err
}

func (s *redisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.key(sid), keys...).Err()
}

func (s *redisStore) Destroy(ctx context.Context, sid string) error {
	return s.client.Del(ctx, s.key(sid)).Err()
}
