package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
)

// Store is the expiring key-value store backed by Redis (SET key value EX ttl).
type Store struct {
	client redis.UniversalClient
}

// Open connects to Redis and pings it.
func Open(ctx context.Context, conf core.StoreConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", conf.RedisAddr)
	}
	return New(client), nil
}

func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "setting %q", key)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentiment.ErrNotFound
		}
		return "", errors.Wrapf(err, "getting %q", key)
	}
	return val, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
