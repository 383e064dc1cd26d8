package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type kvStore struct {
	client redis.Cmdable
	prefix string
}

// NewKVStore connects to redis and pings it before returning.
func NewKVStore(addr, password, prefix string) (*kvStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logrus.WithField("addr", addr).Info("Connected to redis")
	return NewKVStoreWithClient(client, prefix), nil
}

// NewKVStoreWithClient wraps an existing client, e.g. a cluster or ring.
func NewKVStoreWithClient(client redis.Cmdable, prefix string) *kvStore {
	return &kvStore{client: client, prefix: prefix}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		logrus.WithField("key", key).WithError(err).Error("Failed to read value")
		return "", false, err
	}
	return value, true, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		logrus.WithField("key", key).WithError(err).Error("Failed to write value")
		return err
	}
	return nil
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *kvStore) Close() error {
	if c, ok := s.client.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
