package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a redis backed Store. Keys never expire.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis creates a RedisStore using rdb. Every key is stored as prefix+key.
func NewRedis(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// DialRedis connects to addr and verifies the connection with PING
func DialRedis(addr, password string, db int, prefix string) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return NewRedis(rdb, prefix), nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	v, err := s.rdb.Get(context.Background(), s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	return s.rdb.Set(context.Background(), s.prefix+key, value, 0).Err()
}

func (s *RedisStore) Delete(key string) error {
	return s.rdb.Del(context.Background(), s.prefix+key).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
