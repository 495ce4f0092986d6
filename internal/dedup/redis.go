package dedup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "factory:printed_orders"

// RedisStore keeps the ledger in a redis hash of order id -> print time.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func OpenRedisStore(ctx context.Context, addr, key string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("dedup: redis %s: %w", addr, err)
	}
	return NewRedisStore(rdb, key), nil
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Has(ctx context.Context, orderID uint64) (bool, error) {
	ok, err := s.rdb.HExists(ctx, s.key, strconv.FormatUint(orderID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: redis has %d: %w", orderID, err)
	}
	return ok, nil
}

func (s *RedisStore) Mark(ctx context.Context, orderID uint64, printedAt time.Time) error {
	field := strconv.FormatUint(orderID, 10)
	if err := s.rdb.HSetNX(ctx, s.key, field, printedAt.UTC().Format(time.RFC3339)).Err(); err != nil {
		return fmt.Errorf("dedup: redis mark %d: %w", orderID, err)
	}
	return nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.rdb.HLen(ctx, s.key).Result()
	return int(n), err
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ Store = (*RedisStore)(nil)
