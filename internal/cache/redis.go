package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"YrestCriteria/internal/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "count:"

// Counts keeps pagination totals in Redis, keyed by the count statement.
type Counts struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCounts принимает адрес явно (а не через os.Getenv)
func NewCounts(addr string, ttl time.Duration) *Counts {
	if addr == "" {
		addr = "localhost:6379"
		logger.Warn("redis_default_addr", nil)
	}
	return NewCountsWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

func NewCountsWithClient(rdb *redis.Client, ttl time.Duration) *Counts {
	return &Counts{rdb: rdb, ttl: ttl}
}

func (c *Counts) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Counts) Close() error {
	return c.rdb.Close()
}

// Key derives the cache key of a compiled statement and its arguments.
func Key(sql string, args []any) string {
	h := sha256.New()
	h.Write([]byte(sql))
	h.Write([]byte{0})
	b, err := json.Marshal(args)
	if err != nil {
		b = []byte(fmt.Sprint(args...))
	}
	h.Write(b)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *Counts) Get(ctx context.Context, sql string, args []any) (int64, bool, error) {
	val, err := c.rdb.Get(ctx, Key(sql, args)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("count cache: %w", err)
	}
	return n, true, nil
}

func (c *Counts) Set(ctx context.Context, sql string, args []any, total int64) error {
	return c.rdb.Set(ctx, Key(sql, args), total, c.ttl).Err()
}

// Flush удаляет все закэшированные счётчики
func (c *Counts) Flush(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	return nil
}
