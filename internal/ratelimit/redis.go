// Package ratelimit хранит счётчики httprate в Redis, чтобы лимит был общим для всех реплик.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 100 * time.Millisecond

// RedisCounter реализует httprate.LimitCounter поверх Redis.
// Ошибки Redis не блокируют запрос: окно считается пустым.
type RedisCounter struct {
	client       *redis.Client
	prefix       string
	timeout      time.Duration
	windowLength time.Duration
	logger       *log.Entry
}

// NewRedisCounter создаёт счётчик. Ключи имеют вид <prefix>:<key>:<unix окна>.
func NewRedisCounter(client *redis.Client, prefix string, logger *log.Entry) *RedisCounter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &RedisCounter{
		client:  client,
		prefix:  prefix,
		timeout: defaultTimeout,
		logger:  logger.WithField("component", "ratelimit"),
	}
}

// NewClient создаёт клиента Redis и проверяет соединение.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Config вызывается httprate при создании лимитера.
func (c *RedisCounter) Config(_ int, windowLength time.Duration) {
	c.windowLength = windowLength
}

func (c *RedisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy увеличивает счётчик текущего окна. Ключ живёт два окна: текущее и следующее,
// где он читается как предыдущее.
func (c *RedisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	windowKey := c.windowKey(key, currentWindow)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, windowKey, int64(amount))
	pipe.Expire(ctx, windowKey, 2*c.windowLength)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WithError(err).Warn("rate limit counter unavailable, request allowed")
	}
	return nil
}

// Get возвращает счётчики текущего и предыдущего окна.
func (c *RedisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	values, err := c.client.MGet(ctx, c.windowKey(key, currentWindow), c.windowKey(key, previousWindow)).Result()
	if err != nil {
		c.logger.WithError(err).Warn("rate limit counter unavailable, request allowed")
		return 0, 0, nil
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("rate limit counter: unexpected reply %v", values)
	}
	return countOf(values[0]), countOf(values[1]), nil
}

func (c *RedisCounter) windowKey(key string, window time.Time) string {
	return c.prefix + ":" + key + ":" + strconv.FormatInt(window.Unix(), 10)
}

func countOf(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

var _ httprate.LimitCounter = (*RedisCounter)(nil)
