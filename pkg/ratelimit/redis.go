package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript чистит окно, при наличии места добавляет запрос.
// Возвращает {allowed, remaining, oldest_ms, newest_ms}.
var takeScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

	local current = redis.call('ZCARD', key)
	local allowed = 0
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window)
		current = current + 1
		allowed = 1
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local newest = redis.call('ZRANGE', key, -1, -1, 'WITHSCORES')
	return {allowed, limit - current, tonumber(oldest[2]) or now, tonumber(newest[2]) or now}
`)

// RedisLimiter скользящее окно в sorted set, общее для всех реплик сервиса
type RedisLimiter struct {
	client redis.UniversalClient
	cfg    Config
	now    func() time.Time
	seq    atomic.Uint64
}

// NewRedisLimiter подключается к Redis и проверяет соединение
func NewRedisLimiter(cfg Config) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	return NewRedisLimiterWithClient(client, cfg), nil
}

// NewRedisLimiterWithClient создаёт ограничитель поверх готового клиента
func NewRedisLimiterWithClient(client redis.UniversalClient, cfg Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

// member уникален даже для запросов в одну миллисекунду
func (l *RedisLimiter) member(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 36) + "-" + strconv.FormatUint(l.seq.Add(1), 36)
}

func (l *RedisLimiter) redisKey(key string) string {
	return l.cfg.KeyPrefix + key
}

func (l *RedisLimiter) Take(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	window := l.cfg.Window.Milliseconds()

	res, err := takeScript.Run(ctx, l.client, []string{l.redisKey(key)},
		l.cfg.Requests, window, now.UnixMilli(), l.member(now)).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(res) != 4 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	d := Decision{
		Allowed:   res[0] == 1,
		Limit:     l.cfg.Requests,
		Remaining: int(res[1]),
		ResetAt:   time.UnixMilli(res[3] + window),
	}
	if !d.Allowed {
		d.RetryAfter = time.UnixMilli(res[2] + window).Sub(now)
	}
	return d, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.redisKey(key)).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
