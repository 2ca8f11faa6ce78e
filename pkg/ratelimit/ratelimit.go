package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimitExceeded передаётся в RejectFunc для отклонённых запросов
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrLimiterClosed     = errors.New("rate limiter is closed")
)

// Стратегии ограничения
const (
	StrategySlidingWindow = "sliding_window"
	StrategyTokenBucket   = "token_bucket"
	StrategyFixedWindow   = "fixed_window"
)

// Бэкенды
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Decision результат одной проверки лимита
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt момент, когда лимит полностью восстановится
	ResetAt time.Time
	// RetryAfter заполняется только для отклонённых запросов
	RetryAfter time.Duration
}

// Limiter ограничитель запросов по ключу (обычно IP клиента).
// Take расходует одну единицу лимита и сразу возвращает его состояние.
type Limiter interface {
	Take(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
	Close() error
}

// Config конфигурация ограничителя
type Config struct {
	Requests int
	Window   time.Duration
	Strategy string
	Backend  string
	// BurstSize запас сверх Requests для token bucket
	BurstSize       int
	CleanupInterval time.Duration
	KeyPrefix       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultConfig 60 запросов в минуту, скользящее окно в памяти
func DefaultConfig() Config {
	return Config{
		Requests:        60,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         BackendMemory,
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
		KeyPrefix:       "taskflow:ratelimit:",
	}
}

// withDefaults заполняет нулевые поля значениями DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Requests <= 0 {
		c.Requests = def.Requests
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.Strategy == "" {
		c.Strategy = def.Strategy
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.BurstSize < 0 {
		c.BurstSize = 0
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = def.KeyPrefix
	}
	return c
}

// New создаёт ограничитель выбранного бэкенда.
// Redis поддерживает только скользящее окно.
func New(cfg Config) (Limiter, error) {
	cfg = cfg.withDefaults()

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryLimiter(cfg), nil
	case BackendRedis:
		if cfg.Strategy != StrategySlidingWindow {
			return nil, fmt.Errorf("redis backend supports only %s, got %s", StrategySlidingWindow, cfg.Strategy)
		}
		l, err := NewRedisLimiter(cfg)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend: %s", cfg.Backend)
	}
}
