package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter ограничитель в памяти процесса, для одной реплики сервиса
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	cfg     Config
	now     func() time.Time
	stop    chan struct{}
	closed  bool
}

// client состояние одного ключа; используется только поле его стратегии
type client struct {
	bucket      *rate.Limiter
	hits        []time.Time
	windowStart time.Time
	count       int
	lastSeen    time.Time
}

// NewMemoryLimiter создаёт ограничитель и запускает фоновую очистку
// неактивных ключей
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	l := newMemoryLimiter(cfg, time.Now)
	go l.cleanupLoop()
	return l
}

func newMemoryLimiter(cfg Config, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		clients: make(map[string]*client),
		cfg:     cfg.withDefaults(),
		now:     now,
		stop:    make(chan struct{}),
	}
}

func (l *MemoryLimiter) Take(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Decision{}, ErrLimiterClosed
	}

	now := l.now()
	c := l.clientFor(key, now)
	c.lastSeen = now

	switch l.cfg.Strategy {
	case StrategyTokenBucket:
		return l.takeToken(c, now), nil
	case StrategyFixedWindow:
		return l.takeFixed(c, now), nil
	default:
		return l.takeSliding(c, now), nil
	}
}

func (l *MemoryLimiter) clientFor(key string, now time.Time) *client {
	if c, ok := l.clients[key]; ok {
		return c
	}

	c := &client{windowStart: now}
	if l.cfg.Strategy == StrategyTokenBucket {
		// Requests токенов за Window, ёмкость Requests+BurstSize
		every := l.cfg.Window / time.Duration(l.cfg.Requests)
		c.bucket = rate.NewLimiter(rate.Every(every), l.cfg.Requests+l.cfg.BurstSize)
	}
	l.clients[key] = c
	return c
}

func (l *MemoryLimiter) takeSliding(c *client, now time.Time) Decision {
	c.hits = pruneBefore(c.hits, now.Add(-l.cfg.Window))

	d := Decision{Limit: l.cfg.Requests}
	if len(c.hits) < l.cfg.Requests {
		c.hits = append(c.hits, now)
		d.Allowed = true
	}
	d.Remaining = l.cfg.Requests - len(c.hits)
	d.ResetAt = c.hits[len(c.hits)-1].Add(l.cfg.Window)
	if !d.Allowed {
		d.RetryAfter = c.hits[0].Add(l.cfg.Window).Sub(now)
	}
	return d
}

func (l *MemoryLimiter) takeFixed(c *client, now time.Time) Decision {
	if now.Sub(c.windowStart) >= l.cfg.Window {
		c.windowStart = now
		c.count = 0
	}

	d := Decision{Limit: l.cfg.Requests, ResetAt: c.windowStart.Add(l.cfg.Window)}
	if c.count < l.cfg.Requests {
		c.count++
		d.Allowed = true
	}
	d.Remaining = l.cfg.Requests - c.count
	if !d.Allowed {
		d.RetryAfter = d.ResetAt.Sub(now)
	}
	return d
}

func (l *MemoryLimiter) takeToken(c *client, now time.Time) Decision {
	d := Decision{Limit: c.bucket.Burst(), Allowed: c.bucket.AllowN(now, 1)}

	tokens := c.bucket.TokensAt(now)
	d.Remaining = int(math.Floor(tokens))
	perToken := float64(time.Second) / float64(c.bucket.Limit())
	d.ResetAt = now.Add(time.Duration((float64(d.Limit) - tokens) * perToken))
	if !d.Allowed {
		d.RetryAfter = time.Duration((1 - tokens) * perToken)
	}
	return d
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.clients, key)
	return nil
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.stop)
	l.clients = nil
	return nil
}

// Len число отслеживаемых ключей
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle(l.now())
		}
	}
}

// evictIdle удаляет ключи, не использовавшиеся дольше двух окон
func (l *MemoryLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idleBefore := now.Add(-2 * l.cfg.Window)
	for key, c := range l.clients {
		if c.lastSeen.Before(idleBefore) {
			delete(l.clients, key)
		}
	}
}

// pruneBefore отбрасывает отметки не позже границы, порядок сохраняется
func pruneBefore(hits []time.Time, boundary time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(boundary) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
