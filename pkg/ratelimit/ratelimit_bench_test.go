package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

var benchStrategies = []string{StrategySlidingWindow, StrategyFixedWindow, StrategyTokenBucket}

// benchLimiter лимит с запасом: в бенчмарке меряется учёт, а не отказы
func benchLimiter(b *testing.B, strategy string, requests int) *MemoryLimiter {
	b.Helper()
	l := NewMemoryLimiter(Config{
		Requests:        requests,
		Window:          time.Minute,
		Strategy:        strategy,
		BurstSize:       100,
		CleanupInterval: time.Hour,
	})
	b.Cleanup(func() { _ = l.Close() })
	return l
}

func BenchmarkMemoryLimiter_Take(b *testing.B) {
	ctx := context.Background()

	for _, strategy := range benchStrategies {
		b.Run(strategy, func(b *testing.B) {
			l := benchLimiter(b, strategy, 1_000_000)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = l.Take(ctx, "203.0.113.5")
			}
		})
	}
}

func BenchmarkMemoryLimiter_Take_Parallel(b *testing.B) {
	ctx := context.Background()

	for _, strategy := range benchStrategies {
		b.Run(strategy, func(b *testing.B) {
			l := benchLimiter(b, strategy, 1_000_000)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					_, _ = l.Take(ctx, "203.0.113.5")
				}
			})
		})
	}
}

// Много клиентов за одним сервисом отчётов
func BenchmarkMemoryLimiter_Take_ManyClients(b *testing.B) {
	ctx := context.Background()
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = "10.0." + strconv.Itoa(i/256) + "." + strconv.Itoa(i%256)
	}

	l := benchLimiter(b, StrategySlidingWindow, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = l.Take(ctx, keys[i%len(keys)])
	}
}

// Окно, заполненное почти до лимита: стоимость прореживания отметок
func BenchmarkMemoryLimiter_Take_FullWindow(b *testing.B) {
	ctx := context.Background()
	l := benchLimiter(b, StrategySlidingWindow, 10_000)
	for i := 0; i < 9_000; i++ {
		_, _ = l.Take(ctx, "busy")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = l.Take(ctx, "busy")
		if i%500 == 499 {
			b.StopTimer()
			_ = l.Reset(ctx, "busy")
			for j := 0; j < 9_000; j++ {
				_, _ = l.Take(ctx, "busy")
			}
			b.StartTimer()
		}
	}
}

func BenchmarkMiddleware(b *testing.B) {
	l := benchLimiter(b, StrategySlidingWindow, 1_000_000)

	handler := Middleware(l, nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	r := httptest.NewRequest(http.MethodPost, "/api/report/tasks/pdf", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}
}
