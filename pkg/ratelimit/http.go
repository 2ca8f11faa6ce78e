package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// KeyFunc извлекает ключ ограничения из HTTP запроса
type KeyFunc func(r *http.Request) string

// RejectFunc пишет ответ на отклонённый запрос
type RejectFunc func(w http.ResponseWriter, r *http.Request, d Decision, err error)

// ClientIP возвращает адрес клиента: первый адрес X-Forwarded-For,
// затем X-Real-IP, затем хост из RemoteAddr
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}

// SetHeaders пишет X-RateLimit-* и, для отклонённых запросов, Retry-After
func SetHeaders(h http.Header, d Decision) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	if !d.Allowed {
		h.Set("Retry-After", strconv.Itoa(RetryAfterSeconds(d)))
	}
}

// RetryAfterSeconds округляет RetryAfter вверх, минимум одна секунда
func RetryAfterSeconds(d Decision) int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Middleware ограничивает запросы по ключу. При ошибке бэкенда запрос пропускается,
// ошибка передаётся в onError, если он задан.
func Middleware(l Limiter, key KeyFunc, reject RejectFunc, onError func(r *http.Request, err error)) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := l.Take(r.Context(), key(r))
			if err != nil {
				if onError != nil {
					onError(r, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			SetHeaders(w.Header(), d)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if reject != nil {
				reject(w, r, d, ErrRateLimitExceeded)
				return
			}
			http.Error(w, ErrRateLimitExceeded.Error(), http.StatusTooManyRequests)
		})
	}
}
