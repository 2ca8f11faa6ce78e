// Package auth проверяет сервисные HS256 токены, которыми бэкенд
// подписывает запросы к генератору отчётов.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskflow/pkg/apperror"
	"taskflow/pkg/config"
)

type JWTConfig struct {
	SecretKey   string
	TokenExpiry time.Duration
	Issuer      string // пустой - issuer не проверяется
	Leeway      time.Duration
}

func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:   "change-me-in-production",
		TokenExpiry: 15 * time.Minute,
		Issuer:      "taskflow-backend",
		Leeway:      30 * time.Second,
	}
}

// FromConfig секрет и issuer из секции auth поверх значений по умолчанию
func FromConfig(cfg config.AuthConfig) JWTConfig {
	c := DefaultJWTConfig()
	c.SecretKey = cfg.JWTSecret
	if cfg.Issuer != "" {
		c.Issuer = cfg.Issuer
	}
	return c
}

// Claims токена вызывающего бэкенда
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	cfg    JWTConfig
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	return newJWTManager(cfg, time.Now)
}

func newJWTManager(cfg JWTConfig, now func() time.Time) *JWTManager {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTManager{cfg: cfg, now: now, parser: jwt.NewParser(opts...)}
}

// GenerateToken выпускает токен; в проде токены выпускает бэкенд,
// здесь это нужно тестам и локальной отладке
func (m *JWTManager) GenerateToken(userID, email, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.SecretKey))
}

// ValidateToken проверяет подпись, алгоритм, срок и issuer.
// Все ошибки имеют код CodeUnauthenticated.
func (m *JWTManager) ValidateToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(m.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnauthenticated, rejectReason(err))
	}
	return claims, nil
}

// rejectReason сообщение клиенту без деталей разбора
func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token is not valid yet"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer is not trusted"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token signature is invalid"
	default:
		return "invalid token"
	}
}

// BearerToken токен из заголовка Authorization, схема без учёта регистра
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", apperror.ErrMissingToken
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", apperror.ErrMissingToken
	}
	return token, nil
}

type claimsKey struct{}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext claims проверенного запроса, nil без аутентификации
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}
