// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Auth      AuthConfig      `koanf:"auth"`
	Report    ReportConfig    `koanf:"report"`
	Docs      DocsConfig      `koanf:"docs"`
}

type AppConfig struct {
	Name        string `koanf:"name" validate:"required"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

type HTTPConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	EnableH2C       bool          `koanf:"enable_h2c"`
	CORS            CORSConfig    `koanf:"cors"`
}

// Address адрес прослушивания на всех интерфейсах
func (h HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	ExposedHeaders   []string `koanf:"exposed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age" validate:"min=0"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	Format     string `koanf:"format" validate:"omitempty,oneof=json text"`
	Output     string `koanf:"output" validate:"omitempty,oneof=stdout stderr file"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // дней
	Compress   bool   `koanf:"compress"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port" validate:"min=0,max=65535"` // 0 - с основного HTTP порта
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig экспорт спанов по OTLP/gRPC
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate" validate:"min=0,max=1"`
}

type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy" validate:"omitempty,oneof=sliding_window fixed_window token_bucket"`
	Backend         string        `koanf:"backend" validate:"omitempty,oneof=memory redis"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPassword   string        `koanf:"redis_password"`
	RedisDB         int           `koanf:"redis_db" validate:"min=0"`
}

// AuthConfig проверка bearer токенов вызывающего бэкенда
type AuthConfig struct {
	Enabled   bool   `koanf:"enabled"`
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
}

type ReportConfig struct {
	DefaultTitle    string        `koanf:"default_title"`
	MaxRequestBytes int64         `koanf:"max_request_bytes" validate:"min=0"`
	Timeout         time.Duration `koanf:"timeout"`
	PDF             PDFConfig     `koanf:"pdf"`
	Excel           ExcelConfig   `koanf:"excel"`
}

type DocsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BasePath string `koanf:"base_path"`
	Title    string `koanf:"title"`
}

// PDFConfig поля страницы в мм
type PDFConfig struct {
	PageSize    string  `koanf:"page_size" validate:"omitempty,oneof=A3 A4 Letter Legal"`
	MarginTop   float64 `koanf:"margin_top" validate:"min=0"`
	MarginLeft  float64 `koanf:"margin_left" validate:"min=0"`
	MarginRight float64 `koanf:"margin_right" validate:"min=0"`
	PageNumbers bool    `koanf:"page_numbers"`
}

type ExcelConfig struct {
	// Excel не принимает имя листа длиннее 31 символа
	SheetName  string  `koanf:"sheet_name" validate:"max=31"`
	WidthScale float64 `koanf:"width_scale" validate:"min=0"`
}

// validate ошибки называют поля по ключам koanf: http.port, report.pdf.page_size
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate проверяет значения и связи между секциями. Пустой log.level
// заменяется на info, регистр уровня не важен.
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	var errs []string

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(c); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			errs = append(errs, describe(fe))
		}
	} else if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			errs = append(errs, "rate_limit.requests must be positive")
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, "rate_limit.window must be positive")
		}
		if c.RateLimit.Backend == "redis" && c.RateLimit.RedisAddr == "" {
			errs = append(errs, "rate_limit.redis_addr is required for redis backend")
		}
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret is required when auth is enabled")
	}
	if c.Docs.Enabled && !strings.HasPrefix(c.Docs.BasePath, "/") {
		errs = append(errs, fmt.Sprintf("docs.base_path must start with /, got %q", c.Docs.BasePath))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// describe "Config.http.port" + max=65535 -> "http.port must be <= 65535, got 70000"
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "min":
		return fmt.Sprintf("%s must be >= %s, got %v", key, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be <= %s, got %v", key, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s check", key, fe.Tag())
	}
}
