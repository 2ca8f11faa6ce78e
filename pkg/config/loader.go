package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "TASKFLOW_"
	configEnvVar = "CONFIG_PATH"
)

// defaults полный набор ключей конфигурации. Переменная окружения
// распознаётся только для ключа отсюда: TASKFLOW_RATE_LIMIT_BURST_SIZE
// -> rate_limit.burst_size.
var defaults = map[string]any{
	"app.name":        "report-svc",
	"app.version":     "1.0.0",
	"app.environment": "development",
	"app.debug":       false,

	"http.port":             8085,
	"http.read_timeout":     30 * time.Second,
	"http.write_timeout":    60 * time.Second,
	"http.idle_timeout":     120 * time.Second,
	"http.shutdown_timeout": 10 * time.Second,
	"http.enable_h2c":       true,
	// бэкенд на Node ходит с localhost:5000
	"http.cors.enabled":           true,
	"http.cors.allowed_origins":   []string{"http://localhost:5000"},
	"http.cors.allowed_methods":   []string{"GET", "POST", "OPTIONS"},
	"http.cors.allowed_headers":   []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
	"http.cors.exposed_headers":   []string{"Content-Disposition", "X-Request-ID"},
	"http.cors.allow_credentials": false,
	"http.cors.max_age":           86400,

	"log.level":       "info",
	"log.format":      "json",
	"log.output":      "stdout",
	"log.file_path":   "",
	"log.max_size":    100,
	"log.max_backups": 3,
	"log.max_age":     7,
	"log.compress":    true,

	"metrics.enabled":   true,
	"metrics.port":      0,
	"metrics.path":      "/metrics",
	"metrics.namespace": "taskflow",
	"metrics.subsystem": "report",

	"tracing.enabled":      false,
	"tracing.endpoint":     "localhost:4317",
	"tracing.insecure":     true,
	"tracing.service_name": "report-svc",
	"tracing.sample_rate":  0.1,

	"rate_limit.enabled":          true,
	"rate_limit.requests":         60,
	"rate_limit.window":           time.Minute,
	"rate_limit.strategy":         "sliding_window",
	"rate_limit.backend":          "memory",
	"rate_limit.burst_size":       10,
	"rate_limit.cleanup_interval": 5 * time.Minute,
	"rate_limit.redis_addr":       "localhost:6379",
	"rate_limit.redis_password":   "",
	"rate_limit.redis_db":         0,

	"auth.enabled":    false,
	"auth.jwt_secret": "",
	"auth.issuer":     "",

	"report.default_title":     "TaskFlowPro - Task Report",
	"report.max_request_bytes": 10 * 1024 * 1024,
	"report.timeout":           30 * time.Second,
	"report.pdf.page_size":     "A4",
	"report.pdf.margin_top":    19.0,
	"report.pdf.margin_left":   12.7,
	"report.pdf.margin_right":  12.7,
	"report.pdf.page_numbers":  true,
	"report.excel.sheet_name":  "Report",
	"report.excel.width_scale": 8.0,

	"docs.enabled":   true,
	"docs.base_path": "/swagger",
	"docs.title":     "TaskFlow Report API",
}

// envKeys имя переменной без префикса -> ключ конфигурации
var envKeys = func() map[string]string {
	m := make(map[string]string, len(defaults))
	for key := range defaults {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}
	return m
}()

// Loader собирает конфигурацию: defaults, затем yaml файл, затем окружение
type Loader struct {
	k        *koanf.Koanf
	paths    []string
	file     string
	prefix   string
	resolved string
}

type LoaderOption func(*Loader)

// WithConfigPaths пути, среди которых берётся первый существующий файл
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// WithFile обязательный файл конфигурации; его отсутствие - ошибка
func WithFile(path string) LoaderOption {
	return func(l *Loader) {
		l.file = path
	}
}

func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k:      koanf.New("."),
		paths:  []string{"config.yaml", "config/config.yaml", "/etc/taskflow/config.yaml"},
		prefix: envPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Load() (*Config, error) {
	if err := l.k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := l.configFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		l.resolved = path
	}

	if err := l.k.Load(env.ProviderWithValue(l.prefix, ".", l.envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// File путь прочитанного файла, пусто если обошлись без него
func (l *Loader) File() string {
	return l.resolved
}

// configFile выбирает файл: WithFile, затем CONFIG_PATH, затем пути поиска.
// Явно указанный файл обязан существовать, найденный поиском - нет.
func (l *Loader) configFile() (string, error) {
	for _, explicit := range []string{l.file, os.Getenv(configEnvVar)} {
		if explicit == "" {
			continue
		}
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	for _, path := range l.paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return "", nil
}

// envValue переводит переменную в ключ; неизвестные переменные пропускаются
func (l *Loader) envValue(name, value string) (string, any) {
	key, ok := envKeys[strings.ToLower(strings.TrimPrefix(name, l.prefix))]
	if !ok {
		return "", nil
	}
	if _, isList := defaults[key].([]string); isList {
		return key, splitList(value)
	}
	return key, value
}

// splitList "a, b,,c" -> [a b c]
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load конфигурация с путями поиска по умолчанию
func Load() (*Config, error) {
	return NewLoader().Load()
}
