package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:  AppConfig{Name: "report-svc"},
		HTTP: HTTPConfig{Port: 8085},
		Log:  LogConfig{Level: "info"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "empty log level defaults to info",
			mutate:  func(c *Config) { c.Log.Level = "" },
			wantErr: false,
		},
		{
			name: "rate limit without window",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{Enabled: true, Requests: 10}
			},
			wantErr: true,
		},
		{
			name: "redis rate limit without address",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute, Backend: "redis"}
			},
			wantErr: true,
		},
		{
			name: "unknown rate limit backend",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute, Backend: "etcd"}
			},
			wantErr: true,
		},
		{
			name:    "auth without secret",
			mutate:  func(c *Config) { c.Auth = AuthConfig{Enabled: true} },
			wantErr: true,
		},
		{
			name:    "invalid page size",
			mutate:  func(c *Config) { c.Report.PDF.PageSize = "B5" },
			wantErr: true,
		},
		{
			name:    "negative margin",
			mutate:  func(c *Config) { c.Report.PDF.MarginTop = -1 },
			wantErr: true,
		},
		{
			name:    "negative request limit",
			mutate:  func(c *Config) { c.Report.MaxRequestBytes = -1 },
			wantErr: true,
		},
		{
			name:    "docs base path without slash",
			mutate:  func(c *Config) { c.Docs = DocsConfig{Enabled: true, BasePath: "swagger"} },
			wantErr: true,
		},
		{
			name:    "disabled docs skip path check",
			mutate:  func(c *Config) { c.Docs = DocsConfig{BasePath: "swagger"} },
			wantErr: false,
		},
		{
			name: "valid report config",
			mutate: func(c *Config) {
				c.Report = ReportConfig{
					MaxRequestBytes: 1024,
					PDF:             PDFConfig{PageSize: "Letter", MarginTop: 10},
					Excel:           ExcelConfig{SheetName: "Tasks", WidthScale: 10},
				}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port uses koanf key", func(c *Config) { c.HTTP.Port = 70000 }, "http.port must be <= 65535, got 70000"},
		{"nested pdf key", func(c *Config) { c.Report.PDF.PageSize = "B5" }, `report.pdf.page_size must be one of [A3 A4 Letter Legal], got "B5"`},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate must be <= 1"},
		{"sheet name length", func(c *Config) { c.Report.Excel.SheetName = strings.Repeat("x", 32) }, "report.excel.sheet_name must be <= 31"},
		{"required name", func(c *Config) { c.App.Name = "" }, "app.name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	cfg.Auth.Enabled = true

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, part := range []string{"http.port", "auth.jwt_secret"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("error %q should mention %s", err, part)
		}
	}
}

func TestConfig_ValidateNormalizesLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "WARN"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level to be lower-cased, got %s", cfg.Log.Level)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 8085}

	if addr := cfg.Address(); addr != ":8085" {
		t.Errorf("expected ':8085', got %s", addr)
	}
}
