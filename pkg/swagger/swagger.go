// Package swagger отдаёт Swagger UI и OpenAPI документ сервиса
package swagger

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
)

//go:embed ui.html
var uiHTML string

var uiTemplate = template.Must(template.New("swagger-ui").Parse(uiHTML))

type Config struct {
	Title    string
	BasePath string
	SpecPath string
	// DocExpansion list, full или none
	DocExpansion string
	// Assets адрес swagger-ui-dist; для закрытого контура можно поднять свою копию
	Assets string
}

func DefaultConfig() Config {
	return Config{
		Title:        "TaskFlow Report API",
		BasePath:     "/swagger",
		SpecPath:     "/openapi.json",
		DocExpansion: "list",
		Assets:       "https://unpkg.com/swagger-ui-dist@5",
	}
}

// Handler отдаёт страницу UI и документ; страница рендерится один раз
type Handler struct {
	base     string
	specName string
	spec     []byte
	etag     string
	page     []byte
}

// NewHandler проверяет, что spec - JSON, и готовит страницу.
// Пустые поля cfg берутся из DefaultConfig.
func NewHandler(cfg Config, spec []byte) (*Handler, error) {
	if !json.Valid(spec) {
		return nil, errors.New("openapi document is not valid JSON")
	}

	def := DefaultConfig()
	if cfg.SpecPath == "" {
		cfg.SpecPath = def.SpecPath
	}
	if cfg.DocExpansion == "" {
		cfg.DocExpansion = def.DocExpansion
	}
	if cfg.Assets == "" {
		cfg.Assets = def.Assets
	}
	base := strings.TrimSuffix(cfg.BasePath, "/")
	specName := strings.TrimPrefix(cfg.SpecPath, "/")

	var page bytes.Buffer
	err := uiTemplate.Execute(&page, map[string]string{
		"Title":        cfg.Title,
		"SpecURL":      base + "/" + specName,
		"DocExpansion": cfg.DocExpansion,
		"Assets":       strings.TrimSuffix(cfg.Assets, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("render swagger ui: %w", err)
	}

	sum := sha256.Sum256(spec)
	return &Handler{
		base:     base,
		specName: specName,
		spec:     spec,
		etag:     `"` + hex.EncodeToString(sum[:8]) + `"`,
		page:     page.Bytes(),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	switch strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, h.base), "/") {
	case "", "index.html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(h.page))
	case h.specName:
		// ServeContent сам отвечает 304 на совпавший If-None-Match
		w.Header().Set("ETag", h.etag)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeContent(w, r, h.specName, time.Time{}, bytes.NewReader(h.spec))
	default:
		http.NotFound(w, r)
	}
}

// ETag версия документа, зависит только от содержимого
func (h *Handler) ETag() string {
	return h.etag
}
