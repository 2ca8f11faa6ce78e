// Package api OpenAPI описание HTTP API сервиса отчётов
package api

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed openapi.json
var openapi []byte

// Raw документ в том виде, в каком он лежит в репозитории
func Raw() []byte {
	return openapi
}

// Spec документ с info.version запущенного сервиса; пустая версия
// оставляет записанную в файле
func Spec(version string) ([]byte, error) {
	if version == "" {
		return openapi, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(openapi, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.json: %w", err)
	}
	info, ok := doc["info"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("openapi.json has no info object")
	}
	info["version"] = version

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode openapi.json: %w", err)
	}
	return buf.Bytes(), nil
}
