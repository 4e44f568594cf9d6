package renderer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// PluginHTTP — plugin_id драйвера http.
	PluginHTTP = "http"

	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// Ключи настроек драйвера http.
const (
	settingURL        = "url"
	settingTimeoutSec = "timeout_sec"
)

// HTTPSource — драйвер, скачивающий контент по URL.
//
// Настройки:
//
//	{
//	    "url": "https://example.com/dashboard.png",
//	    "timeout_sec": 30
//	}
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource создаёт новый HTTPSource.
func NewHTTPSource() *HTTPSource {
	return &HTTPSource{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// PluginID возвращает идентификатор драйвера.
func (s *HTTPSource) PluginID() string {
	return PluginHTTP
}

// Render скачивает контент по URL из настроек.
func (s *HTTPSource) Render(ctx context.Context, settings map[string]any) ([]byte, error) {
	url, _ := settings[settingURL].(string)
	if url == "" {
		return nil, fmt.Errorf("%s: url is required", PluginHTTP)
	}

	client := s.client
	// JSON числа декодируются как float64.
	if sec, ok := settings[settingTimeoutSec].(float64); ok && sec > 0 {
		client = &http.Client{Timeout: time.Duration(sec) * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
