package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/diarydepresiku/moodlog/pkg/debug"
	"github.com/diarydepresiku/moodlog/pkg/provider/openaicompat"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrMissingCredential is returned by Factory.Client when no API key is configured.
var ErrMissingCredential = errors.New("provider API key is not configured")

// Config holds provider connection settings.
type Config struct {
	// BaseURL is the API root that /chat/completions is appended to.
	BaseURL string

	// APIKey is sent as a bearer token. It is never logged in full.
	APIKey string

	// Timeout bounds each round trip. Defaults to 10s.
	Timeout time.Duration

	// Referer and Title are optional OpenRouter attribution headers.
	Referer string
	Title   string

	// ModelMapping replaces built-in model names, e.g. to move from the
	// free tier to a paid model without a code change.
	ModelMapping map[string]string
}

// Factory hands out provider clients. It is safe for concurrent use and
// shares one HTTP client across all handles.
type Factory struct {
	cfg        Config
	httpClient *http.Client
}

// NewFactory creates a Factory. It performs no network I/O and does not
// require the API key to be present.
func NewFactory(cfg Config) *Factory {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = openaicompat.DefaultTimeout
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return &Factory{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Client returns a handle bound to the configured base URL and credential.
// It fails with ErrMissingCredential when the API key is empty.
func (f *Factory) Client() (*openaicompat.Client, error) {
	if f.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	debug.Log("provider", "client acquired",
		"base_url", f.cfg.BaseURL,
		"key", debug.MaskSecret(f.cfg.APIKey),
	)

	return openaicompat.NewClient(f.cfg.BaseURL, f.cfg.APIKey,
		openaicompat.WithHTTPClient(f.httpClient),
		openaicompat.WithHeader("HTTP-Referer", f.cfg.Referer),
		openaicompat.WithHeader("X-Title", f.cfg.Title),
		openaicompat.WithModelMapping(f.cfg.ModelMapping),
	), nil
}

// HasCredential reports whether an API key is configured.
func (f *Factory) HasCredential() bool { return f.cfg.APIKey != "" }

// String describes the factory without revealing the credential.
func (f *Factory) String() string {
	return fmt.Sprintf("provider(base_url=%s, timeout=%s, key=%s)",
		f.cfg.BaseURL, f.cfg.Timeout, debug.MaskSecret(f.cfg.APIKey))
}

// Close releases idle connections held by the shared HTTP client.
func (f *Factory) Close() error {
	f.httpClient.CloseIdleConnections()
	return nil
}
