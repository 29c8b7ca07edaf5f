package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoints(t *testing.T) {
	probes := map[string]string{"/healthz": "ok", "/readyz": "ready"}
	for path, want := range probes {
		t.Run(path, func(t *testing.T) {
			// Probes need no credentials.
			resp := do(t, http.MethodGet, path, "", nil)
			expectStatus(t, resp, http.StatusOK)
			if body := readBody(t, resp); !strings.Contains(body, want) {
				t.Errorf("body = %q, want to contain %q", body, want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	// Generate at least one request and one provider call first.
	resp := do(t, http.MethodPost, "/analyze/", token(t), map[string]string{"text": "hari ini berat"})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	for _, name := range []string{"moodlog_requests_total", "moodlog_provider_requests_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	resp := do(t, http.MethodGet, "/healthz", "", nil)
	defer resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
