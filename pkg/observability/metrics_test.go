package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/storage/memory"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry without panicking.
func TestMetricsRegistered(t *testing.T) {
	// Counters and histograms only appear after the first observation.
	RequestsTotal.WithLabelValues("GET", "2xx").Inc()
	RequestDuration.WithLabelValues("GET").Observe(0.1)
	ProviderRequestsTotal.WithLabelValues("caption", "test", "ok").Inc()
	ProviderLatency.WithLabelValues("caption", "test").Observe(0.1)
	EntriesCreatedTotal.WithLabelValues(api.MoodSenang).Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"moodlog_requests_total":           false,
		"moodlog_request_duration_seconds": false,
		"moodlog_provider_requests_total":  false,
		"moodlog_provider_latency_seconds": false,
		"moodlog_entries_created_total":    false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

// TestMiddlewareRecordsRequestCount verifies that the middleware increments
// the request counter for each served request.
func TestMiddlewareRecordsRequestCount(t *testing.T) {
	before := counterValue(t, RequestsTotal, "GET", "2xx")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/entries/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	after := counterValue(t, RequestsTotal, "GET", "2xx")
	if after-before != 1 {
		t.Errorf("expected request count to increase by 1, got delta=%f", after-before)
	}
}

// TestMiddlewareRecordsDuration verifies that the middleware records
// a request duration observation.
func TestMiddlewareRecordsDuration(t *testing.T) {
	before := histogramCount(t, RequestDuration, "POST")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/analyze/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	after := histogramCount(t, RequestDuration, "POST")
	if after-before != 1 {
		t.Errorf("expected histogram sample count to increase by 1, got delta=%d", after-before)
	}
}

// TestMiddlewareCapturesStatusCode verifies that non-200 status codes are
// captured correctly in the status label.
func TestMiddlewareCapturesStatusCode(t *testing.T) {
	tests := []struct {
		status int
		class  string
	}{
		{http.StatusBadRequest, "4xx"},
		{http.StatusBadGateway, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			before := counterValue(t, RequestsTotal, "PUT", tt.class)

			handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("PUT", "/chat/", nil))

			after := counterValue(t, RequestsTotal, "PUT", tt.class)
			if after-before != 1 {
				t.Errorf("expected %s count to increase by 1, got delta=%f", tt.class, after-before)
			}
		})
	}
}

func TestObserveProvider(t *testing.T) {
	beforeCount := counterValue(t, ProviderRequestsTotal, "articles", "m", "malformed_response")
	beforeLatency := histogramCount(t, ProviderLatency, "articles", "m")

	ObserveProvider("articles", "m", "malformed_response", 250*time.Millisecond)

	if got := counterValue(t, ProviderRequestsTotal, "articles", "m", "malformed_response") - beforeCount; got != 1 {
		t.Errorf("provider request delta = %f, want 1", got)
	}
	if got := histogramCount(t, ProviderLatency, "articles", "m") - beforeLatency; got != 1 {
		t.Errorf("provider latency sample delta = %d, want 1", got)
	}
}

func TestInstrumentEntryStore(t *testing.T) {
	store := InstrumentEntryStore(memory.New(0))
	before := counterValue(t, EntriesCreatedTotal, api.MoodTersipu)

	if _, err := store.SaveEntry(context.Background(), &api.EntryCreate{Content: "malu", Mood: api.MoodTersipu}); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	if got := counterValue(t, EntriesCreatedTotal, api.MoodTersipu) - before; got != 1 {
		t.Errorf("entries created delta = %f, want 1", got)
	}
}

type failingSaver struct {
	transport.EntryStore
}

func (failingSaver) SaveEntry(context.Context, *api.EntryCreate) (*api.Entry, error) {
	return nil, errors.New("disk full")
}

func TestInstrumentEntryStoreSkipsFailures(t *testing.T) {
	store := InstrumentEntryStore(failingSaver{memory.New(0)})
	before := counterValue(t, EntriesCreatedTotal, api.MoodMarah)

	if _, err := store.SaveEntry(context.Background(), &api.EntryCreate{Content: "x", Mood: api.MoodMarah}); err == nil {
		t.Fatal("expected error")
	}

	if got := counterValue(t, EntriesCreatedTotal, api.MoodMarah) - before; got != 0 {
		t.Errorf("entries created delta = %f, want 0", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveProvider("caption", "handler-test", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `moodlog_provider_requests_total{model="handler-test",outcome="ok",task="caption"}`) {
		t.Errorf("metrics output missing provider counter:\n%s", body)
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
