package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// MetricsMiddleware wraps an HTTP handler to record request metrics.
//
// It captures:
//   - moodlog_requests_total (counter): incremented per request with method and status class labels
//   - moodlog_request_duration_seconds (histogram): request duration with a method label
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := transport.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		// Status class label like "2xx", "4xx", "5xx".
		statusStr := strconv.Itoa(rec.Status/100) + "xx"

		RequestsTotal.WithLabelValues(r.Method, statusStr).Inc()
		RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
