package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"model-graphql/internal/observability"
)

// maxSniffBytes bounds how much of a request or response body is buffered,
// for operation classification on the way in and error detection on the way
// out.
const maxSniffBytes = 1 << 20

// MetricsMiddleware records request metrics for the GraphQL endpoint.
func MetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// GET serves the GraphiQL page; only POSTs are operations.
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			metrics.IncrementActiveRequests()
			defer metrics.DecrementActiveRequests()

			start := time.Now()
			operationType := classifyOperation(r)

			wrapped := &metricsResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(wrapped, r)

			hasErrors := wrapped.statusCode >= 400 || responseHasGraphQLErrors(wrapped.body.Bytes())
			metrics.RecordRequest(time.Since(start), hasErrors, operationType)
		})
	}
}

// classifyOperation peeks at the request body to tell queries from mutations.
// The body is restored for the downstream handler.
func classifyOperation(r *http.Request) string {
	if r.Body == nil {
		return "unknown"
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSniffBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return "unknown"
	}

	var payload struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "unknown"
	}
	query := strings.TrimSpace(payload.Query)
	switch {
	case strings.HasPrefix(query, "mutation"):
		return "mutation"
	case strings.HasPrefix(query, "subscription"):
		return "subscription"
	case query != "":
		return "query"
	default:
		return "unknown"
	}
}

// metricsResponseWriter captures the status code and body for error detection.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       bytes.Buffer
}

func (w *metricsResponseWriter) WriteHeader(statusCode int) {
	if !w.written {
		w.statusCode = statusCode
		w.written = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	if remaining := maxSniffBytes - w.body.Len(); remaining > 0 {
		capture := b
		if len(capture) > remaining {
			capture = capture[:remaining]
		}
		_, _ = w.body.Write(capture)
	}
	return w.ResponseWriter.Write(b)
}

func responseHasGraphQLErrors(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}

	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return false
	}
	errorsValue := bytes.TrimSpace(payload.Errors)
	if len(errorsValue) == 0 || bytes.Equal(errorsValue, []byte("null")) {
		return false
	}

	var errorsList []json.RawMessage
	if err := json.Unmarshal(errorsValue, &errorsList); err != nil {
		return false
	}
	return len(errorsList) > 0
}
