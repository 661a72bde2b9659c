package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/infrademo/infrademo/pkg/logger"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	var buf bytes.Buffer
	log.SetOutput(&buf)
	return log, &buf
}

func TestTracing_Handler_GeneratesTraceID(t *testing.T) {
	log, _ := newTestLogger(t)
	tracing := NewTracing(log)

	var capturedTraceID string
	handler := tracing.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedTraceID = logger.TraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/ping", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if capturedTraceID == "" {
		t.Fatal("expected a generated trace ID on the request context")
	}

	if got := rec.Header().Get("X-Trace-ID"); got != capturedTraceID {
		t.Errorf("X-Trace-ID header = %v, want %v", got, capturedTraceID)
	}
}

func TestTracing_Handler_ReusesIncomingTraceID(t *testing.T) {
	log, _ := newTestLogger(t)
	tracing := NewTracing(log)

	var capturedTraceID string
	handler := tracing.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedTraceID = logger.TraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Trace-ID", "trace-456")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if capturedTraceID != "trace-456" {
		t.Errorf("Trace ID = %v, want trace-456", capturedTraceID)
	}

	if got := rec.Header().Get("X-Trace-ID"); got != "trace-456" {
		t.Errorf("X-Trace-ID header = %v, want trace-456", got)
	}
}

func TestTracing_Handler_LogsRequestWithStatus(t *testing.T) {
	log, buf := newTestLogger(t)
	tracing := NewTracing(log)

	handler := tracing.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Trace-ID", "trace-789")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}

	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/health" {
		t.Errorf("path = %v, want /health", entry["path"])
	}
	if entry["status"] != float64(http.StatusServiceUnavailable) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusServiceUnavailable)
	}
	if entry["trace_id"] != "trace-789" {
		t.Errorf("trace_id = %v, want trace-789", entry["trace_id"])
	}
}
