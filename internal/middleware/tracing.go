// Package middleware provides HTTP middleware shared by the API surface.
package middleware

import (
	"net/http"
	"time"

	"github.com/infrademo/infrademo/pkg/logger"
)

// Tracing propagates a trace ID through each request and logs a completion
// line per request.
type Tracing struct {
	log *logger.Logger
}

// NewTracing creates the tracing middleware.
func NewTracing(log *logger.Logger) *Tracing {
	return &Tracing{log: log}
}

// Handler returns the tracing middleware handler. An incoming X-Trace-ID
// header is reused; otherwise a fresh ID is generated. The ID is placed on
// the request context and echoed on the response.
func (t *Tracing) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = logger.NewTraceID()
		}

		ctx := logger.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r.WithContext(ctx))

		t.log.LogRequest(ctx, r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
