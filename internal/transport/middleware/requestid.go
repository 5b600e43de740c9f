package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hopebridge/donation-management/pkg/logger"
)

// RequestID attaches a trace ID to the request context logger so the
// initiation, webhook, and notification log lines of one payment can
// be correlated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
