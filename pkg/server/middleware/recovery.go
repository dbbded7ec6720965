package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"watchtower-hq/janus/pkg/server/respond"
)

// Recovery recovers from panics in HTTP handlers and returns a structured
// 500 response. The panic and stack trace are logged for debugging; no
// internal detail reaches the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				respond.Error(w, http.StatusInternalServerError,
					"an internal error occurred")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
