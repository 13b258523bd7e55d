package middleware

import (
	"database/sql"
	"log/slog"
	"net/http"

	"model-graphql/internal/logging"
	"model-graphql/internal/session"
)

// SessionMiddleware acquires one store connection per request, makes it
// available to resolvers through the context, and releases it on every exit
// path. Acquisition failures fail the request before execution starts.
func SessionMiddleware(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := session.Acquire(r.Context(), db)
			if err != nil {
				logging.FromContext(r.Context()).Error("failed to acquire store session",
					slog.String("error", err.Error()),
				)
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			defer func() {
				_ = sess.Release()
			}()

			ctx := session.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
