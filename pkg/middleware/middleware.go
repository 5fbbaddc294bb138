package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/bookline/console/pkg/composables"
	"github.com/bookline/console/pkg/constants"
)

// Provide injects a static value under a context key for every request.
func Provide(key constants.ContextKey, value any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPool binds the database pool so repositories can resolve it via
// composables.UsePool.
func WithPool(pool *pgxpool.Pool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithPool(r.Context(), pool)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestID reads the configured header or generates a uuidv4, and exposes
// the id on the context and the response.
func RequestID(header string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(header)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(header, requestID)
			ctx := composables.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithTenant scopes the request to a tenant from the configured header,
// falling back to the deployment default when the header is absent. A
// malformed tenant id is rejected before it reaches any handler.
func WithTenant(header string, fallback uuid.UUID) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := fallback
			if raw := r.Header.Get(header); raw != "" {
				parsed, err := uuid.Parse(raw)
				if err != nil {
					http.Error(w, "invalid tenant id", http.StatusBadRequest)
					return
				}
				tenantID = parsed
			}
			ctx := composables.WithTenantID(r.Context(), tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// WithLogger attaches a request-scoped logrus entry and logs one line per
// request with method, path, status and duration.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": composables.UseRequestID(r.Context()),
			})
			ctx := composables.WithLogger(r.Context(), entry)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			entry.WithFields(logrus.Fields{
				"status":   sw.status,
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}

// Recover converts handler panics into 500 responses instead of killing the
// connection, logging the stack.
func Recover(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithFields(logrus.Fields{
						"panic": rec,
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					}).Error("recovered from panic in handler")
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
