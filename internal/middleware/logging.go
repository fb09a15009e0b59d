// Package middleware holds the cross-cutting HTTP middleware: request logging
// and CORS. Authentication lives in internal/auth next to the token code.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/cahier-api/internal/auth"
)

// responseWriter records the status code and byte count of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the real writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// requestAttrs collects attributes that inner handlers add to the access log
// line. Inner middleware only sees a derived context, so it writes through
// this shared pointer instead.
type requestAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

type attrsKey struct{}

// Annotate adds attrs to the access log line of the request carrying ctx.
// It is a no-op outside Logger.
func Annotate(ctx context.Context, attrs ...slog.Attr) {
	ra, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		return
	}
	ra.mu.Lock()
	ra.attrs = append(ra.attrs, attrs...)
	ra.mu.Unlock()
}

// Logger logs one line per request: method, path, status, duration, bytes,
// the chi request id and whatever inner handlers added with Annotate.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // if WriteHeader is never called
			}
			ra := &requestAttrs{}
			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), attrsKey{}, ra)))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			}
			if id := chimiddleware.GetReqID(r.Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			ra.mu.Lock()
			attrs = append(attrs, ra.attrs...)
			ra.mu.Unlock()

			level := slog.LevelInfo
			if wrapped.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}

// Caller adds the authenticated email to the access log line. Mount it after
// auth.RequireAuth.
func Caller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if email, ok := auth.EmailFromContext(r.Context()); ok {
			Annotate(r.Context(), slog.String("email", email))
		}
		next.ServeHTTP(w, r)
	})
}
