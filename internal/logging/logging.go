// Package logging configures the process logger and carries request-scoped
// log entries through the request context.
package logging

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// New builds the process logger. format is "json" or "text".
func New(format string, debug bool) *logrus.Logger {
	return NewWithOutput(os.Stderr, format, debug)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(out io.Writer, format string, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	logger.SetLevel(logrus.InfoLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

type entryContextKey struct{}

// WithEntry stores a request-scoped entry on the context.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryContextKey{}, entry)
}

// FromContext returns the request-scoped entry, or one derived from the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(entryContextKey{}).(*logrus.Entry); ok && entry != nil {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Middleware attaches a request-scoped entry and logs one line per completed request.
// It expects chi's RequestID middleware to run first.
func Middleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(WithEntry(r.Context(), entry)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := logrus.Fields{
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			switch {
			case status >= http.StatusInternalServerError:
				entry.WithFields(fields).Error("request completed")
			case status >= http.StatusBadRequest:
				entry.WithFields(fields).Warn("request completed")
			default:
				entry.WithFields(fields).Info("request completed")
			}
		})
	}
}
