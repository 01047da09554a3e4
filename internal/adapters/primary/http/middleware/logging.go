package middleware

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/infrastructure/logging"
)

// responseWriter records the status and size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades through the wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response does not implement http.Hijacker")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestRecord is filled in by inner middleware so the access log line,
// written by the outermost handler, can name the caller.
type requestRecord struct {
	caller *domain.Caller
}

type requestRecordKey struct{}

func recordCaller(ctx context.Context, caller *domain.Caller) {
	if rec, ok := ctx.Value(requestRecordKey{}).(*requestRecord); ok {
		rec.caller = caller
	}
}

// quietPaths are probe endpoints logged at debug level on success.
var quietPaths = []string{"/health", "/metrics"}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RequestLogger writes one access log line per request. The level follows
// the status: 5xx is an error, 4xx a warning.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			record := &requestRecord{}
			ctx := context.WithValue(r.Context(), requestRecordKey{}, record)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("bytes", wrapped.bytesWritten),
				slog.String("client_ip", getClientIP(r)),
			}
			if rc := chi.RouteContext(ctx); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", r.URL.RawQuery))
			}
			if record.caller != nil {
				attrs = append(attrs,
					slog.String("user_id", record.caller.ID.String()),
					slog.String("role", record.caller.Role.String()),
				)
			}

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400:
				level = slog.LevelWarn
			case isQuiet(r.URL.Path):
				level = slog.LevelDebug
			}
			logger.LogAttrs(ctx, level, "http request", attrs...)
		})
	}
}

// RecoveryLogger turns a panic into a logged 500. http.ErrAbortHandler is
// re-raised so the server aborts the response as intended.
func RecoveryLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logging.LogPanic(r.Context(), logger.With(
						"method", r.Method,
						"path", r.URL.Path,
					), err)

					writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
