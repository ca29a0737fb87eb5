package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/signalsfoundry/wmn-simulator/internal/logging"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	loggerKey
)

// Middleware represents a standard HTTP middleware.
type Middleware func(http.Handler) http.Handler

// WrapMiddleware wraps handler so that mw run in the order given.
func WrapMiddleware(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}

// RequestIDFromContext returns the request id if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// LoggerFromContext returns the request-scoped logger if present, otherwise base.
func LoggerFromContext(ctx context.Context, base logging.Logger) logging.Logger {
	if l, ok := ctx.Value(loggerKey).(logging.Logger); ok && l != nil {
		return l
	}
	if base != nil {
		return base
	}
	return logging.Noop()
}

// WithRequestID ensures the request has a stable id and exposes it via
// context and the X-Request-Id response header.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = newRequestID()
		}

		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLogger attaches a request-scoped logger to the context.
func WithLogger(base logging.Logger) Middleware {
	if base == nil {
		base = logging.Noop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base
			if id, ok := RequestIDFromContext(r.Context()); ok {
				l = l.With(logging.String("request_id", id))
			}
			ctx := context.WithValue(r.Context(), loggerKey, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover turns a handler panic into a logged 500.
func Recover(base logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					LoggerFromContext(r.Context(), base).Error(r.Context(), "panic in handler",
						logging.String("panic", fmt.Sprint(v)),
						logging.String("stack", string(debug.Stack())),
					)
					Respond(w, http.StatusInternalServerError, newErrResp(http.StatusText(http.StatusInternalServerError)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog emits one log line per request.
func AccessLog(base logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			LoggerFromContext(r.Context(), base).Info(r.Context(), "http request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", rec.status),
				logging.Int("bytes", rec.bytes),
				logging.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// RequireMethod enforces an HTTP method.
func RequireMethod(method string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				Respond(w, http.StatusMethodNotAllowed, newErrResp(http.StatusText(http.StatusMethodNotAllowed)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJSONContentType enforces an application/json Content-Type.
func RequireJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			Respond(w, http.StatusUnsupportedMediaType, newErrResp(http.StatusText(http.StatusUnsupportedMediaType)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func newRequestID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
