package middleware

import (
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/observability"
)

// Logger emits one structured entry per request and exposes a request-scoped
// logger (request id, htmx flag) to handlers.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := chiMid.GetReqID(r.Context())
		ctx := r.Context()
		if rid != "" {
			ctx = WithRequestID(ctx, rid)
		}
		logger := observability.FromContext(ctx).With(zap.String("request_id", rid))
		ctx = observability.WithLogger(ctx, logger)

		// wrap writer to capture status
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_ip", clientIP(r)),
			zap.Bool("htmx", IsHTMX(r.Context())),
		}
		if id := observability.TraceID(ctx); id != "" {
			fields = append(fields, zap.String("trace_id", id))
		}
		switch {
		case rw.status >= 500:
			logger.Error("request", fields...)
		case rw.status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For set by the platform proxy (last IP is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
