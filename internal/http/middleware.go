package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Clark-Hu/photo-ratings/internal/metrics"
)

// requestLogger logs one entry per request through zap. 5xx responses are
// logged at error level.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := zapcore.InfoLevel
			if status >= http.StatusInternalServerError {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", r.RequestURI),
				zap.String("Method", r.Method),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

// limitRaters rejects rating writes from a rater (or address, when no rater
// header is sent) that exceeds the configured rate.
func (s *Server) limitRaters(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := raterFrom(r)
		if key == "" {
			key = r.RemoteAddr
		}
		if !s.limiter.Allow(key) {
			s.metrics.RatingsSubmitted.WithLabelValues(metrics.ResultLimited).Inc()
			respondText(w, http.StatusTooManyRequests, "Too many rating requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
