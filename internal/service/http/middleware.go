package httpsvc

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"
	"github.com/unrolled/secure"
)

// instrument пишет access log и HTTP-метрики с шаблоном маршрута в качестве метки.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		duration := time.Since(start)

		h.cfg.Metrics.ObserveHTTPRequest(r.Method, route, status, duration)
		h.logger.WithFields(log.Fields{
			"method":      r.Method,
			"route":       route,
			"path":        r.URL.Path,
			"status":      status,
			"bytes":       ww.BytesWritten(),
			"duration_ms": duration.Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
			"remote":      r.RemoteAddr,
		}).Info("http request")
	})
}

// recoverer превращает панику в JSON-ответ 500.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			h.logger.WithFields(log.Fields{
				"panic":      rvr,
				"path":       r.URL.Path,
				"request_id": middleware.GetReqID(r.Context()),
				"stack":      string(debug.Stack()),
			}).Error("panic while handling request")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal, Code: "internal"})
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeaders выставляет заголовки безопасности: CSP, запрет фреймов, nosniff, HSTS.
func securityHeaders(frontendURL string) func(http.Handler) http.Handler {
	connectSrc := "'self'"
	if frontendURL != "" {
		connectSrc += " " + frontendURL
	}
	// TLS терминируется перед сервисом, поэтому HSTS отдаётся всегда.
	return secure.New(secure.Options{
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; connect-src " + connectSrc,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		STSPreload:            true,
		ForceSTSHeader:        true,
	}).Handler
}

// rateLimiter ограничивает запросы по IP скользящим окном httprate.
// Счётчик Redis при сбое пропускает запросы, см. ratelimit.RedisCounter.
func (h *Handler) rateLimiter() func(http.Handler) http.Handler {
	opts := []httprate.Option{
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithResponseHeaders(httprate.ResponseHeaders{
			Limit:      "RateLimit-Limit",
			Remaining:  "RateLimit-Remaining",
			Reset:      "RateLimit-Reset",
			RetryAfter: "Retry-After",
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: msgRateLimited, Code: "rate_limited"})
		}),
		httprate.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			h.logger.WithError(err).WithField("path", r.URL.Path).Error("rate limiter failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal, Code: "internal"})
		}),
	}
	if h.cfg.RateCounter != nil {
		opts = append(opts, httprate.WithLimitCounter(h.cfg.RateCounter))
	}
	return httprate.Limit(h.cfg.RateLimit, h.cfg.RateWindow, opts...)
}
