package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	goahttp "goa.design/goa/v3/http"
	httpmiddleware "goa.design/goa/v3/http/middleware"
	"goa.design/goa/v3/middleware"

	"educhain/internal/config"
	"educhain/internal/logging"
	"educhain/internal/metrics"
)

// NewHandler mounts s on a goa muxer and wraps it in the middleware chain:
// security headers -> CORS -> request id -> logging -> prometheus -> mux.
func NewHandler(cfg *config.Config, s *Server) http.Handler {
	mux := goahttp.NewMuxer()
	s.Mount(mux)

	var handler http.Handler = mux
	handler = metrics.PrometheusMiddleware(Routes...)(handler)
	handler = requestLogging(handler)
	handler = exposeRequestID(handler)
	handler = httpmiddleware.PopulateRequestContext()(handler)
	handler = httpmiddleware.RequestID()(handler)
	handler = setupCORS(handler, cfg)
	handler = setupSecurityHeaders(handler, cfg)
	return handler
}

// setupSecurityHeaders adds security headers to responses
func setupSecurityHeaders(handler http.Handler, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// HSTS (only in production with HTTPS)
		if !cfg.App.Debug && r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		handler.ServeHTTP(w, r)
	})
}

// setupCORS configures CORS based on environment
func setupCORS(handler http.Handler, cfg *config.Config) http.Handler {
	allowAll := len(cfg.CORS.AllowedOrigins) == 0 || cfg.CORS.AllowedOrigins[0] == "*"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && !allowAll && !cfg.App.Debug {
			allowed := false
			for _, allowedOrigin := range cfg.CORS.AllowedOrigins {
				if origin == allowedOrigin {
					allowed = true
					break
				}
			}
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		}

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		} else if allowAll {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.CORS.AllowedMethods, ", "))
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.CORS.AllowedHeaders, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type, X-Request-Id")
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.CORS.MaxAge))

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// exposeRequestID echoes the id assigned by the goa RequestID middleware.
func exposeRequestID(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := requestID(r); id != "" {
			w.Header().Set("X-Request-Id", id)
		}
		handler.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(middleware.RequestIDKey).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogging logs all incoming requests and their responses
func requestLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip health checks and scrapes to reduce noise
		if r.URL.Path == pathHealth || r.URL.Path == pathMetrics {
			handler.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		log := logging.For("http").WithField("request_id", requestID(r))

		log.Debugf("[REQUEST] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		handler.ServeHTTP(wrapped, r)

		entry := log.WithField("status", wrapped.statusCode).WithField("duration", time.Since(start).String())
		if wrapped.statusCode >= http.StatusInternalServerError {
			entry.Warnf("[RESPONSE] %s %s -> %d", r.Method, r.URL.Path, wrapped.statusCode)
		} else {
			entry.Infof("[RESPONSE] %s %s -> %d", r.Method, r.URL.Path, wrapped.statusCode)
		}
	})
}
