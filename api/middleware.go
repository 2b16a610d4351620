package api

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"forensics/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// routeTemplate returns the matched route pattern so metrics labels stay bounded
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// loggingMiddleware logs each request and records HTTP metrics
func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(WithRequestID(r.Context(), requestID)))

		duration := time.Since(start)
		route := routeTemplate(r)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		a.logger.Infow("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", getRealIP(r, a.config.Server.TrustProxy),
			"request_id", requestID,
		)
	})
}

// recoveryMiddleware turns a handler panic into a 500. The stack trace is
// always logged and only returned to the client outside production.
func (a *API) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			stack := string(debug.Stack())
			requestID, _ := GetRequestID(r.Context())
			a.logger.Errorw("Panic recovered",
				"error", sanitizeErrorMessage(fmt.Sprint(rec)),
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", getRealIP(r, a.config.Server.TrustProxy),
				"stack_trace", stack,
			)
			metrics.HTTPPanics.WithLabelValues(r.Method, routeTemplate(r)).Inc()

			resp := errorResponse{Error: "Internal server error"}
			if !a.config.IsProduction() {
				resp.Stack = stack
			}
			a.respondJSON(w, resp, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS and baseline security headers
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range a.config.Server.CORSOrigins {
			if allowed == "*" || origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-auth-token, x-user-id")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken reads the bearer token from the Authorization header or x-auth-token
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if token := r.Header.Get("x-auth-token"); token != "" {
		return token
	}
	// Browsers cannot set headers on websocket handshakes
	if r.URL.Path == "/api/ws" {
		return r.URL.Query().Get("token")
	}
	return ""
}

// Authenticate verifies the request token and stores its claims in the context
func (a *API) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "No authentication token provided", nil, a.logger)
			return
		}

		claims, err := validateJWT(tokenString, a.config.Auth)
		if err != nil {
			a.logger.Warnw("Rejected token",
				"path", r.URL.Path,
				"error", err)
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil, a.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
