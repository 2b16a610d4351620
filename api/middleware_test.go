package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forensics/config"
	"forensics/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/api/cases", "", nil)
	requireStatus(t, rec, http.StatusUnauthorized)
	assert.Equal(t, "No authentication token provided", errorBody(t, rec))

	rec = env.do(t, http.MethodGet, "/api/cases", "not-a-jwt", nil)
	requireStatus(t, rec, http.StatusUnauthorized)
	assert.Equal(t, "Invalid or expired token", errorBody(t, rec))
}

func TestAuthenticate_TokenHeaders(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, executiveEmail)

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"bearer", "Authorization", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "Authorization", "bearer " + token, http.StatusOK},
		{"x-auth-token", "x-auth-token", token, http.StatusOK},
		{"basic scheme", "Authorization", "Basic " + token, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
			req.Header.Set(tt.header, tt.value)
			rec := httptest.NewRecorder()
			env.api.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuthenticate_QueryTokenOnlyForWebsocket(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/api/cases?token="+env.tokenFor(t, executiveEmail), "", nil)
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestCORS_Preflight(t *testing.T) {
	env := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cases", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-auth-token")
}

func TestCORS_UnknownOrigin(t *testing.T) {
	env := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	env.api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestHealthCheck(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Environment)
	assert.GreaterOrEqual(t, resp.Uptime, 0.0)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestNotFound(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/api/x", "", nil)
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Route /api/x not found", errorBody(t, rec))
}

func TestRequestID(t *testing.T) {
	env := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	env.api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "case not found", "case not found"},
		{"redis url", "dial redis://user:pw@cache:6379/0 failed", "dial [CONNECTION] failed"},
		{"sqlite path", "open sqlite:///var/lib/forensics.db: denied", "open [CONNECTION] denied"},
		{"api key", "upstream rejected api_key=sk-12345", "upstream rejected api_key=[REDACTED]"},
		{"password", "bad password: hunter2", "bad password=[REDACTED]"},
		{"query key", `Post "http://127.0.0.1:1/models/gemini-pro:generateContent?key=SECRET123": connection refused`,
			`Post "http://127.0.0.1:1/models/gemini-pro:generateContent?key=[REDACTED]": connection refused`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeErrorMessage(tt.in))
		})
	}

	long := sanitizeErrorMessage(strings.Repeat("a", 800))
	assert.Len(t, long, 500)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestValidationMessage(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required,max=5"`
		Owner string `json:"owner" validate:"required"`
	}

	err := validate.Struct(payload{Title: "too long"})
	require.Error(t, err)
	assert.Equal(t, "title must be at most 5 characters; owner is required", validationMessage(err))

	assert.Equal(t, "plain", validationMessage(errors.New("plain")))
}

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		wantStack bool
	}{
		{"development", config.EnvDevelopment, true},
		{"production", config.EnvProduction, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestAPI(t, func(cfg *config.Config) {
				cfg.Environment = tt.env
			})
			env.api.router.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) {
				panic("nil map write")
			})

			panics := metrics.HTTPPanics.WithLabelValues(http.MethodGet, "/panic")
			before := testutil.ToFloat64(panics)

			rec := env.do(t, http.MethodGet, "/panic", "", nil)
			requireStatus(t, rec, http.StatusInternalServerError)
			assert.Equal(t, before+1, testutil.ToFloat64(panics))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

			var body errorResponse
			decode(t, rec, &body)
			assert.Equal(t, "Internal server error", body.Error)
			if tt.wantStack {
				assert.Contains(t, body.Stack, "goroutine")
			} else {
				assert.Empty(t, body.Stack)
			}
		})
	}
}

func TestWriteServiceError_Stack(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		wantStack bool
	}{
		{"development", config.EnvDevelopment, true},
		{"production", config.EnvProduction, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestAPI(t, func(cfg *config.Config) {
				cfg.Environment = tt.env
			})
			token := env.tokenFor(t, executiveEmail)
			env.api.repo = &failingRepo{MemoryStore: env.store, err: errors.New("database is locked")}

			rec := env.do(t, http.MethodGet, "/api/cases", token, nil)
			requireStatus(t, rec, http.StatusInternalServerError)

			var body errorResponse
			decode(t, rec, &body)
			assert.Equal(t, "Failed to list cases", body.Error)
			assert.NotContains(t, rec.Body.String(), "database is locked")
			if tt.wantStack {
				assert.NotEmpty(t, body.Stack)
			} else {
				assert.Empty(t, body.Stack)
			}
		})
	}
}
