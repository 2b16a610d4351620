package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"forensics/ai"
	"forensics/config"
	"forensics/core"
	"forensics/storage"
	"forensics/threat"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-000001"

// Fixture accounts
const (
	investigatorEmail = "investigator@company.com"
	responderEmail    = "responder@company.com"
	auditorEmail      = "auditor@company.com"
	executiveEmail    = "executive@company.com"
	fixturePassword   = "demo123"
)

func testConfig() *config.Config {
	cfg := &config.Config{Environment: config.EnvTest}
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Auth = config.AuthConfig{
		JWTSecret:     testJWTSecret,
		JWTExpiry:     time.Hour,
		Issuer:        "forensics",
		DemoPasswords: []string{"letmein"},
		BcryptCost:    bcrypt.MinCost,
	}
	cfg.Upload = config.UploadConfig{
		MaxSize:      1 << 20,
		AllowedTypes: []string{"log", "txt", "json", "csv"},
	}
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.WindowMS = 60000
	cfg.RateLimit.MaxRequests = 100
	cfg.RateLimit.Login = config.LimitConfig{WindowMS: 60000, MaxRequests: 10}
	cfg.RateLimit.Upload.PerHour = 50
	cfg.RateLimit.Upload.Burst = 50
	cfg.Features = config.FeatureFlags{AIAnalysis: true, AutoClassification: true, ThreatIntelligence: true}
	return cfg
}

// stubLLM answers every prompt with a canned completion
type stubLLM struct {
	mu      sync.Mutex
	name    string
	text    string
	err     error
	prompts []string
}

func (s *stubLLM) Name() string  { return s.name }
func (s *stubLLM) Model() string { return "stub-model" }

func (s *stubLLM) Complete(ctx context.Context, prompt string, opts ai.Options) (*ai.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Completion{Text: s.text, Tokens: 42}, nil
}

// stubIntel is an AbuseIPDB stand-in reporting a fixed confidence score
type stubIntel struct {
	score int
	err   error
	calls int
}

func (s *stubIntel) Name() string                   { return threat.ProviderAbuseIPDB }
func (s *stubIntel) Supports(t threat.IOCType) bool { return t == threat.IOCTypeIP }

func (s *stubIntel) Lookup(ctx context.Context, t threat.IOCType, value string) (any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &threat.AbuseIPDBData{AbuseConfidenceScore: s.score, TotalReports: 3}, nil
}

// failingRepo is the fixture store with selected writes and reads broken
type failingRepo struct {
	*storage.MemoryStore
	err error
}

func (f *failingRepo) ListCases(ctx context.Context) ([]core.Case, error) {
	return nil, f.err
}

func (f *failingRepo) CreateFile(ctx context.Context, file *core.EvidenceFile) (*core.EvidenceFile, error) {
	return nil, f.err
}

// testEnv is an API over the demo fixtures with stubbed upstreams
type testEnv struct {
	api   *API
	store *storage.MemoryStore
	llm   *stubLLM
	intel *stubIntel
}

// setupTestAPI builds an API over a fresh in-memory store. mutate may adjust
// the config before the API is constructed.
func setupTestAPI(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	logger := zap.NewNop().Sugar()

	fx, err := storage.LoadDefaultFixtures(bcrypt.MinCost)
	require.NoError(t, err)
	store := storage.NewMemoryStore(fx)

	blobs, err := storage.NewBlobStore(t.TempDir(), cfg.Upload.MaxSize, nil, logger)
	require.NoError(t, err)

	llm := &stubLLM{name: ai.LabelOpenAI, text: "Likely phishing follow-up activity."}
	intel := &stubIntel{score: 90}

	features := ai.Features{AIAnalysis: cfg.Features.AIAnalysis, AutoClassification: cfg.Features.AutoClassification}
	aiService := ai.NewService(features, ai.NewDispatcher(llm), ai.ServiceOptions{}, logger)
	intelService := threat.NewService(cfg.Features.ThreatIntelligence, []threat.Provider{intel}, threat.ServiceOptions{}, logger)

	a := NewAPI(cfg, Dependencies{
		Repo:  store,
		Blobs: blobs,
		AI:    aiService,
		Intel: intelService,
	}, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Stop(ctx)
	})

	return &testEnv{api: a, store: store, llm: llm, intel: intel}
}

// tokenFor signs a token for a fixture account
func (e *testEnv) tokenFor(t *testing.T, email string) string {
	t.Helper()
	user, err := e.store.GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	token, _, err := generateJWT(user, e.api.config.Auth, time.Now())
	require.NoError(t, err)
	return token
}

// do sends a request through the full handler chain. body is JSON-encoded
// unless it is already an io.Reader.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.api.Handler().ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body into dest
func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

// errorBody returns the error message of a JSON error response
func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}

// requireStatus fails with the body when the status is unexpected
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
