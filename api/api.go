// Package api Forensics Case Management API
//
//	@title			Forensics Case Management API
//	@version		1.0
//	@description	API for forensic investigation cases, evidence, chain of custody, attack stories and AI-assisted analysis
//	@termsOfService	http://swagger.io/terms/
//
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
//
// @host		localhost:5000
// @BasePath	/
// @securityDefinitions.apikey	ApiKeyAuth
// @in							header
// @name						Authorization
// @description				Enter "Bearer <token>"
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"forensics/ai"
	"forensics/config"
	"forensics/core"
	"forensics/storage"
	"forensics/threat"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Dependencies are the services the API serves. Blobs and Redis may be nil.
type Dependencies struct {
	Repo  storage.Repository
	Blobs *storage.BlobStore
	AI    *ai.Service
	Intel *threat.Service
	Redis *core.RedisCache
}

// API holds the API server
type API struct {
	router    *mux.Router
	server    *http.Server
	repo      storage.Repository
	blobs     *storage.BlobStore
	ai        *ai.Service
	intel     *threat.Service
	config    *config.Config
	logger    *zap.SugaredLogger
	hub       *Hub
	startedAt time.Time

	apiLimiter    *FixedWindowLimiter
	loginLimiter  *FixedWindowLimiter
	uploadLimiter *UploadLimiter

	stopCh chan struct{}
}

// NewAPI creates a new API server and starts its websocket hub
func NewAPI(cfg *config.Config, deps Dependencies, logger *zap.SugaredLogger) *API {
	a := &API{
		router:    mux.NewRouter(),
		repo:      deps.Repo,
		blobs:     deps.Blobs,
		ai:        deps.AI,
		intel:     deps.Intel,
		config:    cfg,
		logger:    logger,
		hub:       NewHub(logger, context.Background()),
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
	}

	a.apiLimiter = NewFixedWindowLimiter("api", cfg.RateLimit.Window(), cfg.RateLimit.MaxRequests, deps.Redis, logger)
	a.loginLimiter = NewFixedWindowLimiter("login", cfg.RateLimit.Login.Window(), cfg.RateLimit.Login.MaxRequests, deps.Redis, logger)
	a.uploadLimiter = NewUploadLimiter(cfg.RateLimit.Upload.PerHour, cfg.RateLimit.Upload.Burst)

	go a.hub.Start()
	go a.cleanupLimiters()

	a.setupRoutes()
	return a
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.loggingMiddleware, a.recoveryMiddleware)

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())
	a.router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	apiRouter := a.router.PathPrefix("/api").Subrouter()
	if a.config.RateLimit.Enabled {
		apiRouter.Use(a.rateLimitMiddleware)
	}

	// Public
	apiRouter.Handle("/auth/login", a.loginRateLimitMiddleware(http.HandlerFunc(a.login))).Methods("POST")

	// Everything below requires a valid token
	protected := apiRouter.NewRoute().Subrouter()
	protected.Use(a.Authenticate)

	writers := []core.UserRole{core.RoleInvestigator, core.RoleIncidentResponder}
	custodians := []core.UserRole{core.RoleInvestigator, core.RoleIncidentResponder, core.RoleLegalAuditor}

	protected.HandleFunc("/auth/logout", a.logout).Methods("POST")
	protected.HandleFunc("/auth/me", a.me).Methods("GET")

	protected.HandleFunc("/cases", a.getCases).Methods("GET")
	protected.Handle("/cases", a.Authorize(writers...)(http.HandlerFunc(a.createCase))).Methods("POST")
	protected.HandleFunc("/cases/{id}", a.getCase).Methods("GET")
	protected.Handle("/cases/{id}", a.Authorize(writers...)(http.HandlerFunc(a.updateCase))).Methods("PUT")

	protected.HandleFunc("/evidence/raw", a.getRawEvidence).Methods("GET")
	protected.HandleFunc("/evidence/filtered", a.getFilteredArtifacts).Methods("GET")
	protected.Handle("/evidence/{id}/false-positive", a.Authorize(writers...)(http.HandlerFunc(a.toggleFalsePositive))).Methods("PATCH")
	protected.Handle("/evidence/{id}/exclude-story", a.Authorize(writers...)(http.HandlerFunc(a.toggleExcludeFromStory))).Methods("PATCH")

	protected.HandleFunc("/data/story/{caseId}", a.getAttackStory).Methods("GET")
	protected.Handle("/data/story/{caseId}", a.Authorize(writers...)(http.HandlerFunc(a.saveAttackStory))).Methods("PUT")
	protected.HandleFunc("/data/files", a.getEvidenceFiles).Methods("GET")
	protected.Handle("/data/files", a.Authorize(custodians...)(a.uploadRateLimitMiddleware(http.HandlerFunc(a.uploadEvidenceFile)))).Methods("POST")
	protected.HandleFunc("/data/chain-of-custody", a.getChainOfCustody).Methods("GET")
	protected.Handle("/data/chain-of-custody", a.Authorize(custodians...)(http.HandlerFunc(a.appendCustody))).Methods("POST")
	protected.HandleFunc("/data/system-stats", a.getSystemStats).Methods("GET")
	protected.HandleFunc("/data/notes", a.getNotes).Methods("GET")
	protected.Handle("/data/notes", a.Authorize(writers...)(http.HandlerFunc(a.addNote))).Methods("POST")
	protected.HandleFunc("/data/decisions", a.getDecisions).Methods("GET")
	protected.Handle("/data/decisions", a.Authorize(writers...)(http.HandlerFunc(a.addDecision))).Methods("POST")

	protected.HandleFunc("/ml/analyze", a.analyzeEvent).Methods("POST")
	protected.HandleFunc("/ml/classify", a.classifyEvent).Methods("POST")
	protected.HandleFunc("/ml/batch-analyze", a.batchAnalyzeEvents).Methods("POST")
	protected.HandleFunc("/ml/generate-story", a.generateStory).Methods("POST")
	protected.HandleFunc("/ml/threat-intel/ip/{ip}", a.checkIPReputation).Methods("GET")
	protected.HandleFunc("/ml/threat-intel/hash/{hash}", a.checkFileHash).Methods("GET")
	protected.HandleFunc("/ml/threat-intel/domain/{domain}", a.checkDomain).Methods("GET")
	protected.HandleFunc("/ml/mitre/{techniqueId}", a.getMitreTechnique).Methods("GET")
	protected.HandleFunc("/ml/health", a.getMLHealth).Methods("GET")

	protected.HandleFunc("/ws", a.handleWebSocket).Methods("GET")

	a.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Route %s not found", r.URL.Path), nil, a.logger)
	})
}

// Handler returns the root handler. CORS wraps the router so preflight
// requests are answered before route matching.
func (a *API) Handler() http.Handler {
	return a.corsMiddleware(a.router)
}

// Start starts the API server
func (a *API) Start(addr string) error {
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.config.Server.ReadTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}
	return a.server.ListenAndServe()
}

// Stop stops the API server and the websocket hub
func (a *API) Stop(ctx context.Context) error {
	select {
	case <-a.stopCh:
		return nil
	default:
		close(a.stopCh)
	}
	a.hub.Stop()
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// Hub exposes the websocket hub so other components can broadcast
func (a *API) Hub() *Hub {
	return a.hub
}
