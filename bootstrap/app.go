package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"forensics/ai"
	"forensics/api"
	"forensics/config"
	"forensics/threat"

	"go.uber.org/zap"
)

// App represents the forensics service with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	Storage *StorageComponents

	// Services
	AI        *ai.Service
	Intel     *threat.Service
	APIServer *api.API

	// Lifecycle
	serviceWg    *sync.WaitGroup
	shutdownOnce sync.Once
}

// NewApp creates a new application instance and initializes all components.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{
		serviceWg: &sync.WaitGroup{},
	}

	// Bootstrap logger until the configured one can be built
	_, sugar, err := InitLogger(config.EnvDevelopment, "info")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	logger, sugar, err := InitLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Infow("Forensics service starting...", "environment", cfg.Environment)

	// Pre-flight checks
	sugar.Info("Running pre-flight checks...")
	if err := EnsureDataDirectories(DataDirectoriesFromConfig(cfg), sugar); err != nil {
		return nil, fmt.Errorf("pre-flight check failed: %w", err)
	}

	storageComponents, err := InitStorage(ctx, cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.Storage = storageComponents

	app.AI = InitAI(cfg, sugar)
	app.Intel = InitThreatIntel(cfg, storageComponents, sugar)

	return app, nil
}

// InitAI builds the AI service over every provider that has an API key.
func InitAI(cfg *config.Config, sugar *zap.SugaredLogger) *ai.Service {
	providers := ai.ProvidersFromConfig(cfg.AI)
	dispatcher := ai.NewDispatcher(providers...)

	if len(providers) == 0 {
		sugar.Warn("No AI provider configured, AI endpoints will return 503")
	} else {
		sugar.Infow("AI providers configured",
			"providers", dispatcher.Names(),
			"primary", providers[0].Name())
	}

	features := ai.Features{
		AIAnalysis:         cfg.Features.AIAnalysis,
		AutoClassification: cfg.Features.AutoClassification,
	}
	return ai.NewService(features, dispatcher, ai.ServiceOptions{
		StoryMaxTokens:   cfg.AI.StoryMaxTokens,
		BatchConcurrency: cfg.AI.BatchConcurrency,
	}, sugar)
}

// InitThreatIntel builds the reputation service. Redis, when connected,
// becomes the shared second cache tier.
func InitThreatIntel(cfg *config.Config, sc *StorageComponents, sugar *zap.SugaredLogger) *threat.Service {
	providers := threat.ProvidersFromConfig(cfg.ThreatIntel)

	svc := threat.NewService(cfg.Features.ThreatIntelligence, providers, threat.ServiceOptions{
		CacheTTL:  cfg.ThreatIntel.CacheTTL,
		CacheSize: cfg.ThreatIntel.CacheSize,
		Redis:     sc.Redis,
	}, sugar)

	sugar.Infow("Threat intelligence initialized",
		"enabled", svc.Enabled(),
		"providers", svc.ProviderNames())
	return svc
}

// Start starts all application services.
func (a *App) Start(ctx context.Context) error {
	a.APIServer = api.NewAPI(a.Config, api.Dependencies{
		Repo:  a.Storage.Repo,
		Blobs: a.Storage.Blobs,
		AI:    a.AI,
		Intel: a.Intel,
		Redis: a.Storage.Redis,
	}, a.Sugar)

	addr := net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port))

	// Fail fast on a port that is already taken
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	_ = ln.Close()

	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		a.Sugar.Infof("API server started on %s", addr)
		if err := a.APIServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Errorf("API server error: %v", err)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// Shutdown gracefully shuts down all components. It is safe to call more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	a.Sugar.Info("Shutting down...")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// Phase 1 - Stop accepting requests and close websocket clients
	a.Sugar.Info("Phase 1: Stopping API server...")
	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
	}

	// Phase 2 - Wait for service goroutines
	a.Sugar.Info("Phase 2: Waiting for service goroutines to complete...")
	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Sugar.Info("All service goroutines stopped successfully")
	case <-time.After(timeout):
		a.Sugar.Warn("Service goroutine shutdown timed out")
	}

	// Phase 3 - Close storage
	a.Sugar.Info("Phase 3: Closing storage...")
	if a.Storage != nil {
		a.Storage.Close(a.Sugar)
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
