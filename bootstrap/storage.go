package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"forensics/config"
	"forensics/core"
	"forensics/storage"

	"go.uber.org/zap"
)

// StorageComponents holds all storage-related components.
type StorageComponents struct {
	Repo   storage.Repository
	SQLite *storage.SQLite // nil with the memory driver
	Blobs  *storage.BlobStore
	Redis  *core.RedisCache // nil when Redis is disabled or unreachable
}

// Close releases every open connection
func (s *StorageComponents) Close(sugar *zap.SugaredLogger) {
	if s.Repo != nil {
		if err := s.Repo.Close(); err != nil {
			sugar.Errorw("Failed to close repository", "error", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			sugar.Errorw("Failed to close Redis connection", "error", err)
		}
	}
}

// InitRepository opens the configured repository. Fixtures are seeded into a
// fresh database when storage.seed_fixtures is on; the memory driver always
// starts from them.
func InitRepository(cfg *config.Config, sugar *zap.SugaredLogger) (storage.Repository, *storage.SQLite, error) {
	cost := cfg.Auth.BcryptCost
	fx, err := storage.LoadDefaultFixtures(cost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	switch cfg.Storage.Driver {
	case "sqlite":
		if !cfg.Storage.SeedFixtures {
			fx = nil
		}
		sqlite, err := storage.NewSQLite(cfg.Storage.SQLitePath, fx, sugar)
		if err != nil {
			errMsg := ClassifySQLiteError(err, cfg.Storage.SQLitePath)
			fmt.Fprintf(os.Stderr, "\n========================================\n")
			fmt.Fprintf(os.Stderr, "FATAL: SQLite Initialization Failed\n")
			fmt.Fprintf(os.Stderr, "========================================\n")
			fmt.Fprintf(os.Stderr, "%s\n", errMsg)
			fmt.Fprintf(os.Stderr, "========================================\n\n")
			return nil, nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		sugar.Info("SQLite repository initialized successfully")
		return sqlite, sqlite, nil
	default:
		sugar.Infow("Using in-memory repository", "seeded", true)
		return storage.NewMemoryStore(fx), nil, nil
	}
}

// InitBlobStore prepares the upload directory and the optional S3 mirror.
// A mirror that cannot be built is logged and skipped.
func InitBlobStore(cfg *config.Config, sugar *zap.SugaredLogger) (*storage.BlobStore, error) {
	var mirror *storage.S3Mirror
	if cfg.Upload.S3.Enabled {
		m, err := storage.NewS3Mirror(cfg.Upload.S3)
		if err != nil {
			sugar.Warnw("S3 evidence mirror disabled", "error", err)
		} else {
			mirror = m
			sugar.Infow("S3 evidence mirror enabled",
				"bucket", cfg.Upload.S3.Bucket,
				"prefix", cfg.Upload.S3.Prefix)
		}
	}

	blobs, err := storage.NewBlobStore(cfg.Upload.Path, cfg.Upload.MaxSize, mirror, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload directory: %w", err)
	}
	sugar.Infow("Evidence upload directory ready", "path", cfg.Upload.Path)
	return blobs, nil
}

// InitRedis connects to Redis when enabled. Redis is optional: on failure the
// limiters and caches fall back to process memory.
func InitRedis(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) *core.RedisCache {
	if !cfg.Redis.Enabled {
		sugar.Info("Redis disabled, using in-process limiters and caches")
		return nil
	}

	rc := core.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, sugar)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		sugar.Warnw("Redis unreachable, using in-process limiters and caches",
			"addr", cfg.Redis.Addr,
			"hint", ClassifyRedisError(err, cfg.Redis.Addr))
		_ = rc.Close()
		return nil
	}

	sugar.Infow("Connected to Redis", "addr", cfg.Redis.Addr)
	return rc
}

// InitStorage builds every storage component
func InitStorage(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*StorageComponents, error) {
	repo, sqlite, err := InitRepository(cfg, sugar)
	if err != nil {
		return nil, err
	}

	blobs, err := InitBlobStore(cfg, sugar)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	return &StorageComponents{
		Repo:   repo,
		SQLite: sqlite,
		Blobs:  blobs,
		Redis:  InitRedis(ctx, cfg, sugar),
	}, nil
}
