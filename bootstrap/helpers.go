package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"forensics/config"

	"go.uber.org/zap"
)

// DataDirectories lists the paths that must be writable before startup
type DataDirectories struct {
	Uploads string // evidence blob directory
	SQLite  string // directory holding the SQLite file, empty with the memory driver
}

// DataDirectoriesFromConfig derives the required directories from configuration.
func DataDirectoriesFromConfig(cfg *config.Config) DataDirectories {
	dirs := DataDirectories{Uploads: cfg.Upload.Path}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.SQLitePath != ":memory:" {
		dirs.SQLite = filepath.Dir(cfg.Storage.SQLitePath)
	}
	return dirs
}

// EnsureDataDirectories creates the data directories and verifies they are
// writable. This is a pre-flight check that runs before any service starts.
func EnsureDataDirectories(dirs DataDirectories, sugar *zap.SugaredLogger) error {
	for _, dir := range []string{dirs.Uploads, dirs.SQLite} {
		if dir == "" {
			continue
		}

		absPath, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path for %s: %w", dir, err)
		}

		if err := os.MkdirAll(absPath, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w\n"+
				"  Remediation: Ensure the parent directory exists and is writable\n"+
				"  For Docker: Check volume mount permissions\n"+
				"  For bare metal: Run 'mkdir -p %s && chmod 750 %s'", dir, err, absPath, absPath)
		}

		testFile := filepath.Join(absPath, ".forensics_write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0600); err != nil {
			return fmt.Errorf("directory %s is not writable: %w\n"+
				"  Remediation: Check file system permissions\n"+
				"  For Docker: Ensure volume is mounted with write access\n"+
				"  For bare metal: Run 'chmod -R u+w %s'", dir, err, absPath)
		}
		os.Remove(testFile)

		sugar.Infow("Data directory ready", "path", absPath)
	}
	return nil
}

// ClassifyRedisError turns a Redis connection failure into a remediation hint.
func ClassifyRedisError(err error, addr string) string {
	if err == nil {
		return ""
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("Connection to Redis at %s timed out. "+
			"Check that Redis is running and reachable: nc -zv %s", addr, addr)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || containsIgnoreCase(err.Error(), "connection refused") {
		return fmt.Sprintf("Connection refused by Redis at %s. "+
			"Start it with: docker compose up -d redis", addr)
	}

	errStr := err.Error()
	if containsIgnoreCase(errStr, "no such host") {
		return fmt.Sprintf("Cannot resolve hostname in Redis address %s. Verify redis.addr", addr)
	}
	if containsIgnoreCase(errStr, "NOAUTH") || containsIgnoreCase(errStr, "WRONGPASS") || containsIgnoreCase(errStr, "invalid password") {
		return fmt.Sprintf("Authentication failed for Redis at %s. Verify redis.password or FORENSICS_REDIS_PASSWORD", addr)
	}

	return fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err)
}

// ClassifySQLiteError provides specific error messages based on the type of SQLite failure.
func ClassifySQLiteError(err error, dbPath string) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()
	absPath, _ := filepath.Abs(dbPath)
	parentDir := filepath.Dir(absPath)

	if containsIgnoreCase(errStr, "permission denied") || containsIgnoreCase(errStr, "access denied") {
		return fmt.Sprintf("Permission denied accessing SQLite database at %s.\n"+
			"  Remediation:\n"+
			"  - Check file permissions: ls -la %s\n"+
			"  - Check directory permissions: ls -la %s\n"+
			"  - For Docker: Ensure volume is mounted with proper user permissions",
			absPath, absPath, parentDir)
	}

	if containsIgnoreCase(errStr, "database is locked") || containsIgnoreCase(errStr, "SQLITE_BUSY") {
		return fmt.Sprintf("SQLite database at %s is locked by another process.\n"+
			"  Remediation:\n"+
			"  - Check for running forensics processes: ps aux | grep forensics\n"+
			"  - Check for lock files: ls -la %s*", absPath, absPath)
	}

	if containsIgnoreCase(errStr, "disk full") || containsIgnoreCase(errStr, "no space") || containsIgnoreCase(errStr, "SQLITE_FULL") {
		return fmt.Sprintf("Disk full - cannot write to SQLite database at %s.\n"+
			"  Remediation:\n"+
			"  - Check available disk space: df -h %s\n"+
			"  - Free up disk space or expand the volume", absPath, parentDir)
	}

	if containsIgnoreCase(errStr, "corrupt") || containsIgnoreCase(errStr, "malformed") || containsIgnoreCase(errStr, "SQLITE_CORRUPT") {
		return fmt.Sprintf("SQLite database at %s appears to be corrupted.\n"+
			"  CRITICAL: Evidence metadata lives here. Back it up before proceeding!\n"+
			"  Remediation options:\n"+
			"  1. Try recovery: sqlite3 %s \".recover\" | sqlite3 %s.recovered\n"+
			"  2. Check integrity: sqlite3 %s \"PRAGMA integrity_check;\"\n"+
			"  3. If recovery fails, restore from backup",
			absPath, absPath, absPath, absPath)
	}

	if containsIgnoreCase(errStr, "path traversal") || containsIgnoreCase(errStr, "absolute paths not allowed") || containsIgnoreCase(errStr, "escapes working directory") {
		return fmt.Sprintf("SQLite path %s is outside the working directory.\n"+
			"  Remediation:\n"+
			"  - Use a relative storage.sqlite_path such as ./data/forensics.db", dbPath)
	}

	if containsIgnoreCase(errStr, "read-only") {
		return fmt.Sprintf("SQLite database location is on a read-only file system: %s.\n"+
			"  Remediation:\n"+
			"  - For Docker: Ensure volume is not mounted as read-only\n"+
			"  - Move database to a writable location via FORENSICS_STORAGE_SQLITE_PATH", absPath)
	}

	return fmt.Sprintf("Failed to initialize SQLite database at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure the directory %s exists and is writable\n"+
		"  - Check disk space and permissions", absPath, err, parentDir)
}

// containsIgnoreCase checks if a string contains a substring (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
