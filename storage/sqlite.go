package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite is a Repository backed by an SQLite database.
// Separate read and write pools let WAL mode serve concurrent readers
// alongside the single writer.
type SQLite struct {
	WriteDB *sql.DB // MaxOpenConns=1, WAL single writer
	ReadDB  *sql.DB // query_only, concurrent readers
	Path    string
	Logger  *zap.SugaredLogger
}

// configureSQLiteConnection enables WAL, foreign keys and a busy timeout on a pool
func configureSQLiteConnection(db *sql.DB, logger *zap.SugaredLogger, dbPath string, poolType string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to query journal mode: %w", err)
	}
	// In-memory databases report "memory"
	if dbPath != ":memory:" && journalMode != "wal" {
		return fmt.Errorf("WAL mode not enabled (got: %s, expected: wal)", journalMode)
	}
	logger.Debugf("SQLite %s pool: journal mode %s", poolType, journalMode)
	return nil
}

// NewSQLite opens (or creates) the database at dbPath, applies the schema
// and seeds fx when the database is empty. A nil fx skips seeding.
func NewSQLite(dbPath string, fx *Fixtures, logger *zap.SugaredLogger) (*SQLite, error) {
	if err := validateDatabasePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Both pools must see the same in-memory database
	actualPath := dbPath
	if dbPath == ":memory:" {
		actualPath = "file::memory:?cache=shared"
	}

	writeDB, err := sql.Open("sqlite", actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite write database: %w", err)
	}
	if err := configureSQLiteConnection(writeDB, logger, dbPath, "write"); err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("failed to configure write connection: %w", err)
	}
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(0)
	writeDB.SetConnMaxIdleTime(10 * time.Minute)

	readDB, err := sql.Open("sqlite", actualPath)
	if err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("failed to open SQLite read database: %w", err)
	}
	if err := configureSQLiteConnection(readDB, logger, dbPath, "read"); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("failed to configure read connection: %w", err)
	}
	if _, err := readDB.Exec("PRAGMA query_only=ON"); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("failed to enable query_only mode on read pool: %w", err)
	}
	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	readDB.SetConnMaxIdleTime(10 * time.Minute)

	s := &SQLite{
		WriteDB: writeDB,
		ReadDB:  readDB,
		Path:    dbPath,
		Logger:  logger,
	}

	if err := s.createTables(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if fx != nil {
		if err := s.seed(context.Background(), fx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to seed fixtures: %w", err)
		}
	}

	logger.Infof("SQLite database initialized at %s", dbPath)
	return s, nil
}

// WithTransaction runs fn in a write transaction, rolling back on error or panic
func (s *SQLite) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction (original error: %w, rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLite) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sequences (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		password_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		incident_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		evidence_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		last_updated TEXT NOT NULL,
		assigned_to TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS raw_evidence (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		case_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		user TEXT NOT NULL,
		host TEXT NOT NULL,
		event_type TEXT NOT NULL,
		source TEXT NOT NULL,
		raw_message TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_raw_evidence_case ON raw_evidence(case_id);

	CREATE TABLE IF NOT EXISTS artifacts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		case_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		user TEXT NOT NULL,
		host TEXT NOT NULL,
		event_type TEXT NOT NULL,
		source TEXT NOT NULL,
		raw_message TEXT NOT NULL,
		confidence_score REAL NOT NULL CHECK (confidence_score >= 0 AND confidence_score <= 1),
		risk_level TEXT NOT NULL,
		llm_inference TEXT NOT NULL DEFAULT '',
		mitre_attack TEXT NOT NULL DEFAULT '',
		is_false_positive INTEGER NOT NULL DEFAULT 0,
		excluded_from_story INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_case ON artifacts(case_id);

	CREATE TABLE IF NOT EXISTS evidence_files (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		case_id TEXT NOT NULL REFERENCES cases(id),
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		file_type TEXT NOT NULL,
		hash TEXT NOT NULL,
		uploaded_by TEXT NOT NULL,
		uploaded_at TEXT NOT NULL,
		status TEXT NOT NULL,
		storage_path TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_evidence_files_case ON evidence_files(case_id);

	CREATE TABLE IF NOT EXISTS custody (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		evidence_id TEXT NOT NULL,
		action TEXT NOT NULL,
		performed_by TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		hash TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_custody_evidence ON custody(evidence_id);

	CREATE TRIGGER IF NOT EXISTS custody_no_update BEFORE UPDATE ON custody
	BEGIN
		SELECT RAISE(ABORT, 'custody entries are append-only');
	END;

	CREATE TRIGGER IF NOT EXISTS custody_no_delete BEFORE DELETE ON custody
	BEGIN
		SELECT RAISE(ABORT, 'custody entries are append-only');
	END;

	CREATE TABLE IF NOT EXISTS stories (
		case_id TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		overall_confidence REAL NOT NULL,
		generated_at TEXT NOT NULL,
		steps TEXT NOT NULL -- JSON array
	);

	CREATE TABLE IF NOT EXISTS notes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		case_id TEXT NOT NULL,
		author TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		case_id TEXT NOT NULL,
		decision TEXT NOT NULL,
		reason TEXT NOT NULL,
		performed_by TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS system_stats (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total_logs_ingested INTEGER NOT NULL DEFAULT 0,
		logs_filtered_out INTEGER NOT NULL DEFAULT 0,
		high_confidence_artifacts INTEGER NOT NULL DEFAULT 0,
		current_confidence_threshold REAL NOT NULL DEFAULT 0,
		investigation_progress REAL NOT NULL DEFAULT 0
	);
	INSERT OR IGNORE INTO system_stats (id) VALUES (1);
	`

	if _, err := s.WriteDB.Exec(schema); err != nil {
		return err
	}
	return nil
}

// seed loads fx into an empty database. A database that already has users is left alone.
func (s *SQLite) seed(ctx context.Context, fx *Fixtures) error {
	var n int
	if err := s.WriteDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, u := range fx.Users {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO users (id, email, name, role, password_hash) VALUES (?, ?, ?, ?, ?)`,
				u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash); err != nil {
				return fmt.Errorf("user %s: %w", u.Email, err)
			}
		}
		for i := range fx.Cases {
			if err := insertCase(ctx, tx, &fx.Cases[i]); err != nil {
				return fmt.Errorf("case %s: %w", fx.Cases[i].ID, err)
			}
		}
		for i := range fx.RawEvidence {
			if err := insertRawEvidence(ctx, tx, &fx.RawEvidence[i]); err != nil {
				return fmt.Errorf("raw evidence %s: %w", fx.RawEvidence[i].ID, err)
			}
		}
		for i := range fx.Artifacts {
			if err := insertArtifact(ctx, tx, &fx.Artifacts[i]); err != nil {
				return fmt.Errorf("artifact %s: %w", fx.Artifacts[i].ID, err)
			}
		}
		for i := range fx.Files {
			if err := insertFile(ctx, tx, &fx.Files[i]); err != nil {
				return fmt.Errorf("file %s: %w", fx.Files[i].ID, err)
			}
		}
		for i := range fx.Custody {
			if err := insertCustody(ctx, tx, &fx.Custody[i]); err != nil {
				return fmt.Errorf("custody %s: %w", fx.Custody[i].ID, err)
			}
		}
		for i := range fx.Stories {
			if err := upsertStory(ctx, tx, &fx.Stories[i]); err != nil {
				return fmt.Errorf("story %s: %w", fx.Stories[i].ID, err)
			}
		}
		for i := range fx.Notes {
			if err := insertNote(ctx, tx, &fx.Notes[i]); err != nil {
				return fmt.Errorf("note %s: %w", fx.Notes[i].ID, err)
			}
		}
		for i := range fx.Decisions {
			if err := insertDecision(ctx, tx, &fx.Decisions[i]); err != nil {
				return fmt.Errorf("decision %s: %w", fx.Decisions[i].ID, err)
			}
		}
		if err := updateStats(ctx, tx, &fx.Stats); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		for name, value := range fx.seedSequences() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sequences (name, value) VALUES (?, ?)
				 ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value); err != nil {
				return fmt.Errorf("sequence %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("Seeded SQLite database from fixtures",
		"cases", len(fx.Cases),
		"artifacts", len(fx.Artifacts),
		"users", len(fx.Users))
	return nil
}

// nextID advances a sequence inside tx
func nextID(ctx context.Context, tx *sql.Tx, prefix string) (string, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`, prefix).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to advance sequence %s: %w", prefix, err)
	}
	return formatID(prefix, n), nil
}

// Close closes both pools
func (s *SQLite) Close() error {
	var writeErr, readErr error
	if s.WriteDB != nil {
		writeErr = s.WriteDB.Close()
	}
	if s.ReadDB != nil {
		readErr = s.ReadDB.Close()
	}
	if writeErr != nil {
		return fmt.Errorf("failed to close write pool: %w", writeErr)
	}
	if readErr != nil {
		return fmt.Errorf("failed to close read pool: %w", readErr)
	}
	return nil
}

// HealthCheck verifies the database connection is alive
func (s *SQLite) HealthCheck() error {
	return s.WriteDB.Ping()
}

// validateDatabasePath rejects paths that escape the working directory.
// Temp directories are allowed for tests.
func validateDatabasePath(dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if dbPath == ":memory:" {
		return nil
	}
	if len(dbPath) > 512 {
		return fmt.Errorf("database path exceeds maximum length of 512 characters")
	}
	if strings.Contains(dbPath, "\x00") {
		return fmt.Errorf("null bytes not allowed in path")
	}
	if strings.Contains(dbPath, "..") {
		return fmt.Errorf("path traversal not allowed (..): %s", dbPath)
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if strings.HasPrefix(absPath, os.TempDir()) {
		return nil
	}
	if filepath.IsAbs(dbPath) {
		return fmt.Errorf("absolute paths not allowed: %s", dbPath)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	rel, err := filepath.Rel(wd, absPath)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path escapes working directory: %s resolves to %s", dbPath, absPath)
	}
	return nil
}
