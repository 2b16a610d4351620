package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"forensics/core"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// ===== Cases =====

const caseColumns = `id, title, incident_type, severity, status, evidence_count, created_at, last_updated, assigned_to, description`

func scanCase(row rowScanner) (*core.Case, error) {
	var c core.Case
	var createdAt, lastUpdated string
	if err := row.Scan(&c.ID, &c.Title, &c.IncidentType, &c.Severity, &c.Status,
		&c.EvidenceCount, &createdAt, &lastUpdated, &c.AssignedTo, &c.Description); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return nil, err
	}
	return &c, nil
}

func insertCase(ctx context.Context, tx *sql.Tx, c *core.Case) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO cases (`+caseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, string(c.IncidentType), string(c.Severity), string(c.Status), c.EvidenceCount,
		formatTime(c.CreatedAt), formatTime(c.LastUpdated), c.AssignedTo, c.Description)
	return err
}

func (s *SQLite) ListCases(ctx context.Context) ([]core.Case, error) {
	rows, err := s.ReadDB.QueryContext(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	out := []core.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLite) GetCase(ctx context.Context, id string) (*core.Case, error) {
	c, err := scanCase(s.ReadDB.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

func (s *SQLite) CreateCase(ctx context.Context, c *core.Case) (*core.Case, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	stored := *c
	now := nowUTC()
	stored.CreatedAt = now
	stored.LastUpdated = now
	stored.EvidenceCount = 0

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		id, err := nextID(ctx, tx, seqCase)
		if err != nil {
			return err
		}
		stored.ID = id
		return insertCase(ctx, tx, &stored)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	return &stored, nil
}

func (s *SQLite) UpdateCase(ctx context.Context, id string, upd *core.CaseUpdate) (*core.Case, error) {
	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	var updated *core.Case
	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		c, err := scanCase(tx.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCaseNotFound
		}
		if err != nil {
			return err
		}
		upd.Apply(c, nowUTC())
		_, err = tx.ExecContext(ctx, `UPDATE cases SET title = ?, incident_type = ?, severity = ?, status = ?,
			assigned_to = ?, description = ?, last_updated = ? WHERE id = ?`,
			c.Title, string(c.IncidentType), string(c.Severity), string(c.Status),
			c.AssignedTo, c.Description, formatTime(c.LastUpdated), id)
		updated = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ===== Evidence =====

const rawColumns = `id, case_id, timestamp, user, host, event_type, source, raw_message`

const artifactColumns = rawColumns + `, confidence_score, risk_level, llm_inference, mitre_attack, is_false_positive, excluded_from_story`

func scanRaw(row rowScanner) (*core.RawEvidence, error) {
	var e core.RawEvidence
	var ts string
	if err := row.Scan(&e.ID, &e.CaseID, &ts, &e.User, &e.Host, &e.EventType, &e.Source, &e.RawMessage); err != nil {
		return nil, err
	}
	t, err := parseTime(ts)
	if err != nil {
		return nil, err
	}
	e.Timestamp = t
	return &e, nil
}

func scanArtifact(row rowScanner) (*core.FilteredArtifact, error) {
	var a core.FilteredArtifact
	var ts string
	if err := row.Scan(&a.ID, &a.CaseID, &ts, &a.User, &a.Host, &a.EventType, &a.Source, &a.RawMessage,
		&a.ConfidenceScore, &a.RiskLevel, &a.LLMInference, &a.MitreAttack, &a.IsFalsePositive, &a.ExcludedFromStory); err != nil {
		return nil, err
	}
	t, err := parseTime(ts)
	if err != nil {
		return nil, err
	}
	a.Timestamp = t
	return &a, nil
}

func insertRawEvidence(ctx context.Context, tx *sql.Tx, e *core.RawEvidence) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO raw_evidence (`+rawColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaseID, formatTime(e.Timestamp), e.User, e.Host, e.EventType, string(e.Source), e.RawMessage)
	return err
}

func insertArtifact(ctx context.Context, tx *sql.Tx, a *core.FilteredArtifact) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CaseID, formatTime(a.Timestamp), a.User, a.Host, a.EventType, string(a.Source), a.RawMessage,
		a.ConfidenceScore, string(a.RiskLevel), a.LLMInference, a.MitreAttack, a.IsFalsePositive, a.ExcludedFromStory)
	return err
}

func (s *SQLite) ListRawEvidence(ctx context.Context, filter EvidenceFilter) ([]core.RawEvidence, error) {
	query := `SELECT ` + rawColumns + ` FROM raw_evidence`
	var args []any
	if filter.CaseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, filter.CaseID)
	}
	query += ` ORDER BY seq`

	rows, err := s.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw evidence: %w", err)
	}
	defer rows.Close()

	out := []core.RawEvidence{}
	for rows.Next() {
		e, err := scanRaw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw evidence: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *SQLite) ListArtifacts(ctx context.Context, filter ArtifactFilter) ([]core.FilteredArtifact, error) {
	var where []string
	var args []any
	if filter.CaseID != "" {
		where = append(where, "case_id = ?")
		args = append(args, filter.CaseID)
	}
	if filter.Threshold != nil {
		where = append(where, "confidence_score >= ?")
		args = append(args, *filter.Threshold)
	}
	query := `SELECT ` + artifactColumns + ` FROM artifacts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq`

	rows, err := s.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	out := []core.FilteredArtifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *SQLite) GetArtifact(ctx context.Context, id string) (*core.FilteredArtifact, error) {
	a, err := scanArtifact(s.ReadDB.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return a, nil
}

func (s *SQLite) ToggleFalsePositive(ctx context.Context, id string) (*core.FilteredArtifact, error) {
	return s.toggleArtifact(ctx, id, "is_false_positive")
}

func (s *SQLite) ToggleExcludedFromStory(ctx context.Context, id string) (*core.FilteredArtifact, error) {
	return s.toggleArtifact(ctx, id, "excluded_from_story")
}

// toggleArtifact flips a boolean column. column is always a constant from this file.
func (s *SQLite) toggleArtifact(ctx context.Context, id, column string) (*core.FilteredArtifact, error) {
	var updated *core.FilteredArtifact
	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE artifacts SET `+column+` = 1 - `+column+` WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrArtifactNotFound
		}
		updated, err = scanArtifact(tx.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ===== Files =====

const fileColumns = `id, case_id, file_name, file_size, file_type, hash, uploaded_by, uploaded_at, status, storage_path`

func scanFile(row rowScanner) (*core.EvidenceFile, error) {
	var f core.EvidenceFile
	var uploadedAt string
	if err := row.Scan(&f.ID, &f.CaseID, &f.FileName, &f.FileSize, &f.FileType, &f.Hash,
		&f.UploadedBy, &uploadedAt, &f.Status, &f.StoragePath); err != nil {
		return nil, err
	}
	t, err := parseTime(uploadedAt)
	if err != nil {
		return nil, err
	}
	f.UploadedAt = t
	return &f, nil
}

func insertFile(ctx context.Context, tx *sql.Tx, f *core.EvidenceFile) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO evidence_files (`+fileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CaseID, f.FileName, f.FileSize, f.FileType, f.Hash, f.UploadedBy,
		formatTime(f.UploadedAt), string(f.Status), f.StoragePath)
	return err
}

func (s *SQLite) ListFiles(ctx context.Context, caseID string) ([]core.EvidenceFile, error) {
	query := `SELECT ` + fileColumns + ` FROM evidence_files`
	var args []any
	if caseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, caseID)
	}
	query += ` ORDER BY seq`

	rows, err := s.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	out := []core.EvidenceFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateFile(ctx context.Context, f *core.EvidenceFile) (*core.EvidenceFile, error) {
	if !f.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid file status: %s", ErrInvalidRecord, f.Status)
	}
	stored := *f
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = nowUTC()
	}

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE cases SET evidence_count = evidence_count + 1, last_updated = ? WHERE id = ?`,
			formatTime(nowUTC()), stored.CaseID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrCaseNotFound
		}
		if stored.ID, err = nextID(ctx, tx, seqFile); err != nil {
			return err
		}
		return insertFile(ctx, tx, &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ===== Custody =====

const custodyColumns = `id, evidence_id, action, performed_by, timestamp, hash, notes`

func insertCustody(ctx context.Context, tx *sql.Tx, e *core.CustodyEntry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO custody (`+custodyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EvidenceID, e.Action, e.PerformedBy, formatTime(e.Timestamp), e.Hash, e.Notes)
	return err
}

func (s *SQLite) ListCustody(ctx context.Context, evidenceID string) ([]core.CustodyEntry, error) {
	query := `SELECT ` + custodyColumns + ` FROM custody`
	var args []any
	if evidenceID != "" {
		query += ` WHERE evidence_id = ?`
		args = append(args, evidenceID)
	}
	query += ` ORDER BY seq`

	rows, err := s.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list custody: %w", err)
	}
	defer rows.Close()

	out := []core.CustodyEntry{}
	for rows.Next() {
		var e core.CustodyEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.EvidenceID, &e.Action, &e.PerformedBy, &ts, &e.Hash, &e.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan custody entry: %w", err)
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) AppendCustody(ctx context.Context, e *core.CustodyEntry) (*core.CustodyEntry, error) {
	if strings.TrimSpace(e.EvidenceID) == "" || strings.TrimSpace(e.Action) == "" {
		return nil, fmt.Errorf("%w: evidenceId and action are required", ErrInvalidRecord)
	}
	stored := *e
	if stored.Timestamp.IsZero() {
		stored.Timestamp = nowUTC()
	}
	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		if stored.ID, err = nextID(ctx, tx, seqCustody); err != nil {
			return err
		}
		return insertCustody(ctx, tx, &stored)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append custody entry: %w", err)
	}
	return &stored, nil
}

// ===== Stories =====

func upsertStory(ctx context.Context, tx *sql.Tx, st *core.AttackStory) error {
	steps := st.Steps
	if steps == nil {
		steps = []core.StoryStep{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to marshal story steps: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO stories (case_id, id, overall_confidence, generated_at, steps)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(case_id) DO UPDATE SET id = excluded.id, overall_confidence = excluded.overall_confidence,
			generated_at = excluded.generated_at, steps = excluded.steps`,
		st.CaseID, st.ID, st.OverallConfidence, formatTime(st.GeneratedAt), string(stepsJSON))
	return err
}

func (s *SQLite) GetStory(ctx context.Context, caseID string) (*core.AttackStory, error) {
	var st core.AttackStory
	var generatedAt, stepsJSON string
	err := s.ReadDB.QueryRowContext(ctx,
		`SELECT case_id, id, overall_confidence, generated_at, steps FROM stories WHERE case_id = ?`, caseID).
		Scan(&st.CaseID, &st.ID, &st.OverallConfidence, &generatedAt, &stepsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	if st.GeneratedAt, err = parseTime(generatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stepsJSON), &st.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story steps: %w", err)
	}
	return &st, nil
}

func (s *SQLite) SaveStory(ctx context.Context, st *core.AttackStory) (*core.AttackStory, error) {
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	stored := *st
	stored.ID = core.StoryID(st.CaseID)
	if stored.GeneratedAt.IsZero() {
		stored.GeneratedAt = nowUTC()
	}
	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		return upsertStory(ctx, tx, &stored)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}
	return &stored, nil
}

// ===== Notes & decisions =====

func insertNote(ctx context.Context, tx *sql.Tx, n *core.InvestigatorNote) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO notes (id, case_id, author, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.CaseID, n.Author, n.Content, formatTime(n.Timestamp))
	return err
}

func insertDecision(ctx context.Context, tx *sql.Tx, d *core.DecisionLogEntry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO decisions (id, case_id, decision, reason, performed_by, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.CaseID, d.Decision, d.Reason, d.PerformedBy, formatTime(d.Timestamp))
	return err
}

func (s *SQLite) ListNotes(ctx context.Context, caseID string) ([]core.InvestigatorNote, error) {
	query := `SELECT id, case_id, author, content, timestamp FROM notes`
	var args []any
	if caseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, caseID)
	}
	query += ` ORDER BY seq`

	rows, err := s.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	out := []core.InvestigatorNote{}
	for rows.Next() {
		var n core.InvestigatorNote
		var ts string
		if err := rows.Scan(&n.ID, &n.CaseID, &n.Author, &n.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		if n.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLite) AddNote(ctx context.Context, n *core.InvestigatorNote) (*core.InvestigatorNote, error) {
	stored := *n
	if stored.Timestamp.IsZero() {
		stored.Timestamp = nowUTC()
	}
	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		if stored.ID, err = nextID(ctx, tx, seqNote); err != nil {
			return err
		}
		return insertNote(ctx, tx, &stored)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return &stored, nil
}

func (s *SQLite) ListDecisions(ctx context.Context, caseID string) ([]core.DecisionLogEntry, error) {
	query := `SELECT id, case_id, decision, reason, performed_by, timestamp FROM decisions`
	var args []any
	if caseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, caseID)
	}
	query += ` ORDER BY seq`

	rows, err := s.ReadDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	out := []core.DecisionLogEntry{}
	for rows.Next() {
		var d core.DecisionLogEntry
		var ts string
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Decision, &d.Reason, &d.PerformedBy, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if d.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) AddDecision(ctx context.Context, d *core.DecisionLogEntry) (*core.DecisionLogEntry, error) {
	stored := *d
	if stored.Timestamp.IsZero() {
		stored.Timestamp = nowUTC()
	}
	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		if stored.ID, err = nextID(ctx, tx, seqDecision); err != nil {
			return err
		}
		return insertDecision(ctx, tx, &stored)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add decision: %w", err)
	}
	return &stored, nil
}

// ===== Stats =====

func updateStats(ctx context.Context, tx *sql.Tx, st *core.SystemStats) error {
	_, err := tx.ExecContext(ctx, `UPDATE system_stats SET total_logs_ingested = ?, logs_filtered_out = ?,
		high_confidence_artifacts = ?, current_confidence_threshold = ?, investigation_progress = ? WHERE id = 1`,
		st.TotalLogsIngested, st.LogsFilteredOut, st.HighConfidenceArtifacts,
		st.CurrentConfidenceThreshold, st.InvestigationProgress)
	return err
}

func (s *SQLite) GetStats(ctx context.Context) (*core.SystemStats, error) {
	var st core.SystemStats
	err := s.ReadDB.QueryRowContext(ctx, `SELECT total_logs_ingested, logs_filtered_out, high_confidence_artifacts,
		current_confidence_threshold, investigation_progress FROM system_stats WHERE id = 1`).
		Scan(&st.TotalLogsIngested, &st.LogsFilteredOut, &st.HighConfidenceArtifacts,
			&st.CurrentConfidenceThreshold, &st.InvestigationProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to get system stats: %w", err)
	}
	return &st, nil
}

func (s *SQLite) UpdateStats(ctx context.Context, st *core.SystemStats) error {
	return s.WithTransaction(ctx, func(tx *sql.Tx) error {
		return updateStats(ctx, tx, st)
	})
}

// ===== Users =====

func (s *SQLite) getUser(ctx context.Context, where string, arg string) (*core.User, error) {
	var u core.User
	err := s.ReadDB.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash FROM users WHERE `+where+` = ?`, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, "id", id)
}

var _ Repository = (*SQLite)(nil)
