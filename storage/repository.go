package storage

import (
	"context"

	"forensics/core"
)

// EvidenceFilter narrows raw evidence listings
type EvidenceFilter struct {
	CaseID string
}

// ArtifactFilter narrows filtered artifact listings. A nil Threshold keeps
// every artifact; otherwise only artifacts with ConfidenceScore >= *Threshold remain.
type ArtifactFilter struct {
	CaseID    string
	Threshold *float64
}

// Matches reports whether a passes the filter
func (f ArtifactFilter) Matches(a *core.FilteredArtifact) bool {
	if f.CaseID != "" && a.CaseID != f.CaseID {
		return false
	}
	if f.Threshold != nil && !a.MeetsThreshold(*f.Threshold) {
		return false
	}
	return true
}

// CaseRepository stores cases. Cases are never deleted.
type CaseRepository interface {
	ListCases(ctx context.Context) ([]core.Case, error)
	GetCase(ctx context.Context, id string) (*core.Case, error)
	// CreateCase assigns the next CASE id and stores c
	CreateCase(ctx context.Context, c *core.Case) (*core.Case, error)
	UpdateCase(ctx context.Context, id string, upd *core.CaseUpdate) (*core.Case, error)
}

// EvidenceRepository stores raw events and their filtered artifacts
type EvidenceRepository interface {
	ListRawEvidence(ctx context.Context, filter EvidenceFilter) ([]core.RawEvidence, error)
	ListArtifacts(ctx context.Context, filter ArtifactFilter) ([]core.FilteredArtifact, error)
	GetArtifact(ctx context.Context, id string) (*core.FilteredArtifact, error)
	ToggleFalsePositive(ctx context.Context, id string) (*core.FilteredArtifact, error)
	ToggleExcludedFromStory(ctx context.Context, id string) (*core.FilteredArtifact, error)
}

// FileRepository stores evidence file metadata
type FileRepository interface {
	ListFiles(ctx context.Context, caseID string) ([]core.EvidenceFile, error)
	CreateFile(ctx context.Context, f *core.EvidenceFile) (*core.EvidenceFile, error)
}

// CustodyRepository is the append-only chain of custody
type CustodyRepository interface {
	ListCustody(ctx context.Context, evidenceID string) ([]core.CustodyEntry, error)
	AppendCustody(ctx context.Context, e *core.CustodyEntry) (*core.CustodyEntry, error)
}

// StoryRepository stores one attack story per case
type StoryRepository interface {
	GetStory(ctx context.Context, caseID string) (*core.AttackStory, error)
	// SaveStory replaces any existing story for the case
	SaveStory(ctx context.Context, s *core.AttackStory) (*core.AttackStory, error)
}

// JournalRepository stores append-only notes and decisions
type JournalRepository interface {
	ListNotes(ctx context.Context, caseID string) ([]core.InvestigatorNote, error)
	AddNote(ctx context.Context, n *core.InvestigatorNote) (*core.InvestigatorNote, error)
	ListDecisions(ctx context.Context, caseID string) ([]core.DecisionLogEntry, error)
	AddDecision(ctx context.Context, d *core.DecisionLogEntry) (*core.DecisionLogEntry, error)
}

// StatsRepository stores the dashboard counters
type StatsRepository interface {
	GetStats(ctx context.Context) (*core.SystemStats, error)
	UpdateStats(ctx context.Context, s *core.SystemStats) error
}

// UserRepository looks up accounts
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)
}

// Repository is everything the API layer needs from storage
type Repository interface {
	CaseRepository
	EvidenceRepository
	FileRepository
	CustodyRepository
	StoryRepository
	JournalRepository
	StatsRepository
	UserRepository
	Close() error
}
