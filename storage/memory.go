package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"forensics/core"
)

// MemoryStore is a Repository held entirely in process memory. All methods
// are safe for concurrent use. Returned records are copies.
type MemoryStore struct {
	mu        sync.RWMutex
	cases     []core.Case
	raw       []core.RawEvidence
	artifacts []core.FilteredArtifact
	files     []core.EvidenceFile
	custody   []core.CustodyEntry
	stories   map[string]core.AttackStory
	notes     []core.InvestigatorNote
	decisions []core.DecisionLogEntry
	stats     core.SystemStats
	users     []core.User
	seq       map[string]int64
	now       func() time.Time
}

// NewMemoryStore creates a store seeded from fx. A nil fx gives an empty store.
func NewMemoryStore(fx *Fixtures) *MemoryStore {
	if fx == nil {
		fx = &Fixtures{}
	}
	m := &MemoryStore{
		cases:     append([]core.Case{}, fx.Cases...),
		raw:       append([]core.RawEvidence{}, fx.RawEvidence...),
		artifacts: append([]core.FilteredArtifact{}, fx.Artifacts...),
		files:     append([]core.EvidenceFile{}, fx.Files...),
		custody:   append([]core.CustodyEntry{}, fx.Custody...),
		stories:   make(map[string]core.AttackStory, len(fx.Stories)),
		notes:     append([]core.InvestigatorNote{}, fx.Notes...),
		decisions: append([]core.DecisionLogEntry{}, fx.Decisions...),
		stats:     fx.Stats,
		users:     append([]core.User{}, fx.Users...),
		seq:       fx.seedSequences(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, s := range fx.Stories {
		m.stories[s.CaseID] = cloneStory(s)
	}
	return m
}

// next advances a sequence. Caller must hold the write lock.
func (m *MemoryStore) next(prefix string) string {
	m.seq[prefix]++
	return formatID(prefix, m.seq[prefix])
}

func (m *MemoryStore) ListCases(ctx context.Context) ([]core.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Case{}, m.cases...), nil
}

func (m *MemoryStore) GetCase(ctx context.Context, id string) (*core.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.cases {
		if m.cases[i].ID == id {
			c := m.cases[i]
			return &c, nil
		}
	}
	return nil, ErrCaseNotFound
}

func (m *MemoryStore) CreateCase(ctx context.Context, c *core.Case) (*core.Case, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *c
	stored.ID = m.next(seqCase)
	now := m.now()
	stored.CreatedAt = now
	stored.LastUpdated = now
	stored.EvidenceCount = 0
	m.cases = append(m.cases, stored)
	return &stored, nil
}

func (m *MemoryStore) UpdateCase(ctx context.Context, id string, upd *core.CaseUpdate) (*core.Case, error) {
	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cases {
		if m.cases[i].ID == id {
			upd.Apply(&m.cases[i], m.now())
			c := m.cases[i]
			return &c, nil
		}
	}
	return nil, ErrCaseNotFound
}

func (m *MemoryStore) ListRawEvidence(ctx context.Context, filter EvidenceFilter) ([]core.RawEvidence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []core.RawEvidence{}
	for _, e := range m.raw {
		if filter.CaseID == "" || e.CaseID == filter.CaseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListArtifacts(ctx context.Context, filter ArtifactFilter) ([]core.FilteredArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []core.FilteredArtifact{}
	for i := range m.artifacts {
		if filter.Matches(&m.artifacts[i]) {
			out = append(out, m.artifacts[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) GetArtifact(ctx context.Context, id string) (*core.FilteredArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.artifactIndex(id); i >= 0 {
		a := m.artifacts[i]
		return &a, nil
	}
	return nil, ErrArtifactNotFound
}

func (m *MemoryStore) ToggleFalsePositive(ctx context.Context, id string) (*core.FilteredArtifact, error) {
	return m.toggle(id, func(a *core.FilteredArtifact) { a.IsFalsePositive = !a.IsFalsePositive })
}

func (m *MemoryStore) ToggleExcludedFromStory(ctx context.Context, id string) (*core.FilteredArtifact, error) {
	return m.toggle(id, func(a *core.FilteredArtifact) { a.ExcludedFromStory = !a.ExcludedFromStory })
}

func (m *MemoryStore) toggle(id string, flip func(*core.FilteredArtifact)) (*core.FilteredArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.artifactIndex(id)
	if i < 0 {
		return nil, ErrArtifactNotFound
	}
	flip(&m.artifacts[i])
	a := m.artifacts[i]
	return &a, nil
}

func (m *MemoryStore) artifactIndex(id string) int {
	for i := range m.artifacts {
		if m.artifacts[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) ListFiles(ctx context.Context, caseID string) ([]core.EvidenceFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []core.EvidenceFile{}
	for _, f := range m.files {
		if caseID == "" || f.CaseID == caseID {
			out = append(out, f)
		}
	}
	return out, nil
}

// CreateFile stores f under the next FILE id and bumps the owning case's
// evidence count.
func (m *MemoryStore) CreateFile(ctx context.Context, f *core.EvidenceFile) (*core.EvidenceFile, error) {
	if !f.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid file status: %s", ErrInvalidRecord, f.Status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := -1
	for i := range m.cases {
		if m.cases[i].ID == f.CaseID {
			ci = i
			break
		}
	}
	if ci < 0 {
		return nil, ErrCaseNotFound
	}

	stored := *f
	stored.ID = m.next(seqFile)
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = m.now()
	}
	m.files = append(m.files, stored)
	m.cases[ci].EvidenceCount++
	m.cases[ci].LastUpdated = m.now()
	return &stored, nil
}

func (m *MemoryStore) ListCustody(ctx context.Context, evidenceID string) ([]core.CustodyEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []core.CustodyEntry{}
	for _, e := range m.custody {
		if evidenceID == "" || e.EvidenceID == evidenceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) AppendCustody(ctx context.Context, e *core.CustodyEntry) (*core.CustodyEntry, error) {
	if strings.TrimSpace(e.EvidenceID) == "" || strings.TrimSpace(e.Action) == "" {
		return nil, fmt.Errorf("%w: evidenceId and action are required", ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *e
	stored.ID = m.next(seqCustody)
	if stored.Timestamp.IsZero() {
		stored.Timestamp = m.now()
	}
	m.custody = append(m.custody, stored)
	return &stored, nil
}

func (m *MemoryStore) GetStory(ctx context.Context, caseID string) (*core.AttackStory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[caseID]
	if !ok {
		return nil, ErrStoryNotFound
	}
	s = cloneStory(s)
	return &s, nil
}

func (m *MemoryStore) SaveStory(ctx context.Context, s *core.AttackStory) (*core.AttackStory, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := cloneStory(*s)
	stored.ID = core.StoryID(s.CaseID)
	if stored.GeneratedAt.IsZero() {
		stored.GeneratedAt = m.now()
	}
	m.stories[s.CaseID] = stored
	out := cloneStory(stored)
	return &out, nil
}

func (m *MemoryStore) ListNotes(ctx context.Context, caseID string) ([]core.InvestigatorNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []core.InvestigatorNote{}
	for _, n := range m.notes {
		if caseID == "" || n.CaseID == caseID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MemoryStore) AddNote(ctx context.Context, n *core.InvestigatorNote) (*core.InvestigatorNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *n
	stored.ID = m.next(seqNote)
	if stored.Timestamp.IsZero() {
		stored.Timestamp = m.now()
	}
	m.notes = append(m.notes, stored)
	return &stored, nil
}

func (m *MemoryStore) ListDecisions(ctx context.Context, caseID string) ([]core.DecisionLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []core.DecisionLogEntry{}
	for _, d := range m.decisions {
		if caseID == "" || d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) AddDecision(ctx context.Context, d *core.DecisionLogEntry) (*core.DecisionLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *d
	stored.ID = m.next(seqDecision)
	if stored.Timestamp.IsZero() {
		stored.Timestamp = m.now()
	}
	m.decisions = append(m.decisions, stored)
	return &stored, nil
}

func (m *MemoryStore) GetStats(ctx context.Context) (*core.SystemStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.stats
	return &s, nil
}

func (m *MemoryStore) UpdateStats(ctx context.Context, s *core.SystemStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = *s
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

func cloneStory(s core.AttackStory) core.AttackStory {
	steps := make([]core.StoryStep, len(s.Steps))
	for i, st := range s.Steps {
		st.EvidenceIDs = append([]string{}, st.EvidenceIDs...)
		steps[i] = st
	}
	s.Steps = steps
	return s
}

var _ Repository = (*MemoryStore)(nil)
