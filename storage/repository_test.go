package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"forensics/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testFixtures(t *testing.T) *Fixtures {
	t.Helper()
	fx, err := LoadDefaultFixtures(bcrypt.MinCost)
	require.NoError(t, err)
	return fx
}

// forEachRepository runs fn against every Repository implementation
func forEachRepository(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("memory", func(t *testing.T) {
		repo := NewMemoryStore(testFixtures(t))
		defer repo.Close()
		fn(t, repo)
	})
	t.Run("sqlite", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "forensics.db")
		repo, err := NewSQLite(dbPath, testFixtures(t), zap.NewNop().Sugar())
		require.NoError(t, err)
		defer repo.Close()
		fn(t, repo)
	})
}

func TestRepository_Cases(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		cases, err := repo.ListCases(ctx)
		require.NoError(t, err)
		require.Len(t, cases, 3)
		assert.Equal(t, "CASE-001", cases[0].ID)

		c, err := repo.GetCase(ctx, "CASE-002")
		require.NoError(t, err)
		assert.Equal(t, core.IncidentUSBBreach, c.IncidentType)

		_, err = repo.GetCase(ctx, "CASE-999")
		assert.ErrorIs(t, err, ErrCaseNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_CreateCaseAssignsSequentialIDs(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		first, err := repo.CreateCase(ctx, core.NewCase("Insider download", core.IncidentInsiderThreat, core.SeverityHigh, "Sarah Chen", ""))
		require.NoError(t, err)
		assert.Equal(t, "CASE-004", first.ID)
		assert.Equal(t, core.CaseStatusOpen, first.Status)
		assert.Zero(t, first.EvidenceCount)
		assert.False(t, first.CreatedAt.IsZero())

		second, err := repo.CreateCase(ctx, core.NewCase("Exfil over DNS", core.IncidentDataExfiltration, core.SeverityCritical, "Marcus Webb", ""))
		require.NoError(t, err)
		assert.Equal(t, "CASE-005", second.ID)

		got, err := repo.GetCase(ctx, "CASE-005")
		require.NoError(t, err)
		assert.Equal(t, "Exfil over DNS", got.Title)
	})
}

func TestRepository_CreateCaseRejectsInvalid(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		_, err := repo.CreateCase(context.Background(), core.NewCase("", core.IncidentPhishing, core.SeverityLow, "x", ""))
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestRepository_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		const n = 20

		var wg sync.WaitGroup
		ids := make(chan string, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				c, err := repo.CreateCase(ctx, core.NewCase(fmt.Sprintf("case %d", i), core.IncidentPhishing, core.SeverityLow, "Sarah Chen", ""))
				if assert.NoError(t, err) {
					ids <- c.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := map[string]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})
}

func TestRepository_UpdateCase(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		before, err := repo.GetCase(ctx, "CASE-002")
		require.NoError(t, err)

		status := core.CaseStatusInProgress
		title := "USB exfiltration confirmed"
		updated, err := repo.UpdateCase(ctx, "CASE-002", &core.CaseUpdate{Status: &status, Title: &title})
		require.NoError(t, err)

		assert.Equal(t, core.CaseStatusInProgress, updated.Status)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, before.AssignedTo, updated.AssignedTo)
		assert.Equal(t, before.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.LastUpdated.After(before.LastUpdated))

		_, err = repo.UpdateCase(ctx, "CASE-404", &core.CaseUpdate{Status: &status})
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})
}

func TestRepository_ListArtifactsThreshold(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		all, err := repo.ListArtifacts(ctx, ArtifactFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 7)

		threshold := 0.85
		high, err := repo.ListArtifacts(ctx, ArtifactFilter{CaseID: "CASE-001", Threshold: &threshold})
		require.NoError(t, err)
		require.NotEmpty(t, high)
		for _, a := range high {
			assert.GreaterOrEqual(t, a.ConfidenceScore, threshold)
			assert.Equal(t, "CASE-001", a.CaseID)
		}

		exact := 0.97
		top, err := repo.ListArtifacts(ctx, ArtifactFilter{Threshold: &exact})
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "EVT-005", top[0].ID)

		none, err := repo.ListArtifacts(ctx, ArtifactFilter{CaseID: "CASE-003"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestRepository_ToggleArtifactFlags(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		a, err := repo.ToggleFalsePositive(ctx, "EVT-006")
		require.NoError(t, err)
		assert.True(t, a.IsFalsePositive)
		assert.False(t, a.ExcludedFromStory)

		a, err = repo.ToggleFalsePositive(ctx, "EVT-006")
		require.NoError(t, err)
		assert.False(t, a.IsFalsePositive)

		a, err = repo.ToggleExcludedFromStory(ctx, "EVT-006")
		require.NoError(t, err)
		assert.True(t, a.ExcludedFromStory)

		got, err := repo.GetArtifact(ctx, "EVT-006")
		require.NoError(t, err)
		assert.True(t, got.ExcludedFromStory)
		assert.Equal(t, 0.42, got.ConfidenceScore)

		_, err = repo.ToggleFalsePositive(ctx, "EVT-404")
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})
}

func TestRepository_RawEvidenceByCase(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		all, err := repo.ListRawEvidence(ctx, EvidenceFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 8)

		usb, err := repo.ListRawEvidence(ctx, EvidenceFilter{CaseID: "CASE-002"})
		require.NoError(t, err)
		require.Len(t, usb, 2)
		assert.Equal(t, core.SourceUSB, usb[0].Source)
	})
}

func TestRepository_CreateFileBumpsEvidenceCount(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		f, err := repo.CreateFile(ctx, &core.EvidenceFile{
			CaseID:     "CASE-003",
			FileName:   "mail-headers.txt",
			FileSize:   512,
			FileType:   "txt",
			Hash:       "abc123",
			UploadedBy: "investigator@company.com",
			Status:     core.FileStatusQueued,
		})
		require.NoError(t, err)
		assert.Equal(t, "FILE-004", f.ID)
		assert.False(t, f.UploadedAt.IsZero())

		c, err := repo.GetCase(ctx, "CASE-003")
		require.NoError(t, err)
		assert.Equal(t, 1, c.EvidenceCount)

		files, err := repo.ListFiles(ctx, "CASE-003")
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "mail-headers.txt", files[0].FileName)

		_, err = repo.CreateFile(ctx, &core.EvidenceFile{CaseID: "CASE-404", Status: core.FileStatusQueued})
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})
}

func TestRepository_CustodyIsAppendOnly(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		before, err := repo.ListCustody(ctx, "FILE-001")
		require.NoError(t, err)
		require.Len(t, before, 2)

		e, err := repo.AppendCustody(ctx, &core.CustodyEntry{
			EvidenceID:  "FILE-001",
			Action:      "Transferred to legal hold",
			PerformedBy: "auditor@company.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "COC-5", e.ID)
		assert.False(t, e.Timestamp.IsZero())

		after, err := repo.ListCustody(ctx, "FILE-001")
		require.NoError(t, err)
		require.Len(t, after, 3)
		assert.Equal(t, before, after[:2])
		assert.Equal(t, "Transferred to legal hold", after[2].Action)

		_, err = repo.AppendCustody(ctx, &core.CustodyEntry{EvidenceID: "FILE-001"})
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestRepository_StoryReplace(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		s, err := repo.GetStory(ctx, "CASE-001")
		require.NoError(t, err)
		assert.Equal(t, "STORY-CASE-001", s.ID)
		require.Len(t, s.Steps, 4)
		assert.Equal(t, core.PhaseInitialAccess, s.Steps[0].Phase)
		assert.Equal(t, []string{"EVT-001", "EVT-002"}, s.Steps[0].EvidenceIDs)

		_, err = repo.GetStory(ctx, "CASE-002")
		assert.ErrorIs(t, err, ErrStoryNotFound)

		saved, err := repo.SaveStory(ctx, &core.AttackStory{
			CaseID:            "CASE-001",
			OverallConfidence: 0.5,
			Steps: []core.StoryStep{{
				ID:          "step-1",
				Phase:       core.PhaseDataExfiltration,
				Description: "Archive staged for upload",
				EvidenceIDs: []string{"EVT-005"},
				Confidence:  0.5,
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, "STORY-CASE-001", saved.ID)

		s, err = repo.GetStory(ctx, "CASE-001")
		require.NoError(t, err)
		require.Len(t, s.Steps, 1)
		assert.Equal(t, core.PhaseDataExfiltration, s.Steps[0].Phase)

		_, err = repo.SaveStory(ctx, &core.AttackStory{CaseID: "CASE-001", OverallConfidence: 1.5})
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestRepository_NotesAndDecisions(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		n, err := repo.AddNote(ctx, &core.InvestigatorNote{CaseID: "CASE-001", Author: "a@b.c", Content: "Imaged disk"})
		require.NoError(t, err)
		assert.Equal(t, "NOTE-3", n.ID)

		notes, err := repo.ListNotes(ctx, "CASE-001")
		require.NoError(t, err)
		assert.Len(t, notes, 2)

		all, err := repo.ListNotes(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		d, err := repo.AddDecision(ctx, &core.DecisionLogEntry{CaseID: "CASE-002", Decision: "Escalate", Reason: "HR", PerformedBy: "a@b.c"})
		require.NoError(t, err)
		assert.Equal(t, "DEC-3", d.ID)

		decisions, err := repo.ListDecisions(ctx, "CASE-002")
		require.NoError(t, err)
		require.Len(t, decisions, 1)
		assert.Equal(t, "Escalate", decisions[0].Decision)
	})
}

func TestRepository_Stats(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		s, err := repo.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1284733), s.TotalLogsIngested)
		assert.Equal(t, 0.65, s.InvestigationProgress)

		s.InvestigationProgress = 0.8
		require.NoError(t, repo.UpdateStats(ctx, s))

		s, err = repo.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0.8, s.InvestigationProgress)
	})
}

func TestRepository_Users(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		u, err := repo.GetUserByEmail(ctx, "Investigator@Company.com")
		require.NoError(t, err)
		assert.Equal(t, core.RoleInvestigator, u.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("demo123")))

		byID, err := repo.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)

		_, err = repo.GetUserByEmail(ctx, "nobody@company.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
