package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"forensics/config"
	"forensics/core"
	"forensics/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// multipartUpload builds an evidence upload form
func multipartUpload(t *testing.T, caseID, fileName, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if caseID != "" {
		require.NoError(t, w.WriteField("caseId", caseID))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) doMultipart(t *testing.T, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/data/files", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetAttackStory(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, executiveEmail)

	rec := env.do(t, http.MethodGet, "/api/data/story/CASE-001", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var story core.AttackStory
	decode(t, rec, &story)
	assert.Equal(t, "STORY-CASE-001", story.ID)
	assert.Len(t, story.Steps, 4)

	rec = env.do(t, http.MethodGet, "/api/data/story/CASE-002", token, nil)
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Story not found for this case", errorBody(t, rec))
}

func TestSaveAttackStory_Replaces(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	body := map[string]interface{}{
		"id":                "ignored",
		"overallConfidence": 0.75,
		"steps": []map[string]interface{}{
			{
				"phase":       "initial-access",
				"timestamp":   "2024-03-13T09:40:00Z",
				"description": "USB mass storage device attached to RND-WS07",
				"evidenceIds": []string{"EVT-008"},
				"confidence":  0.8,
			},
		},
	}
	rec := env.do(t, http.MethodPut, "/api/data/story/CASE-002", token, body)
	requireStatus(t, rec, http.StatusOK)

	var saved core.AttackStory
	decode(t, rec, &saved)
	assert.Equal(t, "STORY-CASE-002", saved.ID)
	assert.Equal(t, "CASE-002", saved.CaseID)
	require.Len(t, saved.Steps, 1)
	assert.NotEmpty(t, saved.Steps[0].ID)
	assert.False(t, saved.GeneratedAt.IsZero())

	// A second save replaces the first wholesale
	body["steps"] = []map[string]interface{}{}
	rec = env.do(t, http.MethodPut, "/api/data/story/CASE-002", token, body)
	requireStatus(t, rec, http.StatusOK)

	stored, err := env.store.GetStory(context.Background(), "CASE-002")
	require.NoError(t, err)
	assert.Empty(t, stored.Steps)
}

func TestSaveAttackStory_Errors(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	rec := env.do(t, http.MethodPut, "/api/data/story/CASE-404", token, map[string]interface{}{"overallConfidence": 0.5})
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Case not found", errorBody(t, rec))

	rec = env.do(t, http.MethodPut, "/api/data/story/CASE-001", token, map[string]interface{}{"overallConfidence": 1.5})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodPut, "/api/data/story/CASE-001", token, map[string]interface{}{
		"overallConfidence": 0.5,
		"steps":             []map[string]interface{}{{"phase": "reconnaissance", "confidence": 0.5}},
	})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, errorBody(t, rec), "invalid phase")
}

func TestGetEvidenceFiles(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, executiveEmail)

	rec := env.do(t, http.MethodGet, "/api/data/files?caseId=CASE-001", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var files []core.EvidenceFile
	decode(t, rec, &files)
	assert.Len(t, files, 2)
	assert.NotContains(t, rec.Body.String(), "storagePath")
}

func TestUploadEvidenceFile(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, auditorEmail)
	content := "Mar 13 09:44:10 RND-WS07 kernel: usb 2-1: new high-speed USB device\n"

	body, contentType := multipartUpload(t, "CASE-002", "../../etc/usb trace.log", content)
	rec := env.doMultipart(t, token, body, contentType)
	requireStatus(t, rec, http.StatusCreated)

	var file core.EvidenceFile
	decode(t, rec, &file)
	sum := sha256.Sum256([]byte(content))
	assert.Equal(t, "FILE-004", file.ID)
	assert.Equal(t, hex.EncodeToString(sum[:]), file.Hash)
	assert.Equal(t, int64(len(content)), file.FileSize)
	assert.Equal(t, "log", file.FileType)
	assert.Equal(t, core.FileStatusQueued, file.Status)
	assert.Equal(t, auditorEmail, file.UploadedBy)

	ctx := context.Background()
	files, err := env.store.ListFiles(ctx, "CASE-002")
	require.NoError(t, err)
	require.Len(t, files, 2)
	stored := files[1]
	assert.NotContains(t, stored.StoragePath, "..")
	onDisk, err := os.ReadFile(stored.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, string(onDisk))

	entries, err := env.store.ListCustody(ctx, "FILE-004")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.CustodyActionUploaded, entries[0].Action)
	assert.Equal(t, file.Hash, entries[0].Hash)

	c, err := env.store.GetCase(ctx, "CASE-002")
	require.NoError(t, err)
	assert.Equal(t, 2, c.EvidenceCount)
}

func TestUploadEvidenceFile_RecordFailureRemovesBlob(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	dir := t.TempDir()
	blobs, err := storage.NewBlobStore(dir, env.api.config.Upload.MaxSize, nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	env.api.blobs = blobs
	env.api.repo = &failingRepo{MemoryStore: env.store, err: errors.New("disk I/O error")}

	body, contentType := multipartUpload(t, "CASE-001", "auth.log", "Failed password for root from 203.0.113.7\n")
	rec := env.doMultipart(t, token, body, contentType)
	requireStatus(t, rec, http.StatusInternalServerError)
	assert.Equal(t, "Failed to record evidence file", errorBody(t, rec))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadEvidenceFile_Rejections(t *testing.T) {
	env := setupTestAPI(t, func(cfg *config.Config) {
		cfg.Upload.MaxSize = 64
	})
	token := env.tokenFor(t, investigatorEmail)

	tests := []struct {
		name     string
		caseID   string
		fileName string
		content  string
		status   int
		message  string
	}{
		{"missing case", "", "a.log", "x", http.StatusBadRequest, "caseId is required"},
		{"missing file", "CASE-001", "", "", http.StatusBadRequest, "No file uploaded"},
		{"disallowed type", "CASE-001", "payload.exe", "MZ", http.StatusBadRequest, "File type not allowed: payload.exe"},
		{"unknown case", "CASE-404", "a.log", "x", http.StatusNotFound, "Case not found"},
		{"too large", "CASE-001", "big.log", strings.Repeat("A", 65), http.StatusRequestEntityTooLarge, "file exceeds maximum upload size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tt.caseID, tt.fileName, tt.content)
			rec := env.doMultipart(t, token, body, contentType)
			requireStatus(t, rec, tt.status)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}

	files, err := env.store.ListFiles(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, files, 3, "rejected uploads must not be recorded")
}

func TestUploadEvidenceFile_ExecutiveForbidden(t *testing.T) {
	env := setupTestAPI(t)

	body, contentType := multipartUpload(t, "CASE-001", "a.log", "x")
	rec := env.doMultipart(t, env.tokenFor(t, executiveEmail), body, contentType)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestChainOfCustody(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/api/data/chain-of-custody?evidenceId=FILE-001", env.tokenFor(t, executiveEmail), nil)
	requireStatus(t, rec, http.StatusOK)
	var entries []core.CustodyEntry
	decode(t, rec, &entries)
	assert.Len(t, entries, 2)

	rec = env.do(t, http.MethodPost, "/api/data/chain-of-custody", env.tokenFor(t, auditorEmail), AppendCustodyRequest{
		EvidenceID: "FILE-001",
		Action:     "Transferred to legal hold",
		Notes:      "Sealed bag 4471",
	})
	requireStatus(t, rec, http.StatusCreated)
	var entry core.CustodyEntry
	decode(t, rec, &entry)
	assert.Equal(t, "COC-5", entry.ID)
	assert.Equal(t, auditorEmail, entry.PerformedBy)
	assert.False(t, entry.Timestamp.IsZero())

	rec = env.do(t, http.MethodPost, "/api/data/chain-of-custody", env.tokenFor(t, auditorEmail), AppendCustodyRequest{EvidenceID: "FILE-001"})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "action is required", errorBody(t, rec))
}

func TestSystemStats(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/api/data/system-stats", env.tokenFor(t, executiveEmail), nil)
	requireStatus(t, rec, http.StatusOK)
	var stats core.SystemStats
	decode(t, rec, &stats)
	assert.Equal(t, int64(1284733), stats.TotalLogsIngested)
}

func TestNotes(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	rec := env.do(t, http.MethodPost, "/api/data/notes", token, AddNoteRequest{
		CaseID:  "CASE-001",
		Content: "svc_backup password last rotated in 2021.",
	})
	requireStatus(t, rec, http.StatusCreated)
	var note core.InvestigatorNote
	decode(t, rec, &note)
	assert.Equal(t, "NOTE-3", note.ID)
	assert.Equal(t, investigatorEmail, note.Author)

	rec = env.do(t, http.MethodGet, "/api/data/notes?caseId=CASE-001", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var notes []core.InvestigatorNote
	decode(t, rec, &notes)
	assert.Len(t, notes, 2)

	rec = env.do(t, http.MethodPost, "/api/data/notes", token, AddNoteRequest{CaseID: "CASE-001"})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "content is required", errorBody(t, rec))
}

func TestDecisions(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, responderEmail)

	rec := env.do(t, http.MethodPost, "/api/data/decisions", token, AddDecisionRequest{
		CaseID:      "CASE-002",
		Decision:    "Disable USB storage on R&D workstations",
		Reason:      "Confirmed exfiltration path",
		PerformedBy: "Marcus Webb",
	})
	requireStatus(t, rec, http.StatusCreated)
	var decision core.DecisionLogEntry
	decode(t, rec, &decision)
	assert.Equal(t, "DEC-3", decision.ID)
	assert.Equal(t, "Marcus Webb", decision.PerformedBy)

	rec = env.do(t, http.MethodGet, "/api/data/decisions?caseId=CASE-002", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var decisions []core.DecisionLogEntry
	decode(t, rec, &decisions)
	assert.Len(t, decisions, 1)

	rec = env.do(t, http.MethodPost, "/api/data/decisions", token, map[string]string{"caseId": "CASE-002"})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "decision is required; reason is required", errorBody(t, rec))
}
