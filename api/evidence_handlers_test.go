package api

import (
	"context"
	"net/http"
	"testing"

	"forensics/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRawEvidence(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, executiveEmail)

	rec := env.do(t, http.MethodGet, "/api/evidence/raw", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var all []core.RawEvidence
	decode(t, rec, &all)
	assert.Len(t, all, 8)

	rec = env.do(t, http.MethodGet, "/api/evidence/raw?caseId=CASE-001", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var scoped []core.RawEvidence
	decode(t, rec, &scoped)
	assert.Len(t, scoped, 6)
	for _, e := range scoped {
		assert.Equal(t, "CASE-001", e.CaseID)
	}

	rec = env.do(t, http.MethodGet, "/api/evidence/raw?caseId=CASE-404", token, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetFilteredArtifacts_Threshold(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, executiveEmail)

	tests := []struct {
		query string
		count int
	}{
		{"", 7},
		{"?caseId=CASE-001", 6},
		{"?threshold=0.8", 5},
		{"?caseId=CASE-001&threshold=0.8", 4},
		{"?threshold=0.97", 1},
		{"?threshold=1", 0},
		{"?threshold=0", 7},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/evidence/filtered"+tt.query, token, nil)
			requireStatus(t, rec, http.StatusOK)

			var artifacts []core.FilteredArtifact
			decode(t, rec, &artifacts)
			assert.Len(t, artifacts, tt.count)
		})
	}
}

func TestGetFilteredArtifacts_InvalidThreshold(t *testing.T) {
	env := setupTestAPI(t)

	token := env.tokenFor(t, executiveEmail)

	for _, raw := range []string{"high", "NaN", "Inf", "-Inf", "1e400"} {
		t.Run(raw, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/evidence/filtered?threshold="+raw, token, nil)
			requireStatus(t, rec, http.StatusBadRequest)
			assert.Equal(t, "Invalid threshold: "+raw, errorBody(t, rec))
		})
	}
}

func TestToggleFalsePositive(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	rec := env.do(t, http.MethodPatch, "/api/evidence/EVT-006/false-positive", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var artifact core.FilteredArtifact
	decode(t, rec, &artifact)
	assert.True(t, artifact.IsFalsePositive)
	assert.False(t, artifact.ExcludedFromStory)

	rec = env.do(t, http.MethodPatch, "/api/evidence/EVT-006/false-positive", token, nil)
	requireStatus(t, rec, http.StatusOK)
	decode(t, rec, &artifact)
	assert.False(t, artifact.IsFalsePositive)

	entries, err := env.store.ListCustody(context.Background(), "EVT-006")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, core.CustodyActionMarkedFalsePositive, entries[0].Action)
	assert.Equal(t, core.CustodyActionClearedFalsePositive, entries[1].Action)
	assert.Equal(t, investigatorEmail, entries[0].PerformedBy)
}

func TestToggleExcludeFromStory(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, responderEmail)

	rec := env.do(t, http.MethodPatch, "/api/evidence/EVT-002/exclude-story", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var artifact core.FilteredArtifact
	decode(t, rec, &artifact)
	assert.True(t, artifact.ExcludedFromStory)
	assert.Equal(t, 0.94, artifact.ConfidenceScore)

	entries, err := env.store.ListCustody(context.Background(), "EVT-002")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.CustodyActionExcludedFromStory, entries[0].Action)
	assert.Equal(t, responderEmail, entries[0].PerformedBy)
}

func TestToggle_Errors(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodPatch, "/api/evidence/EVT-404/false-positive", env.tokenFor(t, investigatorEmail), nil)
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Artifact not found", errorBody(t, rec))

	rec = env.do(t, http.MethodPatch, "/api/evidence/EVT-001/exclude-story", env.tokenFor(t, auditorEmail), nil)
	requireStatus(t, rec, http.StatusForbidden)
}
