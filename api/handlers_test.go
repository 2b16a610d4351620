package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"forensics/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCases(t *testing.T) {
	env := setupTestAPI(t)

	rec := env.do(t, http.MethodGet, "/api/cases", env.tokenFor(t, executiveEmail), nil)
	requireStatus(t, rec, http.StatusOK)

	var cases []core.Case
	decode(t, rec, &cases)
	require.Len(t, cases, 3)
	assert.Equal(t, "CASE-001", cases[0].ID)
}

func TestGetCase(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, executiveEmail)

	rec := env.do(t, http.MethodGet, "/api/cases/CASE-002", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var c core.Case
	decode(t, rec, &c)
	assert.Equal(t, core.IncidentUSBBreach, c.IncidentType)

	rec = env.do(t, http.MethodGet, "/api/cases/CASE-404", token, nil)
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Case not found", errorBody(t, rec))
}

func TestCreateCase(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, responderEmail)

	rec := env.do(t, http.MethodPost, "/api/cases", token, CreateCaseRequest{
		Title:        "Insider copying payroll exports",
		IncidentType: core.IncidentInsiderThreat,
		Severity:     core.SeverityHigh,
		AssignedTo:   "Marcus Webb",
		Description:  "HR flagged repeated exports outside business hours.",
	})
	requireStatus(t, rec, http.StatusCreated)

	var created core.Case
	decode(t, rec, &created)
	assert.Equal(t, "CASE-004", created.ID)
	assert.Equal(t, core.CaseStatusOpen, created.Status)
	assert.Zero(t, created.EvidenceCount)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, 5*time.Second)

	rec = env.do(t, http.MethodGet, "/api/cases/CASE-004", token, nil)
	requireStatus(t, rec, http.StatusOK)
}

func TestCreateCase_Validation(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	tests := []struct {
		name    string
		req     CreateCaseRequest
		message string
	}{
		{
			name:    "missing title",
			req:     CreateCaseRequest{IncidentType: core.IncidentPhishing, Severity: core.SeverityLow, AssignedTo: "Sarah Chen"},
			message: "title is required",
		},
		{
			name:    "title too long",
			req:     CreateCaseRequest{Title: strings.Repeat("x", 201), IncidentType: core.IncidentPhishing, Severity: core.SeverityLow, AssignedTo: "Sarah Chen"},
			message: "title must be at most 200 characters",
		},
		{
			name:    "unknown incident type",
			req:     CreateCaseRequest{Title: "t", IncidentType: "alien-invasion", Severity: core.SeverityLow, AssignedTo: "Sarah Chen"},
			message: "invalid incident type: alien-invasion",
		},
		{
			name:    "unknown severity",
			req:     CreateCaseRequest{Title: "t", IncidentType: core.IncidentPhishing, Severity: "apocalyptic", AssignedTo: "Sarah Chen"},
			message: "invalid severity: apocalyptic",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/cases", token, tt.req)
			requireStatus(t, rec, http.StatusBadRequest)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}
}

func TestCreateCase_ReadOnlyRoles(t *testing.T) {
	env := setupTestAPI(t)
	req := CreateCaseRequest{Title: "t", IncidentType: core.IncidentPhishing, Severity: core.SeverityLow, AssignedTo: "a"}

	for _, email := range []string{auditorEmail, executiveEmail} {
		rec := env.do(t, http.MethodPost, "/api/cases", env.tokenFor(t, email), req)
		requireStatus(t, rec, http.StatusForbidden)
		assert.Equal(t, "Insufficient permissions", errorBody(t, rec))
	}
}

func TestUpdateCase(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	rec := env.do(t, http.MethodPut, "/api/cases/CASE-002", token, map[string]interface{}{
		"status":        "in-progress",
		"assignedTo":    "Sarah Chen",
		"id":            "CASE-999",
		"evidenceCount": 42,
	})
	requireStatus(t, rec, http.StatusOK)

	var updated core.Case
	decode(t, rec, &updated)
	assert.Equal(t, "CASE-002", updated.ID)
	assert.Equal(t, core.CaseStatusInProgress, updated.Status)
	assert.Equal(t, "Sarah Chen", updated.AssignedTo)
	assert.Equal(t, 1, updated.EvidenceCount)
	assert.Equal(t, "Unauthorized USB transfer from R&D workstation", updated.Title)
	assert.True(t, updated.LastUpdated.After(updated.CreatedAt))
}

func TestUpdateCase_Errors(t *testing.T) {
	env := setupTestAPI(t)
	token := env.tokenFor(t, investigatorEmail)

	rec := env.do(t, http.MethodPut, "/api/cases/CASE-404", token, map[string]string{"status": "closed"})
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Case not found", errorBody(t, rec))

	rec = env.do(t, http.MethodPut, "/api/cases/CASE-001", token, map[string]string{"status": "archived"})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "invalid status: archived", errorBody(t, rec))

	rec = env.do(t, http.MethodPut, "/api/cases/CASE-001", token, map[string]string{"title": ""})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodPut, "/api/cases/CASE-001", token, map[string]int{"title": 5})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, errorBody(t, rec), "Invalid type for field 'title'")
}
