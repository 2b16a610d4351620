package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCase(t *testing.T) {
	c := NewCase("USB exfiltration", IncidentUSBBreach, SeverityHigh, "Marcus Reed", "Thumb drive on HR laptop")

	assert.Empty(t, c.ID)
	assert.Equal(t, CaseStatusOpen, c.Status)
	assert.Equal(t, 0, c.EvidenceCount)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.Equal(t, c.CreatedAt, c.LastUpdated)
	assert.NoError(t, c.Validate())
}

func TestCase_Validate(t *testing.T) {
	valid := func() *Case {
		return NewCase("Phishing wave", IncidentPhishing, SeverityMedium, "Ana Ortiz", "")
	}

	tests := []struct {
		name   string
		mutate func(c *Case)
	}{
		{"empty title", func(c *Case) { c.Title = "  " }},
		{"bad incident type", func(c *Case) { c.IncidentType = "malware" }},
		{"bad severity", func(c *Case) { c.Severity = "urgent" }},
		{"bad status", func(c *Case) { c.Status = "in_progress" }},
		{"no assignee", func(c *Case) { c.AssignedTo = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestCaseUpdate_Apply(t *testing.T) {
	c := NewCase("Ransomware", IncidentRansomware, SeverityCritical, "Ana Ortiz", "initial")
	c.ID = "CASE-004"
	c.EvidenceCount = 12
	created := c.CreatedAt

	status := CaseStatusClosed
	desc := "contained"
	upd := &CaseUpdate{Status: &status, Description: &desc}
	require.NoError(t, upd.Validate())

	later := created.Add(time.Hour)
	upd.Apply(c, later)

	assert.Equal(t, CaseStatusClosed, c.Status)
	assert.Equal(t, "contained", c.Description)
	assert.Equal(t, "Ransomware", c.Title)
	assert.Equal(t, "CASE-004", c.ID)
	assert.Equal(t, 12, c.EvidenceCount)
	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, later.UTC(), c.LastUpdated)
}

func TestCaseUpdate_ValidateRejectsBadEnums(t *testing.T) {
	sev := Severity("severe")
	assert.Error(t, (&CaseUpdate{Severity: &sev}).Validate())

	st := CaseStatus("done")
	assert.Error(t, (&CaseUpdate{Status: &st}).Validate())

	it := IncidentType("apt")
	assert.Error(t, (&CaseUpdate{IncidentType: &it}).Validate())
}

func TestEnums(t *testing.T) {
	assert.True(t, RoleLegalAuditor.IsValid())
	assert.False(t, UserRole("admin").IsValid())
	assert.True(t, SourceUSB.IsValid())
	assert.False(t, EvidenceSource("disk").IsValid())
	assert.True(t, RiskCritical.IsValid())
	assert.False(t, RiskLevel("medium").IsValid())
	assert.True(t, FileStatusQueued.IsValid())
	assert.True(t, PhaseLateralMovement.IsValid())
	assert.False(t, AttackPhase("impact").IsValid())
}
