package core

import (
	"fmt"
	"strings"
	"time"
)

// Severity of a case
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// CaseStatus represents the lifecycle state of a case
type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "open"
	CaseStatusInProgress CaseStatus = "in-progress"
	CaseStatusClosed     CaseStatus = "closed"
)

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusInProgress, CaseStatusClosed:
		return true
	}
	return false
}

// IncidentType classifies what kind of incident a case tracks
type IncidentType string

const (
	IncidentRansomware       IncidentType = "ransomware"
	IncidentInsiderThreat    IncidentType = "insider-threat"
	IncidentUSBBreach        IncidentType = "usb-breach"
	IncidentDataExfiltration IncidentType = "data-exfiltration"
	IncidentPhishing         IncidentType = "phishing"
)

// IsValid checks if the incident type is valid
func (t IncidentType) IsValid() bool {
	switch t {
	case IncidentRansomware,
		IncidentInsiderThreat,
		IncidentUSBBreach,
		IncidentDataExfiltration,
		IncidentPhishing:
		return true
	}
	return false
}

// Case is a single forensic investigation
type Case struct {
	ID            string       `json:"id" yaml:"id" example:"CASE-001"`
	Title         string       `json:"title" yaml:"title" example:"Ransomware on finance file server"`
	IncidentType  IncidentType `json:"incidentType" yaml:"incidentType" example:"ransomware"`
	Severity      Severity     `json:"severity" yaml:"severity" example:"critical"`
	Status        CaseStatus   `json:"status" yaml:"status" example:"in-progress"`
	EvidenceCount int          `json:"evidenceCount" yaml:"evidenceCount"`
	CreatedAt     time.Time    `json:"createdAt" yaml:"createdAt" swaggertype:"string"`
	LastUpdated   time.Time    `json:"lastUpdated" yaml:"lastUpdated" swaggertype:"string"`
	AssignedTo    string       `json:"assignedTo" yaml:"assignedTo" example:"Sarah Chen"`
	Description   string       `json:"description" yaml:"description"`
}

// NewCase builds a case with UTC timestamps and an empty evidence count.
// The repository assigns the ID.
func NewCase(title string, incidentType IncidentType, severity Severity, assignedTo, description string) *Case {
	now := time.Now().UTC()
	return &Case{
		Title:        title,
		IncidentType: incidentType,
		Severity:     severity,
		Status:       CaseStatusOpen,
		CreatedAt:    now,
		LastUpdated:  now,
		AssignedTo:   assignedTo,
		Description:  description,
	}
}

// Validate checks the case fields
func (c *Case) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(c.Title) > 200 {
		return fmt.Errorf("title must be 200 characters or less")
	}
	if !c.IncidentType.IsValid() {
		return fmt.Errorf("invalid incident type: %s", c.IncidentType)
	}
	if !c.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", c.Severity)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	if strings.TrimSpace(c.AssignedTo) == "" {
		return fmt.Errorf("assignedTo is required")
	}
	return nil
}

// CaseUpdate is a shallow patch over a case. Nil fields are left untouched.
type CaseUpdate struct {
	Title        *string       `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	IncidentType *IncidentType `json:"incidentType,omitempty"`
	Severity     *Severity     `json:"severity,omitempty"`
	Status       *CaseStatus   `json:"status,omitempty"`
	AssignedTo   *string       `json:"assignedTo,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string       `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// Validate checks the enum fields that are present
func (u *CaseUpdate) Validate() error {
	if u.IncidentType != nil && !u.IncidentType.IsValid() {
		return fmt.Errorf("invalid incident type: %s", *u.IncidentType)
	}
	if u.Severity != nil && !u.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", *u.Severity)
	}
	if u.Status != nil && !u.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", *u.Status)
	}
	return nil
}

// Apply merges the update into c and refreshes LastUpdated.
// ID, CreatedAt and EvidenceCount never change through an update.
func (u *CaseUpdate) Apply(c *Case, now time.Time) {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.IncidentType != nil {
		c.IncidentType = *u.IncidentType
	}
	if u.Severity != nil {
		c.Severity = *u.Severity
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.AssignedTo != nil {
		c.AssignedTo = *u.AssignedTo
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	c.LastUpdated = now.UTC()
}
