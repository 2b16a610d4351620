package core

import (
	"fmt"
	"time"
)

// EvidenceSource identifies where a raw event was collected
type EvidenceSource string

const (
	SourceEndpoint EvidenceSource = "endpoint"
	SourceNetwork  EvidenceSource = "network"
	SourceUSB      EvidenceSource = "usb"
	SourceEmail    EvidenceSource = "email"
	SourceCloud    EvidenceSource = "cloud"
)

// IsValid checks if the evidence source is valid
func (s EvidenceSource) IsValid() bool {
	switch s {
	case SourceEndpoint, SourceNetwork, SourceUSB, SourceEmail, SourceCloud:
		return true
	}
	return false
}

// RiskLevel is the risk bucket assigned to a filtered artifact
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// RawEvidence is a collected log event. Immutable once stored.
type RawEvidence struct {
	ID         string         `json:"id" yaml:"id" example:"EVT-001"`
	CaseID     string         `json:"caseId" yaml:"caseId" example:"CASE-001"`
	Timestamp  time.Time      `json:"timestamp" yaml:"timestamp" swaggertype:"string"`
	User       string         `json:"user" yaml:"user"`
	Host       string         `json:"host" yaml:"host"`
	EventType  string         `json:"eventType" yaml:"eventType"`
	Source     EvidenceSource `json:"source" yaml:"source"`
	RawMessage string         `json:"rawMessage" yaml:"rawMessage"`
}

// FilteredArtifact is a raw event enriched with an AI confidence score.
// Only IsFalsePositive and ExcludedFromStory change after creation.
type FilteredArtifact struct {
	RawEvidence       `yaml:",inline"`
	ConfidenceScore   float64   `json:"confidenceScore" yaml:"confidenceScore" example:"0.92"`
	RiskLevel         RiskLevel `json:"riskLevel" yaml:"riskLevel"`
	LLMInference      string    `json:"llmInference" yaml:"llmInference"`
	MitreAttack       string    `json:"mitreAttack,omitempty" yaml:"mitreAttack,omitempty" example:"T1486"`
	IsFalsePositive   bool      `json:"isFalsePositive" yaml:"isFalsePositive"`
	ExcludedFromStory bool      `json:"excludedFromStory" yaml:"excludedFromStory"`
}

// Validate checks the artifact invariants
func (a *FilteredArtifact) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("artifact id is required")
	}
	if a.CaseID == "" {
		return fmt.Errorf("artifact %s: caseId is required", a.ID)
	}
	if a.ConfidenceScore < 0 || a.ConfidenceScore > 1 {
		return fmt.Errorf("artifact %s: confidenceScore %v out of range [0,1]", a.ID, a.ConfidenceScore)
	}
	if !a.RiskLevel.IsValid() {
		return fmt.Errorf("artifact %s: invalid risk level: %s", a.ID, a.RiskLevel)
	}
	return nil
}

// MeetsThreshold reports whether the artifact's confidence is at or above t
func (a *FilteredArtifact) MeetsThreshold(t float64) bool {
	return a.ConfidenceScore >= t
}

// FileStatus is the processing state of an uploaded evidence file
type FileStatus string

const (
	FileStatusParsed FileStatus = "parsed"
	FileStatusQueued FileStatus = "queued"
	FileStatusError  FileStatus = "error"
)

// IsValid checks if the file status is valid
func (s FileStatus) IsValid() bool {
	switch s {
	case FileStatusParsed, FileStatusQueued, FileStatusError:
		return true
	}
	return false
}

// EvidenceFile is an uploaded evidence blob and its content digest
type EvidenceFile struct {
	ID         string     `json:"id" yaml:"id" example:"FILE-001"`
	CaseID     string     `json:"caseId" yaml:"caseId"`
	FileName   string     `json:"fileName" yaml:"fileName"`
	FileSize   int64      `json:"fileSize" yaml:"fileSize"`
	FileType   string     `json:"fileType" yaml:"fileType"`
	Hash       string     `json:"hash" yaml:"hash"`
	UploadedBy string     `json:"uploadedBy" yaml:"uploadedBy"`
	UploadedAt time.Time  `json:"uploadedAt" yaml:"uploadedAt" swaggertype:"string"`
	Status     FileStatus `json:"status" yaml:"status"`
	// StoragePath is where the blob lives on disk; never exposed to clients.
	StoragePath string `json:"-" yaml:"-"`
}

// CustodyEntry is one record in an evidence item's chain of custody.
// Entries are append-only: once written they are never updated or removed.
type CustodyEntry struct {
	ID          string    `json:"id" yaml:"id" example:"COC-001"`
	EvidenceID  string    `json:"evidenceId" yaml:"evidenceId"`
	Action      string    `json:"action" yaml:"action"`
	PerformedBy string    `json:"performedBy" yaml:"performedBy"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp" swaggertype:"string"`
	Hash        string    `json:"hash" yaml:"hash"`
	Notes       string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Custody actions recorded automatically by the service
const (
	CustodyActionUploaded             = "Evidence uploaded"
	CustodyActionMarkedFalsePositive  = "Marked as false positive"
	CustodyActionClearedFalsePositive = "Unmarked as false positive"
	CustodyActionExcludedFromStory    = "Excluded from attack story"
	CustodyActionIncludedInStory      = "Included in attack story"
)
