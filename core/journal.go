package core

import "time"

// InvestigatorNote is a free-form note attached to a case. Append-only.
type InvestigatorNote struct {
	ID        string    `json:"id" yaml:"id" example:"NOTE-1"`
	CaseID    string    `json:"caseId" yaml:"caseId"`
	Author    string    `json:"author" yaml:"author"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" swaggertype:"string"`
}

// DecisionLogEntry records an investigative decision and why it was made. Append-only.
type DecisionLogEntry struct {
	ID          string    `json:"id" yaml:"id" example:"DEC-1"`
	CaseID      string    `json:"caseId" yaml:"caseId"`
	Decision    string    `json:"decision" yaml:"decision"`
	Reason      string    `json:"reason" yaml:"reason"`
	PerformedBy string    `json:"performedBy" yaml:"performedBy"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp" swaggertype:"string"`
}

// SystemStats holds dashboard counters. They are stored values, not derived
// from the other collections.
type SystemStats struct {
	TotalLogsIngested          int64   `json:"totalLogsIngested" yaml:"totalLogsIngested"`
	LogsFilteredOut            int64   `json:"logsFilteredOut" yaml:"logsFilteredOut"`
	HighConfidenceArtifacts    int64   `json:"highConfidenceArtifacts" yaml:"highConfidenceArtifacts"`
	CurrentConfidenceThreshold float64 `json:"currentConfidenceThreshold" yaml:"currentConfidenceThreshold"`
	InvestigationProgress      float64 `json:"investigationProgress" yaml:"investigationProgress"`
}
