package core

import (
	"fmt"
	"time"
)

// AttackPhase is a stage of the attack lifecycle
type AttackPhase string

const (
	PhaseInitialAccess       AttackPhase = "initial-access"
	PhasePrivilegeEscalation AttackPhase = "privilege-escalation"
	PhaseLateralMovement     AttackPhase = "lateral-movement"
	PhaseDataExfiltration    AttackPhase = "data-exfiltration"
	PhasePersistence         AttackPhase = "persistence"
)

// IsValid checks if the attack phase is valid
func (p AttackPhase) IsValid() bool {
	switch p {
	case PhaseInitialAccess,
		PhasePrivilegeEscalation,
		PhaseLateralMovement,
		PhaseDataExfiltration,
		PhasePersistence:
		return true
	}
	return false
}

// StoryStep is one phase-tagged step of an attack story
type StoryStep struct {
	ID          string      `json:"id" yaml:"id"`
	Phase       AttackPhase `json:"phase" yaml:"phase"`
	Timestamp   time.Time   `json:"timestamp" yaml:"timestamp" swaggertype:"string"`
	Description string      `json:"description" yaml:"description"`
	EvidenceIDs []string    `json:"evidenceIds" yaml:"evidenceIds"`
	Confidence  float64     `json:"confidence" yaml:"confidence"`
}

// AttackStory is the reconstructed narrative for a case. A case has at most
// one story and regeneration replaces it wholesale.
type AttackStory struct {
	ID                string      `json:"id" yaml:"id"`
	CaseID            string      `json:"caseId" yaml:"caseId"`
	OverallConfidence float64     `json:"overallConfidence" yaml:"overallConfidence"`
	Steps             []StoryStep `json:"steps" yaml:"steps"`
	GeneratedAt       time.Time   `json:"generatedAt" yaml:"generatedAt" swaggertype:"string"`
}

// StoryID returns the story id for a case
func StoryID(caseID string) string {
	return "STORY-" + caseID
}

// Validate checks confidences and phases
func (s *AttackStory) Validate() error {
	if s.CaseID == "" {
		return fmt.Errorf("caseId is required")
	}
	if s.OverallConfidence < 0 || s.OverallConfidence > 1 {
		return fmt.Errorf("overallConfidence %v out of range [0,1]", s.OverallConfidence)
	}
	for i, step := range s.Steps {
		if !step.Phase.IsValid() {
			return fmt.Errorf("step %d: invalid phase: %s", i, step.Phase)
		}
		if step.Confidence < 0 || step.Confidence > 1 {
			return fmt.Errorf("step %d: confidence %v out of range [0,1]", i, step.Confidence)
		}
	}
	return nil
}
