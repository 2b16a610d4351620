package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func artifact(id string, score float64) FilteredArtifact {
	return FilteredArtifact{
		RawEvidence: RawEvidence{
			ID:        id,
			CaseID:    "CASE-001",
			Timestamp: time.Now().UTC(),
			EventType: "process_creation",
			Source:    SourceEndpoint,
		},
		ConfidenceScore: score,
		RiskLevel:       RiskHigh,
	}
}

func TestFilteredArtifact_Validate(t *testing.T) {
	a := artifact("ART-1", 0.5)
	assert.NoError(t, a.Validate())

	a.ConfidenceScore = 1.01
	assert.Error(t, a.Validate())

	a.ConfidenceScore = -0.1
	assert.Error(t, a.Validate())

	a = artifact("ART-1", 0.5)
	a.RiskLevel = "medium"
	assert.Error(t, a.Validate())
}

func TestFilteredArtifact_MeetsThreshold(t *testing.T) {
	a := artifact("ART-1", 0.75)
	assert.True(t, a.MeetsThreshold(0))
	assert.True(t, a.MeetsThreshold(0.75))
	assert.False(t, a.MeetsThreshold(0.76))
	assert.False(t, a.MeetsThreshold(1))

	perfect := artifact("ART-2", 1)
	assert.True(t, perfect.MeetsThreshold(1))
}

func TestAttackStory_Validate(t *testing.T) {
	s := &AttackStory{
		ID:                StoryID("CASE-001"),
		CaseID:            "CASE-001",
		OverallConfidence: 0.8,
		Steps: []StoryStep{
			{ID: "s1", Phase: PhaseInitialAccess, Confidence: 0.9},
		},
	}
	assert.Equal(t, "STORY-CASE-001", s.ID)
	assert.NoError(t, s.Validate())

	s.Steps[0].Phase = "recon"
	assert.Error(t, s.Validate())

	s.Steps[0].Phase = PhasePersistence
	s.OverallConfidence = 2
	assert.Error(t, s.Validate())
}

func TestUser_Public(t *testing.T) {
	u := &User{ID: "U-1", Email: "a@b.c", Name: "A", Role: RoleExecutive, PasswordHash: "secret"}
	p := u.Public()
	assert.Equal(t, PublicUser{ID: "U-1", Email: "a@b.c", Name: "A", Role: RoleExecutive}, p)
}
