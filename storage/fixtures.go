package storage

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"forensics/core"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// fixtureUser carries a plaintext demo password that is hashed on load
type fixtureUser struct {
	ID       string        `yaml:"id"`
	Email    string        `yaml:"email"`
	Name     string        `yaml:"name"`
	Role     core.UserRole `yaml:"role"`
	Password string        `yaml:"password"`
}

// Fixtures is the seed data set for a fresh store
type Fixtures struct {
	Users       []core.User             `yaml:"-"`
	RawUsers    []fixtureUser           `yaml:"users"`
	Cases       []core.Case             `yaml:"cases"`
	RawEvidence []core.RawEvidence      `yaml:"rawEvidence"`
	Artifacts   []core.FilteredArtifact `yaml:"artifacts"`
	Files       []core.EvidenceFile     `yaml:"files"`
	Custody     []core.CustodyEntry     `yaml:"custody"`
	Stories     []core.AttackStory      `yaml:"stories"`
	Notes       []core.InvestigatorNote `yaml:"notes"`
	Decisions   []core.DecisionLogEntry `yaml:"decisions"`
	Stats       core.SystemStats        `yaml:"stats"`
}

// LoadDefaultFixtures parses the embedded demo data set
func LoadDefaultFixtures(bcryptCost int) (*Fixtures, error) {
	return ParseFixtures(defaultFixtures, bcryptCost)
}

// ParseFixtures parses a YAML fixture document, hashes user passwords and
// validates every artifact and story.
func ParseFixtures(data []byte, bcryptCost int) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	for _, u := range fx.RawUsers {
		if !u.Role.IsValid() {
			return nil, fmt.Errorf("fixture user %s: invalid role %q", u.Email, u.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
		}
		fx.Users = append(fx.Users, core.User{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			Role:         u.Role,
			PasswordHash: string(hash),
		})
	}
	fx.RawUsers = nil

	for i := range fx.Cases {
		if err := fx.Cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("fixture case %s: %w", fx.Cases[i].ID, err)
		}
	}
	for i := range fx.Artifacts {
		if err := fx.Artifacts[i].Validate(); err != nil {
			return nil, fmt.Errorf("fixture %w", err)
		}
	}
	for i := range fx.Stories {
		if err := fx.Stories[i].Validate(); err != nil {
			return nil, fmt.Errorf("fixture story %s: %w", fx.Stories[i].ID, err)
		}
	}
	return &fx, nil
}

// Sequence prefixes for repository-assigned ids
const (
	seqCase     = "CASE-"
	seqNote     = "NOTE-"
	seqDecision = "DEC-"
	seqCustody  = "COC-"
	seqFile     = "FILE-"
)

// formatID renders the n-th id for a sequence
func formatID(prefix string, n int64) string {
	switch prefix {
	case seqCase, seqFile:
		return fmt.Sprintf("%s%03d", prefix, n)
	default:
		return prefix + strconv.FormatInt(n, 10)
	}
}

// maxSuffix returns the highest numeric suffix among ids carrying prefix
func maxSuffix(prefix string, ids []string) int64 {
	var max int64
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(id, prefix), 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

// seedSequences computes the starting counter for each sequence
func (fx *Fixtures) seedSequences() map[string]int64 {
	ids := func(n int, get func(i int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = get(i)
		}
		return out
	}
	return map[string]int64{
		seqCase:     maxSuffix(seqCase, ids(len(fx.Cases), func(i int) string { return fx.Cases[i].ID })),
		seqNote:     maxSuffix(seqNote, ids(len(fx.Notes), func(i int) string { return fx.Notes[i].ID })),
		seqDecision: maxSuffix(seqDecision, ids(len(fx.Decisions), func(i int) string { return fx.Decisions[i].ID })),
		seqCustody:  maxSuffix(seqCustody, ids(len(fx.Custody), func(i int) string { return fx.Custody[i].ID })),
		seqFile:     maxSuffix(seqFile, ids(len(fx.Files), func(i int) string { return fx.Files[i].ID })),
	}
}
