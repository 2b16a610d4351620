package threat

import (
	"regexp"
	"strings"

	"forensics/core"
)

var techniqueIDPattern = regexp.MustCompile(`^T\d{4}(\.\d{3})?$`)

// MitreTechnique points at a technique page on attack.mitre.org
type MitreTechnique struct {
	ID  string `json:"id" example:"T1566.002"`
	URL string `json:"url" example:"https://attack.mitre.org/techniques/T1566/002"`
}

// GetMitreInfo resolves a technique id to its reference page. No network call is made.
func (s *Service) GetMitreInfo(techniqueID string) (*MitreTechnique, error) {
	id := strings.ToUpper(strings.TrimSpace(techniqueID))
	if !techniqueIDPattern.MatchString(id) {
		return nil, core.NewValidationError("Invalid MITRE ATT&CK technique ID: %s", techniqueID)
	}
	return &MitreTechnique{
		ID:  id,
		URL: "https://attack.mitre.org/techniques/" + strings.ReplaceAll(id, ".", "/"),
	}, nil
}
