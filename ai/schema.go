package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CategoryUnknown is used whenever a classification cannot be trusted
const CategoryUnknown = "Unknown"

// Categories a classification may report
var Categories = []string{
	"Malware",
	"Intrusion",
	"Data Exfiltration",
	"Reconnaissance",
	"Privilege Escalation",
	"Persistence",
	"Defense Evasion",
	"Lateral Movement",
	"Command and Control",
	"Impact",
	CategoryUnknown,
}

var classificationSchema = mustClassificationSchema()

func mustClassificationSchema() *gojsonschema.Schema {
	enum, _ := json.Marshal(Categories)
	doc := fmt.Sprintf(`{
  "type": "object",
  "required": ["category"],
  "properties": {
    "category": {"type": "string", "enum": %s},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "mitreAttack": {"type": "array", "items": {"type": "string"}},
    "reasoning": {"type": "string"}
  }
}`, enum)

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid classification schema: %v", err))
	}
	return schema
}

// Classification is the structured verdict for one event
type Classification struct {
	Category    string   `json:"category" example:"Privilege Escalation"`
	Confidence  float64  `json:"confidence" example:"0.85"`
	MitreAttack []string `json:"mitreAttack"`
	Reasoning   string   `json:"reasoning"`
}

// fallbackClassification is returned when the model output is unusable
func fallbackClassification(raw string) *Classification {
	return &Classification{
		Category:    CategoryUnknown,
		Confidence:  0.5,
		MitreAttack: []string{},
		Reasoning:   raw,
	}
}

// stripCodeFences removes a surrounding markdown code block, if any
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseClassification validates model output against the schema. Missing
// optional fields get defaults: confidence 0.5, no techniques, and the raw
// text as reasoning.
func parseClassification(raw string) (*Classification, error) {
	body := stripCodeFences(raw)

	result, err := classificationSchema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, fmt.Errorf("classification is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("classification failed schema validation: %v", result.Errors())
	}

	var parsed struct {
		Category    string   `json:"category"`
		Confidence  *float64 `json:"confidence"`
		MitreAttack []string `json:"mitreAttack"`
		Reasoning   string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode classification: %w", err)
	}

	c := &Classification{
		Category:    parsed.Category,
		Confidence:  0.5,
		MitreAttack: parsed.MitreAttack,
		Reasoning:   parsed.Reasoning,
	}
	if parsed.Confidence != nil {
		c.Confidence = *parsed.Confidence
	}
	if c.MitreAttack == nil {
		c.MitreAttack = []string{}
	}
	if c.Reasoning == "" {
		c.Reasoning = raw
	}
	return c, nil
}
