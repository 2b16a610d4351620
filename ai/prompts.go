package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is a loosely structured security event as posted by the dashboard
type Event map[string]interface{}

// ID returns the event's id field, or nil when absent
func (e Event) ID() interface{} {
	return e["id"]
}

// field renders a scalar field, or fallback when missing
func (e Event) field(key, fallback string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return fallback
		}
		return s
	}
	return fmt.Sprint(v)
}

func buildEventAnalysisPrompt(e Event) string {
	details := e["details"]
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsJSON, _ := json.MarshalIndent(details, "", "  ")

	return fmt.Sprintf(`Analyze the following security event and provide detailed insights:

Event Type: %s
Timestamp: %s
Source: %s
Details: %s

Provide:
1. What this event indicates
2. Potential security implications
3. Recommended actions
4. Related MITRE ATT&CK techniques (if applicable)`,
		e.field("type", "Unknown"),
		e.field("timestamp", "Unknown"),
		e.field("source", "Unknown"),
		detailsJSON)
}

func buildClassificationPrompt(e Event) string {
	eventJSON, _ := json.MarshalIndent(e, "", "  ")

	return fmt.Sprintf(`Classify the following security event and respond with ONLY a JSON object:

Event: %s

Respond with JSON in this exact format:
{
  "category": "one of: %s",
  "confidence": 0.0-1.0,
  "mitreAttack": ["T1566", "T1059"],
  "reasoning": "brief explanation"
}`, eventJSON, strings.Join(Categories, ", "))
}

func buildStoryPrompt(events []Event) string {
	lines := make([]string, len(events))
	for i, e := range events {
		desc := e.field("description", "")
		if desc == "" {
			raw, _ := json.Marshal(e)
			desc = string(raw)
		}
		lines[i] = fmt.Sprintf("%d. [%s] %s: %s", i+1, e.field("timestamp", ""), e.field("type", ""), desc)
	}

	return fmt.Sprintf(`Create a coherent narrative of the following security events as an attack story:

%s

Write a clear, chronological narrative that:
1. Explains what happened
2. Identifies the attack phases
3. Highlights key indicators
4. Suggests the attacker's objectives
5. Recommends remediation steps

Write in professional security analyst tone.`, strings.Join(lines, "\n"))
}
