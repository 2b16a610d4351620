package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}  "))
}

func TestParseClassification(t *testing.T) {
	c, err := parseClassification("```json\n{\"category\":\"Lateral Movement\",\"confidence\":0.82,\"mitreAttack\":[\"T1021.002\"],\"reasoning\":\"SMB logon from workstation\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Lateral Movement", c.Category)
	assert.Equal(t, 0.82, c.Confidence)
	assert.Equal(t, []string{"T1021.002"}, c.MitreAttack)
	assert.Equal(t, "SMB logon from workstation", c.Reasoning)
}

func TestParseClassification_Defaults(t *testing.T) {
	raw := `{"category":"Impact"}`
	c, err := parseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.Confidence)
	assert.Equal(t, []string{}, c.MitreAttack)
	assert.Equal(t, raw, c.Reasoning)
}

func TestParseClassification_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":            "The event looks malicious.",
		"unknown category":    `{"category":"Spam","confidence":0.4}`,
		"confidence too high": `{"category":"Malware","confidence":1.5}`,
		"confidence string":   `{"category":"Malware","confidence":"high"}`,
		"techniques not list": `{"category":"Malware","mitreAttack":"T1059"}`,
		"missing category":    `{"confidence":0.9}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseClassification(raw)
			assert.Error(t, err)
		})
	}
}

func TestFallbackClassification(t *testing.T) {
	c := fallbackClassification("free text")
	assert.Equal(t, CategoryUnknown, c.Category)
	assert.Equal(t, 0.5, c.Confidence)
	assert.NotNil(t, c.MitreAttack)
	assert.Equal(t, "free text", c.Reasoning)
}
