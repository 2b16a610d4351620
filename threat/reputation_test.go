package threat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateReputation(t *testing.T) {
	tests := []struct {
		name      string
		sources   []SourceResult
		score     float64
		category  string
		malicious bool
	}{
		{
			name:     "no sources",
			sources:  nil,
			score:    0,
			category: CategoryClean,
		},
		{
			name: "virustotal only",
			sources: []SourceResult{
				{Provider: ProviderVirusTotal, Data: &VirusTotalData{Malicious: 8, Suspicious: 1, Harmless: 1, Total: 10}},
			},
			score:     0.8,
			category:  CategoryMalicious,
			malicious: true,
		},
		{
			name: "virustotal zero total does not divide by zero",
			sources: []SourceResult{
				{Provider: ProviderVirusTotal, Data: &VirusTotalData{Undetected: 70}},
			},
			score:    0,
			category: CategoryClean,
		},
		{
			name: "not found sources are skipped",
			sources: []SourceResult{
				{Provider: ProviderVirusTotal, Data: &VirusTotalData{NotFound: true}},
				{Provider: ProviderAbuseIPDB, Data: &AbuseIPDBData{AbuseConfidenceScore: 50}},
				{Provider: ProviderGreyNoise, Data: &GreyNoiseData{NotFound: true}},
			},
			score:    0.5,
			category: CategorySuspicious,
		},
		{
			name: "greynoise benign counts as zero",
			sources: []SourceResult{
				{Provider: ProviderAbuseIPDB, Data: &AbuseIPDBData{AbuseConfidenceScore: 30}},
				{Provider: ProviderGreyNoise, Data: &GreyNoiseData{Classification: "benign"}},
			},
			score:    0.15,
			category: CategoryPotentiallyMalicious,
		},
		{
			name: "greynoise unknown classification is excluded",
			sources: []SourceResult{
				{Provider: ProviderAbuseIPDB, Data: &AbuseIPDBData{AbuseConfidenceScore: 100}},
				{Provider: ProviderGreyNoise, Data: &GreyNoiseData{Classification: "unknown"}},
			},
			score:     1,
			category:  CategoryMalicious,
			malicious: true,
		},
		{
			name: "all three providers",
			sources: []SourceResult{
				{Provider: ProviderVirusTotal, Data: &VirusTotalData{Malicious: 1, Harmless: 3, Total: 4}},
				{Provider: ProviderAbuseIPDB, Data: &AbuseIPDBData{AbuseConfidenceScore: 65}},
				{Provider: ProviderGreyNoise, Data: &GreyNoiseData{Classification: "malicious"}},
			},
			score:     (0.25 + 0.65 + 1) / 3,
			category:  CategorySuspicious,
			malicious: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CalculateReputation(tt.sources)
			assert.InDelta(t, tt.score, v.Score, 1e-9)
			assert.Equal(t, tt.category, v.Category)
			assert.Equal(t, tt.malicious, v.IsMalicious)
		})
	}
}

func TestCategorizeBoundaries(t *testing.T) {
	assert.Equal(t, CategoryMalicious, categorize(0.7))
	assert.Equal(t, CategorySuspicious, categorize(0.6999))
	assert.Equal(t, CategorySuspicious, categorize(0.4))
	assert.Equal(t, CategoryPotentiallyMalicious, categorize(0.1))
	assert.Equal(t, CategoryClean, categorize(0.0999))
}
