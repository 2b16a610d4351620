package threat

import (
	"time"
)

// IOCType is the kind of indicator being looked up
type IOCType string

const (
	IOCTypeIP     IOCType = "ip"
	IOCTypeDomain IOCType = "domain"
	IOCTypeHash   IOCType = "hash"
)

// Provider names as they appear in lookup results
const (
	ProviderVirusTotal = "VirusTotal"
	ProviderAbuseIPDB  = "AbuseIPDB"
	ProviderGreyNoise  = "GreyNoise"
)

// Reputation categories
const (
	CategoryMalicious            = "Malicious"
	CategorySuspicious           = "Suspicious"
	CategoryPotentiallyMalicious = "Potentially Malicious"
	CategoryClean                = "Clean"
)

// SourceResult is one provider's answer. Data is one of *VirusTotalData,
// *AbuseIPDBData or *GreyNoiseData.
type SourceResult struct {
	Provider string `json:"provider"`
	Data     any    `json:"data"`
}

// VirusTotalData summarizes VirusTotal's last analysis
type VirusTotalData struct {
	NotFound   bool `json:"notFound,omitempty"`
	Malicious  int  `json:"malicious"`
	Suspicious int  `json:"suspicious"`
	Harmless   int  `json:"harmless"`
	Undetected int  `json:"undetected"`
	// Total excludes undetected engines
	Total      int  `json:"total"`
	Reputation *int `json:"reputation,omitempty"`
}

// AbuseIPDBData is AbuseIPDB's report for an IP
type AbuseIPDBData struct {
	AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
	TotalReports         int    `json:"totalReports"`
	IsWhitelisted        bool   `json:"isWhitelisted"`
	IsTor                bool   `json:"isTor"`
	CountryCode          string `json:"countryCode,omitempty"`
}

// GreyNoiseData is GreyNoise's community classification for an IP
type GreyNoiseData struct {
	NotFound       bool   `json:"notFound,omitempty"`
	Noise          bool   `json:"noise"`
	RIOT           bool   `json:"riot"`
	Classification string `json:"classification,omitempty"`
	Name           string `json:"name,omitempty"`
	Link           string `json:"link,omitempty"`
}

// Reputation is the aggregated verdict for one indicator
type Reputation struct {
	Target      string         `json:"target"`
	Type        IOCType        `json:"type"`
	Sources     []SourceResult `json:"sources"`
	Score       float64        `json:"score"`
	Category    string         `json:"category"`
	IsMalicious bool           `json:"isMalicious"`
	CheckedAt   time.Time      `json:"checkedAt" swaggertype:"string"`
}
