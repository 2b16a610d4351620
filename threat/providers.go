package threat

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"forensics/core"
)

// Provider answers reputation queries for the indicator types it supports
type Provider interface {
	Name() string
	Supports(t IOCType) bool
	// Lookup returns the provider-specific result for value
	Lookup(ctx context.Context, t IOCType, value string) (any, error)
}

// newHTTPClient returns a client enforcing TLS 1.2+
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

// baseProvider holds what every provider needs: a key, an endpoint, an HTTP
// client and a circuit breaker.
type baseProvider struct {
	name           string
	apiKey         string
	baseURL        string
	client         *http.Client
	circuitBreaker *core.CircuitBreaker
}

func newBaseProvider(name, apiKey, baseURL string, timeout time.Duration, breaker core.BreakerConfig) baseProvider {
	return baseProvider{
		name:           name,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         newHTTPClient(timeout),
		circuitBreaker: core.MustNewCircuitBreaker(name, breaker),
	}
}

func (p *baseProvider) Name() string {
	return p.name
}

// fetch performs req and decodes a 200 body into dest. A 404 reports
// notFound=true when allowNotFound is set. Every other outcome is recorded on
// the circuit breaker.
func (p *baseProvider) fetch(req *http.Request, dest any, allowNotFound bool) (notFound bool, err error) {
	if err := p.circuitBreaker.Allow(); err != nil {
		return false, core.NewProviderError(p.name, fmt.Sprintf("%s unavailable", p.name), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.circuitBreaker.RecordFailure()
		return false, core.NewProviderError(p.name, fmt.Sprintf("failed to query %s", p.name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && allowNotFound {
		p.circuitBreaker.RecordSuccess()
		return true, nil
	}
	if resp.StatusCode != http.StatusOK {
		p.circuitBreaker.RecordFailure()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, core.NewProviderError(p.name,
			fmt.Sprintf("%s returned status %d", p.name, resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		p.circuitBreaker.RecordFailure()
		return false, core.NewProviderError(p.name, fmt.Sprintf("failed to decode %s response", p.name), err)
	}
	p.circuitBreaker.RecordSuccess()
	return false, nil
}

// VirusTotalProvider queries the VirusTotal v3 API
type VirusTotalProvider struct {
	baseProvider
}

// NewVirusTotalProvider creates a VirusTotal provider
func NewVirusTotalProvider(apiKey, baseURL string, timeout time.Duration, breaker core.BreakerConfig) *VirusTotalProvider {
	return &VirusTotalProvider{newBaseProvider(ProviderVirusTotal, apiKey, baseURL, timeout, breaker)}
}

func (p *VirusTotalProvider) Supports(t IOCType) bool {
	return t == IOCTypeIP || t == IOCTypeHash || t == IOCTypeDomain
}

func (p *VirusTotalProvider) Lookup(ctx context.Context, t IOCType, value string) (any, error) {
	var resource string
	switch t {
	case IOCTypeIP:
		resource = "ip_addresses"
	case IOCTypeHash:
		resource = "files"
	case IOCTypeDomain:
		resource = "domains"
	default:
		return nil, fmt.Errorf("unsupported IOC type: %s", t)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", p.baseURL, resource, url.PathEscape(value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", p.apiKey)

	var vtResponse struct {
		Data struct {
			Attributes struct {
				LastAnalysisStats struct {
					Malicious  int `json:"malicious"`
					Suspicious int `json:"suspicious"`
					Harmless   int `json:"harmless"`
					Undetected int `json:"undetected"`
				} `json:"last_analysis_stats"`
				Reputation *int `json:"reputation"`
			} `json:"attributes"`
		} `json:"data"`
	}

	notFound, err := p.fetch(req, &vtResponse, true)
	if err != nil {
		return nil, err
	}
	if notFound {
		return &VirusTotalData{NotFound: true}, nil
	}

	stats := vtResponse.Data.Attributes.LastAnalysisStats
	return &VirusTotalData{
		Malicious:  stats.Malicious,
		Suspicious: stats.Suspicious,
		Harmless:   stats.Harmless,
		Undetected: stats.Undetected,
		Total:      stats.Malicious + stats.Suspicious + stats.Harmless,
		Reputation: vtResponse.Data.Attributes.Reputation,
	}, nil
}

// AbuseIPDBProvider queries the AbuseIPDB v2 check endpoint
type AbuseIPDBProvider struct {
	baseProvider
}

// NewAbuseIPDBProvider creates an AbuseIPDB provider
func NewAbuseIPDBProvider(apiKey, baseURL string, timeout time.Duration, breaker core.BreakerConfig) *AbuseIPDBProvider {
	return &AbuseIPDBProvider{newBaseProvider(ProviderAbuseIPDB, apiKey, baseURL, timeout, breaker)}
}

func (p *AbuseIPDBProvider) Supports(t IOCType) bool {
	return t == IOCTypeIP
}

func (p *AbuseIPDBProvider) Lookup(ctx context.Context, t IOCType, value string) (any, error) {
	if t != IOCTypeIP {
		return nil, fmt.Errorf("unsupported IOC type: %s", t)
	}

	params := url.Values{}
	params.Set("ipAddress", value)
	params.Set("maxAgeInDays", "90")
	params.Set("verbose", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/check?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	var abuseResponse struct {
		Data struct {
			AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
			TotalReports         int    `json:"totalReports"`
			IsWhitelisted        bool   `json:"isWhitelisted"`
			IsTor                bool   `json:"isTor"`
			CountryCode          string `json:"countryCode"`
		} `json:"data"`
	}

	if _, err := p.fetch(req, &abuseResponse, false); err != nil {
		return nil, err
	}

	d := abuseResponse.Data
	return &AbuseIPDBData{
		AbuseConfidenceScore: d.AbuseConfidenceScore,
		TotalReports:         d.TotalReports,
		IsWhitelisted:        d.IsWhitelisted,
		IsTor:                d.IsTor,
		CountryCode:          d.CountryCode,
	}, nil
}

// GreyNoiseProvider queries the GreyNoise community API
type GreyNoiseProvider struct {
	baseProvider
}

// NewGreyNoiseProvider creates a GreyNoise provider
func NewGreyNoiseProvider(apiKey, baseURL string, timeout time.Duration, breaker core.BreakerConfig) *GreyNoiseProvider {
	return &GreyNoiseProvider{newBaseProvider(ProviderGreyNoise, apiKey, baseURL, timeout, breaker)}
}

func (p *GreyNoiseProvider) Supports(t IOCType) bool {
	return t == IOCTypeIP
}

func (p *GreyNoiseProvider) Lookup(ctx context.Context, t IOCType, value string) (any, error) {
	if t != IOCTypeIP {
		return nil, fmt.Errorf("unsupported IOC type: %s", t)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/community/"+url.PathEscape(value), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("key", p.apiKey)

	var gnResponse struct {
		Noise          bool   `json:"noise"`
		RIOT           bool   `json:"riot"`
		Classification string `json:"classification"`
		Name           string `json:"name"`
		Link           string `json:"link"`
	}

	notFound, err := p.fetch(req, &gnResponse, true)
	if err != nil {
		return nil, err
	}
	if notFound {
		return &GreyNoiseData{NotFound: true}, nil
	}
	return &GreyNoiseData{
		Noise:          gnResponse.Noise,
		RIOT:           gnResponse.RIOT,
		Classification: gnResponse.Classification,
		Name:           gnResponse.Name,
		Link:           gnResponse.Link,
	}, nil
}
