package threat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"forensics/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreaker() core.BreakerConfig {
	return core.BreakerConfig{MaxFailures: 2, CoolDown: time.Minute, MaxProbes: 1}
}

func TestVirusTotalProvider_Lookup(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-apikey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"attributes":{"reputation":-12,"last_analysis_stats":{"malicious":6,"suspicious":2,"harmless":2,"undetected":60}}}}`))
	}))
	defer server.Close()

	p := NewVirusTotalProvider("vt-key", server.URL, 5*time.Second, testBreaker())
	data, err := p.Lookup(context.Background(), IOCTypeHash, "44d88612fea8a8f36de82e1278abb02f")
	require.NoError(t, err)

	assert.Equal(t, "/files/44d88612fea8a8f36de82e1278abb02f", gotPath)
	assert.Equal(t, "vt-key", gotKey)

	vt, ok := data.(*VirusTotalData)
	require.True(t, ok)
	assert.Equal(t, 6, vt.Malicious)
	assert.Equal(t, 10, vt.Total)
	require.NotNil(t, vt.Reputation)
	assert.Equal(t, -12, *vt.Reputation)
}

func TestVirusTotalProvider_ResourcePaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p := NewVirusTotalProvider("k", server.URL+"/", time.Second, testBreaker())
	for _, tc := range []struct {
		t IOCType
		v string
	}{{IOCTypeIP, "203.0.113.7"}, {IOCTypeDomain, "example.net"}} {
		_, err := p.Lookup(context.Background(), tc.t, tc.v)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"/ip_addresses/203.0.113.7", "/domains/example.net"}, paths)
}

func TestVirusTotalProvider_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewVirusTotalProvider("k", server.URL, time.Second, testBreaker())
	data, err := p.Lookup(context.Background(), IOCTypeDomain, "unknown.example")
	require.NoError(t, err)
	assert.Equal(t, &VirusTotalData{NotFound: true}, data)
}

func TestAbuseIPDBProvider_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check", r.URL.Path)
		assert.Equal(t, "198.51.100.23", r.URL.Query().Get("ipAddress"))
		assert.Equal(t, "90", r.URL.Query().Get("maxAgeInDays"))
		assert.Equal(t, "abuse-key", r.Header.Get("Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":{"abuseConfidenceScore":87,"totalReports":412,"isWhitelisted":false,"isTor":true,"countryCode":"NL"}}`))
	}))
	defer server.Close()

	p := NewAbuseIPDBProvider("abuse-key", server.URL, time.Second, testBreaker())
	assert.False(t, p.Supports(IOCTypeHash))

	data, err := p.Lookup(context.Background(), IOCTypeIP, "198.51.100.23")
	require.NoError(t, err)
	assert.Equal(t, &AbuseIPDBData{AbuseConfidenceScore: 87, TotalReports: 412, IsTor: true, CountryCode: "NL"}, data)
}

func TestGreyNoiseProvider_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/community/192.0.2.1", r.URL.Path)
		assert.Equal(t, "gn-key", r.Header.Get("key"))
		_, _ = w.Write([]byte(`{"noise":true,"riot":false,"classification":"malicious","name":"unknown","link":"https://viz.greynoise.io/ip/192.0.2.1"}`))
	}))
	defer server.Close()

	p := NewGreyNoiseProvider("gn-key", server.URL, time.Second, testBreaker())
	data, err := p.Lookup(context.Background(), IOCTypeIP, "192.0.2.1")
	require.NoError(t, err)

	gn := data.(*GreyNoiseData)
	assert.True(t, gn.Noise)
	assert.Equal(t, "malicious", gn.Classification)
}

func TestProvider_ErrorStatusIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer server.Close()

	p := NewAbuseIPDBProvider("k", server.URL, time.Second, testBreaker())
	_, err := p.Lookup(context.Background(), IOCTypeIP, "192.0.2.1")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindProvider))
	assert.Contains(t, err.Error(), "AbuseIPDB returned status 429")
}

func TestProvider_CircuitBreakerOpens(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewGreyNoiseProvider("k", server.URL, time.Second, testBreaker())
	for i := 0; i < 2; i++ {
		_, err := p.Lookup(context.Background(), IOCTypeIP, "192.0.2.1")
		require.Error(t, err)
	}
	assert.Equal(t, core.BreakerOpen, p.circuitBreaker.State())

	_, err := p.Lookup(context.Background(), IOCTypeIP, "192.0.2.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBreakerOpen)
	assert.Equal(t, 2, calls)
}
