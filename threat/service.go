package threat

import (
	"context"
	"encoding/hex"
	"net"
	"regexp"
	"strings"
	"time"

	"forensics/config"
	"forensics/core"
	"forensics/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const cacheName = "reputation"

var domainPattern = regexp.MustCompile(`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// ServiceOptions tunes caching. A nil Redis disables the shared cache tier.
type ServiceOptions struct {
	CacheTTL  time.Duration
	CacheSize int
	Redis     *core.RedisCache
}

// Service aggregates reputation from the configured providers
type Service struct {
	enabled   bool
	providers []Provider
	cache     *expirable.LRU[string, *Reputation]
	redis     *core.RedisCache
	ttl       time.Duration
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewService creates the service. Providers are queried in slice order.
func NewService(enabled bool, providers []Provider, opts ServiceOptions, logger *zap.SugaredLogger) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1000
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Minute
	}
	return &Service{
		enabled:   enabled,
		providers: providers,
		cache:     expirable.NewLRU[string, *Reputation](opts.CacheSize, nil, opts.CacheTTL),
		redis:     opts.Redis,
		ttl:       opts.CacheTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProvidersFromConfig builds the providers that have an API key, in
// VirusTotal, AbuseIPDB, GreyNoise order.
func ProvidersFromConfig(cfg config.ThreatIntelConfig) []Provider {
	breaker := core.DefaultBreakerConfig()
	var providers []Provider
	if cfg.VirusTotal.APIKey != "" {
		providers = append(providers, NewVirusTotalProvider(cfg.VirusTotal.APIKey, cfg.VirusTotal.URL, cfg.Timeout, breaker))
	}
	if cfg.AbuseIPDB.APIKey != "" {
		providers = append(providers, NewAbuseIPDBProvider(cfg.AbuseIPDB.APIKey, cfg.AbuseIPDB.URL, cfg.Timeout, breaker))
	}
	if cfg.GreyNoise.APIKey != "" {
		providers = append(providers, NewGreyNoiseProvider(cfg.GreyNoise.APIKey, cfg.GreyNoise.URL, cfg.Timeout, breaker))
	}
	return providers
}

// Enabled reports whether the threat intelligence feature is on
func (s *Service) Enabled() bool {
	return s.enabled
}

// ProviderNames lists the configured providers in query order
func (s *Service) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// CheckIP looks up an IPv4 or IPv6 address
func (s *Service) CheckIP(ctx context.Context, ip string) (*Reputation, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if net.ParseIP(ip) == nil {
		return nil, core.NewValidationError("Invalid IP address")
	}
	return s.lookup(ctx, IOCTypeIP, ip)
}

// CheckHash looks up an MD5, SHA-1 or SHA-256 file hash
func (s *Service) CheckHash(ctx context.Context, hash string) (*Reputation, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if !ValidHash(hash) {
		return nil, core.NewValidationError("Invalid file hash")
	}
	return s.lookup(ctx, IOCTypeHash, strings.ToLower(hash))
}

// CheckDomain looks up a domain name
func (s *Service) CheckDomain(ctx context.Context, domain string) (*Reputation, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if len(domain) > 253 || !domainPattern.MatchString(domain) {
		return nil, core.NewValidationError("Invalid domain")
	}
	return s.lookup(ctx, IOCTypeDomain, domain)
}

// ValidHash reports whether h is a hex digest of MD5, SHA-1 or SHA-256 length
func ValidHash(h string) bool {
	switch len(h) {
	case 32, 40, 64:
	default:
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

func (s *Service) checkEnabled() error {
	if !s.enabled {
		return core.NewFeatureDisabledError("Threat intelligence feature is disabled")
	}
	return nil
}

// lookup serves from the LRU, then Redis, then queries every provider that
// supports t in order. Any provider error fails the whole lookup and nothing
// is cached.
func (s *Service) lookup(ctx context.Context, t IOCType, value string) (*Reputation, error) {
	key := core.ReputationCacheKey(string(t), value)

	if rep, ok := s.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues(cacheName).Inc()
		return rep, nil
	}
	metrics.CacheMisses.WithLabelValues(cacheName).Inc()

	if s.redis != nil {
		var cached Reputation
		found, err := s.redis.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warnw("Reputation cache read failed", "key", key, "error", err)
		} else if found {
			s.cache.Add(key, &cached)
			return &cached, nil
		}
	}

	rep := &Reputation{
		Target:    value,
		Type:      t,
		Sources:   []SourceResult{},
		CheckedAt: s.now(),
	}
	for _, p := range s.providers {
		if !p.Supports(t) {
			continue
		}
		data, err := p.Lookup(ctx, t, value)
		if err != nil {
			metrics.ThreatIntelProviderErrors.WithLabelValues(p.Name()).Inc()
			s.logger.Errorw("Threat intelligence lookup failed",
				"provider", p.Name(),
				"type", t,
				"value", value,
				"error", err)
			return nil, err
		}
		rep.Sources = append(rep.Sources, SourceResult{Provider: p.Name(), Data: data})
	}

	verdict := CalculateReputation(rep.Sources)
	rep.Score = verdict.Score
	rep.Category = verdict.Category
	rep.IsMalicious = verdict.IsMalicious

	metrics.ThreatIntelLookups.WithLabelValues(string(t), rep.Category).Inc()
	s.logger.Infow("Reputation lookup completed",
		"type", t,
		"value", value,
		"score", rep.Score,
		"category", rep.Category,
		"sources", len(rep.Sources))

	s.cache.Add(key, rep)
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, rep, s.ttl); err != nil {
			s.logger.Warnw("Reputation cache write failed", "key", key, "error", err)
		}
	}
	return rep, nil
}
