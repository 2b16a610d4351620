package core

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// BreakerState is the state of a provider circuit breaker
type BreakerState string

const (
	// BreakerClosed lets calls through
	BreakerClosed BreakerState = "closed"
	// BreakerOpen rejects calls until the cool-down elapses
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen lets a limited number of probe calls through
	BreakerHalfOpen BreakerState = "half_open"
)

var (
	// ErrBreakerOpen is returned by Allow while the breaker is open
	ErrBreakerOpen = errors.New("circuit breaker is open")
	// ErrBreakerProbeLimit is returned when all half-open probe slots are taken
	ErrBreakerProbeLimit = errors.New("circuit breaker probe limit reached")
)

// BreakerConfig configures a CircuitBreaker
type BreakerConfig struct {
	MaxFailures uint32        // consecutive failures before opening
	CoolDown    time.Duration // time spent open before probing
	MaxProbes   uint32        // concurrent calls allowed while half-open
}

// Validate checks the breaker configuration
func (c BreakerConfig) Validate() error {
	if c.MaxFailures == 0 {
		return errors.New("MaxFailures must be greater than 0")
	}
	if c.CoolDown <= 0 {
		return errors.New("CoolDown must be greater than 0")
	}
	if c.MaxProbes == 0 {
		return errors.New("MaxProbes must be greater than 0")
	}
	return nil
}

// DefaultBreakerConfig opens after 5 failures and probes again after a minute
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		CoolDown:    60 * time.Second,
		MaxProbes:   1,
	}
}

// CircuitBreaker stops calling an upstream provider that keeps failing.
// It is safe for concurrent use.
type CircuitBreaker struct {
	name     string
	cfg      BreakerConfig
	mu       sync.Mutex
	state    BreakerState
	failures uint32
	openedAt time.Time
	probes   uint32
	now      func() time.Time
}

// NewCircuitBreaker creates a closed breaker for the named provider
func NewCircuitBreaker(name string, cfg BreakerConfig) (*CircuitBreaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit breaker config for %s: %w", name, err)
	}
	return &CircuitBreaker{name: name, cfg: cfg, state: BreakerClosed, now: time.Now}, nil
}

// MustNewCircuitBreaker is NewCircuitBreaker for configs known to be valid
func MustNewCircuitBreaker(name string, cfg BreakerConfig) *CircuitBreaker {
	cb, err := NewCircuitBreaker(name, cfg)
	if err != nil {
		panic(err)
	}
	return cb
}

// Name returns the provider name the breaker guards
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Allow reports whether a call may proceed
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.CoolDown {
			return ErrBreakerOpen
		}
		cb.state = BreakerHalfOpen
		cb.probes = 1
		return nil
	case BreakerHalfOpen:
		if cb.probes >= cb.cfg.MaxProbes {
			return ErrBreakerProbeLimit
		}
		cb.probes++
		return nil
	default:
		return nil
	}
}

// RecordSuccess closes the breaker and clears the failure count
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = BreakerClosed
	cb.failures = 0
	cb.probes = 0
}

// RecordFailure counts a failure and opens the breaker when the limit is hit.
// A failed probe reopens it immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.state == BreakerHalfOpen || cb.failures >= cb.cfg.MaxFailures {
		cb.state = BreakerOpen
		cb.openedAt = cb.now()
		cb.probes = 0
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker closed
func (cb *CircuitBreaker) Reset() {
	cb.RecordSuccess()
}
