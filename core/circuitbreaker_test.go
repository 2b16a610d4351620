package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T, cfg BreakerConfig) (*CircuitBreaker, *time.Time) {
	t.Helper()
	cb, err := NewCircuitBreaker("VirusTotal", cfg)
	require.NoError(t, err)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(t, BreakerConfig{MaxFailures: 3, CoolDown: time.Minute, MaxProbes: 1})

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Allow())
		cb.RecordFailure()
	}
	assert.Equal(t, BreakerClosed, cb.State())

	require.NoError(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, BreakerOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrBreakerOpen)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(t, BreakerConfig{MaxFailures: 1, CoolDown: time.Minute, MaxProbes: 1})

	cb.RecordFailure()
	require.Equal(t, BreakerOpen, cb.State())

	*clock = clock.Add(2 * time.Minute)
	require.NoError(t, cb.Allow())
	assert.Equal(t, BreakerHalfOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrBreakerProbeLimit)

	cb.RecordSuccess()
	assert.Equal(t, BreakerClosed, cb.State())
	assert.NoError(t, cb.Allow())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, clock := newTestBreaker(t, BreakerConfig{MaxFailures: 2, CoolDown: time.Minute, MaxProbes: 1})

	cb.RecordFailure()
	cb.RecordFailure()
	*clock = clock.Add(61 * time.Second)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, BreakerOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrBreakerOpen)
}

func TestCircuitBreaker_ConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  BreakerConfig
	}{
		{"zero failures", BreakerConfig{MaxFailures: 0, CoolDown: time.Second, MaxProbes: 1}},
		{"zero cool-down", BreakerConfig{MaxFailures: 1, CoolDown: 0, MaxProbes: 1}},
		{"zero probes", BreakerConfig{MaxFailures: 1, CoolDown: time.Second, MaxProbes: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCircuitBreaker("x", tt.cfg)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, DefaultBreakerConfig().Validate())
	assert.Panics(t, func() { MustNewCircuitBreaker("x", BreakerConfig{}) })
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := MustNewCircuitBreaker("AbuseIPDB", BreakerConfig{MaxFailures: 1000, CoolDown: time.Minute, MaxProbes: 1})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cb.Allow()
			if i%2 == 0 {
				cb.RecordFailure()
			} else {
				cb.RecordSuccess()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, BreakerClosed, cb.State())
	assert.Equal(t, "AbuseIPDB", cb.Name())
}
