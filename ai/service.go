package ai

import (
	"context"
	"time"

	"forensics/core"
	"forensics/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Features are the switches that gate AI operations
type Features struct {
	AIAnalysis         bool `json:"aiAnalysis"`
	AutoClassification bool `json:"autoClassification"`
}

// Analysis is a free-text assessment of one event
type Analysis struct {
	Analysis  string    `json:"analysis"`
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	Tokens    int       `json:"tokens,omitempty"`
	Timestamp time.Time `json:"timestamp" swaggertype:"string"`
}

// Story is a generated attack narrative
type Story struct {
	Story      string    `json:"story"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	EventCount int       `json:"eventCount"`
	Timestamp  time.Time `json:"timestamp" swaggertype:"string"`
}

// BatchResult is the outcome for one event of a batch. Exactly one of Data
// and Error is set.
type BatchResult struct {
	EventID interface{} `json:"eventId"`
	Success bool        `json:"success"`
	Data    *Analysis   `json:"data"`
	Error   *string     `json:"error"`
}

// Health describes which features and providers are active
type Health struct {
	Features  Features `json:"features"`
	Providers []string `json:"providers"`
	Primary   string   `json:"primary,omitempty"`
}

// ServiceOptions tunes the service
type ServiceOptions struct {
	// StoryMaxTokens caps story generation output; 0 uses the provider default
	StoryMaxTokens int
	// BatchConcurrency limits parallel calls in BatchAnalyze; 0 means unlimited
	BatchConcurrency int
}

// Service runs analysis operations against the primary provider
type Service struct {
	features   Features
	dispatcher *Dispatcher
	opts       ServiceOptions
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// NewService creates the AI service
func NewService(features Features, dispatcher *Dispatcher, opts ServiceOptions, logger *zap.SugaredLogger) *Service {
	return &Service{
		features:   features,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// complete sends prompt to the primary provider and records metrics
func (s *Service) complete(ctx context.Context, operation, prompt string, opts Options) (Provider, *Completion, error) {
	p, err := s.dispatcher.Primary()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	c, err := p.Complete(ctx, prompt, opts)
	metrics.AIRequestDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AIRequests.WithLabelValues(p.Name(), operation, "error").Inc()
		s.logger.Errorw("AI provider call failed",
			"provider", p.Name(),
			"operation", operation,
			"error", err)
		return nil, nil, err
	}
	metrics.AIRequests.WithLabelValues(p.Name(), operation, "success").Inc()
	return p, c, nil
}

// AnalyzeEvent asks the primary provider for a free-text assessment of e
func (s *Service) AnalyzeEvent(ctx context.Context, e Event) (*Analysis, error) {
	if !s.features.AIAnalysis {
		return nil, core.NewFeatureDisabledError("AI analysis feature is disabled")
	}

	p, c, err := s.complete(ctx, "analyze", buildEventAnalysisPrompt(e), Options{})
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Analysis:  c.Text,
		Model:     p.Model(),
		Provider:  p.Name(),
		Tokens:    c.Tokens,
		Timestamp: s.now(),
	}, nil
}

// ClassifyEvent asks for a JSON verdict. Output that does not match the
// classification schema falls back to an Unknown verdict instead of failing.
func (s *Service) ClassifyEvent(ctx context.Context, e Event) (*Classification, error) {
	if !s.features.AutoClassification {
		return nil, core.NewFeatureDisabledError("Auto classification feature is disabled")
	}

	_, c, err := s.complete(ctx, "classify", buildClassificationPrompt(e), Options{})
	if err != nil {
		return nil, err
	}

	cls, err := parseClassification(c.Text)
	if err != nil {
		s.logger.Warnw("Failed to parse AI classification response", "error", err)
		return fallbackClassification(c.Text), nil
	}
	return cls, nil
}

// GenerateStory asks for a chronological attack narrative covering events
func (s *Service) GenerateStory(ctx context.Context, events []Event) (*Story, error) {
	p, c, err := s.complete(ctx, "story", buildStoryPrompt(events), Options{MaxTokens: s.opts.StoryMaxTokens})
	if err != nil {
		return nil, err
	}
	return &Story{
		Story:      c.Text,
		Model:      p.Model(),
		Provider:   p.Name(),
		EventCount: len(events),
		Timestamp:  s.now(),
	}, nil
}

// BatchAnalyze analyzes every event concurrently. Results keep input order
// and one event failing never fails the batch.
func (s *Service) BatchAnalyze(ctx context.Context, events []Event) []BatchResult {
	results := make([]BatchResult, len(events))

	var g errgroup.Group
	if s.opts.BatchConcurrency > 0 {
		g.SetLimit(s.opts.BatchConcurrency)
	}
	for i, e := range events {
		g.Go(func() error {
			results[i].EventID = e.ID()
			analysis, err := s.AnalyzeEvent(ctx, e)
			if err != nil {
				msg := err.Error()
				results[i].Error = &msg
				return nil
			}
			results[i].Success = true
			results[i].Data = analysis
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Health reports the feature switches and configured providers
func (s *Service) Health() Health {
	h := Health{Features: s.features, Providers: s.dispatcher.Names()}
	if p, err := s.dispatcher.Primary(); err == nil {
		h.Primary = p.Name()
	}
	return h
}
