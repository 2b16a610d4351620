package api

import (
	"net/http"
	"slices"

	"forensics/ai"
	"forensics/core"
	"forensics/threat"

	"github.com/gorilla/mux"
)

// AnalyzeEventRequest is the body of POST /api/ml/analyze
type AnalyzeEventRequest struct {
	Event  ai.Event `json:"event" swaggertype:"object"`
	CaseID string   `json:"caseId,omitempty" example:"CASE-001"`
}

// ClassifyEventRequest is the body of POST /api/ml/classify
type ClassifyEventRequest struct {
	Event ai.Event `json:"event" swaggertype:"object"`
}

// EventsRequest is the body of the batch and story endpoints
type EventsRequest struct {
	Events []ai.Event `json:"events" swaggertype:"array,object"`
	CaseID string     `json:"caseId,omitempty" example:"CASE-001"`
}

// AnalysisResponse wraps a single event analysis
type AnalysisResponse struct {
	Success  bool         `json:"success"`
	Analysis *ai.Analysis `json:"analysis"`
}

// ClassificationResponse wraps an event classification
type ClassificationResponse struct {
	Success        bool               `json:"success"`
	Classification *ai.Classification `json:"classification"`
}

// BatchAnalysisResponse wraps per-event batch results in input order
type BatchAnalysisResponse struct {
	Success  bool             `json:"success"`
	Analyses []ai.BatchResult `json:"analyses"`
}

// StoryResponse wraps a generated attack narrative
type StoryResponse struct {
	Success bool      `json:"success"`
	Story   *ai.Story `json:"story"`
}

// ReputationResponse wraps a threat intelligence verdict
type ReputationResponse struct {
	Success    bool               `json:"success"`
	Reputation *threat.Reputation `json:"reputation"`
}

// MLProviders reports which LLM providers have credentials
type MLProviders struct {
	OpenAI    bool `json:"openai"`
	Anthropic bool `json:"anthropic"`
	Google    bool `json:"google"`
}

// ThreatIntelSources reports which reputation providers have credentials
type ThreatIntelSources struct {
	VirusTotal bool `json:"virustotal"`
	AbuseIPDB  bool `json:"abuseipdb"`
	GreyNoise  bool `json:"greynoise"`
}

// MLConfig is the feature and provider summary returned by /api/ml/health
type MLConfig struct {
	AIAnalysis         bool               `json:"aiAnalysis"`
	AutoClassification bool               `json:"autoClassification"`
	ThreatIntelligence bool               `json:"threatIntelligence"`
	Providers          MLProviders        `json:"providers"`
	ThreatIntelSources ThreatIntelSources `json:"threatIntelSources"`
	PrimaryProvider    string             `json:"primaryProvider,omitempty"`
}

// MLHealthResponse is the body of GET /api/ml/health
type MLHealthResponse struct {
	Success bool     `json:"success"`
	Status  string   `json:"status"`
	Config  MLConfig `json:"config"`
}

// analyzeEvent godoc
//
//	@Summary		Analyze event
//	@Description	Asks the primary LLM provider for a forensic assessment of one event
//	@Tags			ml
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			request	body		AnalyzeEventRequest	true	"Event"
//	@Success		200		{object}	AnalysisResponse
//	@Failure		400		{object}	mlErrorResponse	"Event data is required"
//	@Failure		502		{object}	mlErrorResponse	"Provider error"
//	@Failure		503		{object}	mlErrorResponse	"Feature disabled or no provider configured"
//	@Router			/api/ml/analyze [post]
func (a *API) analyzeEvent(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeEventRequest
	if err := a.decodeMLBody(w, r, &req, "Event analysis"); err != nil {
		return
	}
	if req.Event == nil {
		a.writeMLError(w, core.NewValidationError("Event data is required"), "Event analysis")
		return
	}

	analysis, err := a.ai.AnalyzeEvent(r.Context(), req.Event)
	if err != nil {
		a.writeMLError(w, err, "Event analysis")
		return
	}

	userID, _ := GetUserID(r.Context())
	a.logger.Infow("Event analyzed",
		"caseId", req.CaseID,
		"eventId", req.Event.ID(),
		"provider", analysis.Provider,
		"userId", userID)
	a.broadcast(EventAnalysisComplete, map[string]interface{}{
		"caseId":   req.CaseID,
		"eventId":  req.Event.ID(),
		"analysis": analysis,
	})

	a.respondJSON(w, AnalysisResponse{Success: true, Analysis: analysis}, http.StatusOK)
}

// classifyEvent godoc
//
//	@Summary		Classify event
//	@Description	Classifies an event into an incident category with MITRE ATT&CK techniques. Unparseable model output yields category Unknown.
//	@Tags			ml
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			request	body		ClassifyEventRequest	true	"Event"
//	@Success		200		{object}	ClassificationResponse
//	@Failure		400		{object}	mlErrorResponse	"Event data is required"
//	@Failure		503		{object}	mlErrorResponse	"Feature disabled or no provider configured"
//	@Router			/api/ml/classify [post]
func (a *API) classifyEvent(w http.ResponseWriter, r *http.Request) {
	var req ClassifyEventRequest
	if err := a.decodeMLBody(w, r, &req, "Event classification"); err != nil {
		return
	}
	if req.Event == nil {
		a.writeMLError(w, core.NewValidationError("Event data is required"), "Event classification")
		return
	}

	classification, err := a.ai.ClassifyEvent(r.Context(), req.Event)
	if err != nil {
		a.writeMLError(w, err, "Event classification")
		return
	}

	a.logger.Infow("Event classified",
		"eventId", req.Event.ID(),
		"category", classification.Category)

	a.respondJSON(w, ClassificationResponse{Success: true, Classification: classification}, http.StatusOK)
}

// batchAnalyzeEvents godoc
//
//	@Summary		Analyze events in batch
//	@Description	Analyzes every event concurrently. A failed event is reported in its slot and never fails the batch.
//	@Tags			ml
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			request	body		EventsRequest	true	"Events"
//	@Success		200		{object}	BatchAnalysisResponse
//	@Failure		400		{object}	mlErrorResponse	"Events array is required"
//	@Router			/api/ml/batch-analyze [post]
func (a *API) batchAnalyzeEvents(w http.ResponseWriter, r *http.Request) {
	var req EventsRequest
	if err := a.decodeMLBody(w, r, &req, "Batch analysis"); err != nil {
		return
	}
	if len(req.Events) == 0 {
		a.writeMLError(w, core.NewValidationError("Events array is required"), "Batch analysis")
		return
	}

	results := a.ai.BatchAnalyze(r.Context(), req.Events)

	successful := 0
	for i := range results {
		if results[i].Success {
			successful++
		}
		if results[i].Error != nil {
			msg := sanitizeErrorMessage(*results[i].Error)
			results[i].Error = &msg
		}
	}
	a.logger.Infow("Batch analysis completed",
		"total", len(results),
		"successful", successful)

	a.respondJSON(w, BatchAnalysisResponse{Success: true, Analyses: results}, http.StatusOK)
}

// generateStory godoc
//
//	@Summary		Generate attack story
//	@Description	Asks the primary LLM provider for a narrative reconstruction of the events
//	@Tags			ml
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			request	body		EventsRequest	true	"Events"
//	@Success		200		{object}	StoryResponse
//	@Failure		400		{object}	mlErrorResponse	"Events array is required"
//	@Failure		502		{object}	mlErrorResponse	"Provider error"
//	@Router			/api/ml/generate-story [post]
func (a *API) generateStory(w http.ResponseWriter, r *http.Request) {
	var req EventsRequest
	if err := a.decodeMLBody(w, r, &req, "Story generation"); err != nil {
		return
	}
	// Only a missing array is rejected; an empty one still reaches the provider
	if req.Events == nil {
		a.writeMLError(w, core.NewValidationError("Events array is required"), "Story generation")
		return
	}

	story, err := a.ai.GenerateStory(r.Context(), req.Events)
	if err != nil {
		a.writeMLError(w, err, "Story generation")
		return
	}

	a.logger.Infow("Attack story generated",
		"caseId", req.CaseID,
		"eventCount", story.EventCount,
		"provider", story.Provider)

	a.respondJSON(w, StoryResponse{Success: true, Story: story}, http.StatusOK)
}

// checkIPReputation godoc
//
//	@Summary		IP reputation
//	@Tags			ml
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			ip	path		string	true	"IPv4 or IPv6 address"	example(185.220.101.1)
//	@Success		200	{object}	ReputationResponse
//	@Failure		400	{object}	mlErrorResponse	"Invalid IP address"
//	@Failure		502	{object}	mlErrorResponse	"Provider error"
//	@Failure		503	{object}	mlErrorResponse	"Threat intelligence feature is disabled"
//	@Router			/api/ml/threat-intel/ip/{ip} [get]
func (a *API) checkIPReputation(w http.ResponseWriter, r *http.Request) {
	rep, err := a.intel.CheckIP(r.Context(), mux.Vars(r)["ip"])
	if err != nil {
		a.writeMLError(w, err, "IP reputation check")
		return
	}
	a.respondJSON(w, ReputationResponse{Success: true, Reputation: rep}, http.StatusOK)
}

// checkFileHash godoc
//
//	@Summary		File hash reputation
//	@Tags			ml
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			hash	path		string	true	"MD5, SHA-1 or SHA-256 hex digest"
//	@Success		200		{object}	ReputationResponse
//	@Failure		400		{object}	mlErrorResponse	"Invalid file hash"
//	@Failure		503		{object}	mlErrorResponse	"Threat intelligence feature is disabled"
//	@Router			/api/ml/threat-intel/hash/{hash} [get]
func (a *API) checkFileHash(w http.ResponseWriter, r *http.Request) {
	rep, err := a.intel.CheckHash(r.Context(), mux.Vars(r)["hash"])
	if err != nil {
		a.writeMLError(w, err, "File hash check")
		return
	}
	a.respondJSON(w, ReputationResponse{Success: true, Reputation: rep}, http.StatusOK)
}

// checkDomain godoc
//
//	@Summary		Domain reputation
//	@Tags			ml
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			domain	path		string	true	"Domain name"	example(example.com)
//	@Success		200		{object}	ReputationResponse
//	@Failure		400		{object}	mlErrorResponse	"Invalid domain"
//	@Failure		503		{object}	mlErrorResponse	"Threat intelligence feature is disabled"
//	@Router			/api/ml/threat-intel/domain/{domain} [get]
func (a *API) checkDomain(w http.ResponseWriter, r *http.Request) {
	rep, err := a.intel.CheckDomain(r.Context(), mux.Vars(r)["domain"])
	if err != nil {
		a.writeMLError(w, err, "Domain check")
		return
	}
	a.respondJSON(w, ReputationResponse{Success: true, Reputation: rep}, http.StatusOK)
}

// getMLHealth godoc
//
//	@Summary		ML service status
//	@Description	Reports which AI features are on and which providers have credentials
//	@Tags			ml
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	MLHealthResponse
//	@Router			/api/ml/health [get]
func (a *API) getMLHealth(w http.ResponseWriter, r *http.Request) {
	health := a.ai.Health()
	sources := a.intel.ProviderNames()

	a.respondJSON(w, MLHealthResponse{
		Success: true,
		Status:  "operational",
		Config: MLConfig{
			AIAnalysis:         health.Features.AIAnalysis,
			AutoClassification: health.Features.AutoClassification,
			ThreatIntelligence: a.intel.Enabled(),
			Providers: MLProviders{
				OpenAI:    slices.Contains(health.Providers, ai.LabelOpenAI),
				Anthropic: slices.Contains(health.Providers, ai.LabelAnthropic),
				Google:    slices.Contains(health.Providers, ai.LabelGemini),
			},
			ThreatIntelSources: ThreatIntelSources{
				VirusTotal: slices.Contains(sources, threat.ProviderVirusTotal),
				AbuseIPDB:  slices.Contains(sources, threat.ProviderAbuseIPDB),
				GreyNoise:  slices.Contains(sources, threat.ProviderGreyNoise),
			},
			PrimaryProvider: health.Primary,
		},
	}, http.StatusOK)
}
