package api

import (
	"net/http"
	"time"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string    `json:"status" example:"ok"`
	Timestamp   time.Time `json:"timestamp" swaggertype:"string"`
	Uptime      float64   `json:"uptime" example:"3600.5"`
	Environment string    `json:"environment" example:"development"`
}

// healthCheck godoc
//
//	@Summary		Liveness check
//	@Description	Unauthenticated. uptime is in seconds.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(a.startedAt).Seconds(),
		Environment: a.config.Environment,
	}, http.StatusOK)
}
