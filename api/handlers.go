package api

import (
	"errors"
	"net/http"

	"forensics/core"
	"forensics/storage"

	"github.com/gorilla/mux"
)

// CreateCaseRequest is the body of POST /api/cases
type CreateCaseRequest struct {
	Title        string            `json:"title" validate:"required,max=200" example:"Suspicious USB activity on HR laptop"`
	IncidentType core.IncidentType `json:"incidentType" validate:"required" example:"usb-breach"`
	Severity     core.Severity     `json:"severity" validate:"required" example:"high"`
	Status       core.CaseStatus   `json:"status,omitempty" example:"open"`
	AssignedTo   string            `json:"assignedTo" validate:"required,max=100" example:"Sarah Chen"`
	Description  string            `json:"description" validate:"max=5000"`
}

// getCases godoc
//
//	@Summary		List cases
//	@Description	Returns every investigation case
//	@Tags			cases
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{array}		core.Case
//	@Failure		401	{object}	errorResponse
//	@Router			/api/cases [get]
func (a *API) getCases(w http.ResponseWriter, r *http.Request) {
	cases, err := a.repo.ListCases(r.Context())
	if err != nil {
		a.writeServiceError(w, err, "Failed to list cases")
		return
	}
	a.respondJSON(w, cases, http.StatusOK)
}

// getCase godoc
//
//	@Summary		Get case
//	@Tags			cases
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Case ID"	example(CASE-001)
//	@Success		200	{object}	core.Case
//	@Failure		404	{object}	errorResponse	"Case not found"
//	@Router			/api/cases/{id} [get]
func (a *API) getCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, err := a.repo.GetCase(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Case not found", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to get case")
		return
	}
	a.respondJSON(w, c, http.StatusOK)
}

// createCase godoc
//
//	@Summary		Create case
//	@Description	Opens a new case. The server assigns the id and timestamps.
//	@Tags			cases
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			case	body		CreateCaseRequest	true	"Case"
//	@Success		201		{object}	core.Case
//	@Failure		400		{object}	errorResponse
//	@Failure		403		{object}	errorResponse	"Insufficient permissions"
//	@Router			/api/cases [post]
func (a *API) createCase(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), err, a.logger)
		return
	}

	c := core.NewCase(req.Title, req.IncidentType, req.Severity, req.AssignedTo, req.Description)
	if req.Status != "" {
		c.Status = req.Status
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err, a.logger)
		return
	}

	created, err := a.repo.CreateCase(r.Context(), c)
	if err != nil {
		a.writeServiceError(w, err, "Failed to create case")
		return
	}

	a.logger.Infow("Case created",
		"case_id", created.ID,
		"severity", created.Severity,
		"created_by", actorFromContext(r.Context()))
	a.broadcast(EventCaseCreated, created)

	a.respondJSON(w, created, http.StatusCreated)
}

// updateCase godoc
//
//	@Summary		Update case
//	@Description	Shallow-merges the supplied fields. id, createdAt and evidenceCount cannot be changed.
//	@Tags			cases
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			id		path		string			true	"Case ID"
//	@Param			update	body		core.CaseUpdate	true	"Fields to change"
//	@Success		200		{object}	core.Case
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse	"Case not found"
//	@Router			/api/cases/{id} [put]
func (a *API) updateCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var upd core.CaseUpdate
	if err := a.decodeJSONBody(w, r, &upd); err != nil {
		return
	}
	if err := validate.Struct(&upd); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), err, a.logger)
		return
	}
	if err := upd.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err, a.logger)
		return
	}

	updated, err := a.repo.UpdateCase(r.Context(), id, &upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Case not found", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to update case")
		return
	}

	a.broadcast(EventCaseUpdated, updated)
	a.respondJSON(w, updated, http.StatusOK)
}
