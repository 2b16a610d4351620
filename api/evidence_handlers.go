package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"forensics/core"
	"forensics/storage"

	"github.com/gorilla/mux"
)

// getRawEvidence godoc
//
//	@Summary		List raw evidence
//	@Tags			evidence
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId	query		string	false	"Restrict to one case"
//	@Success		200		{array}		core.RawEvidence
//	@Router			/api/evidence/raw [get]
func (a *API) getRawEvidence(w http.ResponseWriter, r *http.Request) {
	filter := storage.EvidenceFilter{CaseID: r.URL.Query().Get("caseId")}

	events, err := a.repo.ListRawEvidence(r.Context(), filter)
	if err != nil {
		a.writeServiceError(w, err, "Failed to list raw evidence")
		return
	}
	a.respondJSON(w, events, http.StatusOK)
}

// getFilteredArtifacts godoc
//
//	@Summary		List filtered artifacts
//	@Description	Artifacts with confidenceScore below threshold are omitted
//	@Tags			evidence
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId		query		string	false	"Restrict to one case"
//	@Param			threshold	query		number	false	"Minimum confidence score"	example(0.7)
//	@Success		200			{array}		core.FilteredArtifact
//	@Failure		400			{object}	errorResponse	"Invalid threshold"
//	@Router			/api/evidence/filtered [get]
func (a *API) getFilteredArtifacts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.ArtifactFilter{CaseID: query.Get("caseId")}

	if raw := query.Get("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err == nil && (math.IsNaN(threshold) || math.IsInf(threshold, 0)) {
			err = errors.New("threshold must be a finite number")
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid threshold: %s", raw), err, a.logger)
			return
		}
		filter.Threshold = &threshold
	}

	artifacts, err := a.repo.ListArtifacts(r.Context(), filter)
	if err != nil {
		a.writeServiceError(w, err, "Failed to list artifacts")
		return
	}
	a.respondJSON(w, artifacts, http.StatusOK)
}

// toggleFalsePositive godoc
//
//	@Summary		Toggle false positive
//	@Description	Flips isFalsePositive and records the change in the artifact's chain of custody
//	@Tags			evidence
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Artifact ID"	example(EVT-001)
//	@Success		200	{object}	core.FilteredArtifact
//	@Failure		404	{object}	errorResponse	"Artifact not found"
//	@Router			/api/evidence/{id}/false-positive [patch]
func (a *API) toggleFalsePositive(w http.ResponseWriter, r *http.Request) {
	a.toggleArtifact(w, r, a.repo.ToggleFalsePositive, func(art *core.FilteredArtifact) string {
		if art.IsFalsePositive {
			return core.CustodyActionMarkedFalsePositive
		}
		return core.CustodyActionClearedFalsePositive
	})
}

// toggleExcludeFromStory godoc
//
//	@Summary		Toggle story exclusion
//	@Description	Flips excludedFromStory and records the change in the artifact's chain of custody
//	@Tags			evidence
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Artifact ID"	example(EVT-001)
//	@Success		200	{object}	core.FilteredArtifact
//	@Failure		404	{object}	errorResponse	"Artifact not found"
//	@Router			/api/evidence/{id}/exclude-story [patch]
func (a *API) toggleExcludeFromStory(w http.ResponseWriter, r *http.Request) {
	a.toggleArtifact(w, r, a.repo.ToggleExcludedFromStory, func(art *core.FilteredArtifact) string {
		if art.ExcludedFromStory {
			return core.CustodyActionExcludedFromStory
		}
		return core.CustodyActionIncludedInStory
	})
}

func (a *API) toggleArtifact(
	w http.ResponseWriter,
	r *http.Request,
	toggle func(ctx context.Context, id string) (*core.FilteredArtifact, error),
	action func(*core.FilteredArtifact) string,
) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	artifact, err := toggle(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Artifact not found", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to update artifact")
		return
	}

	actor := actorFromContext(ctx)
	entry := &core.CustodyEntry{
		EvidenceID:  artifact.ID,
		Action:      action(artifact),
		PerformedBy: actor,
	}
	if _, err := a.repo.AppendCustody(ctx, entry); err != nil {
		// The toggle itself already succeeded
		a.logger.Errorw("Failed to record custody entry",
			"evidence_id", artifact.ID,
			"action", entry.Action,
			"error", err)
	}

	a.logger.Infow("Artifact updated",
		"evidence_id", artifact.ID,
		"action", entry.Action,
		"performed_by", actor)
	a.broadcast(EventArtifactUpdated, artifact)

	a.respondJSON(w, artifact, http.StatusOK)
}
