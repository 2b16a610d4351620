package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"forensics/core"
	"forensics/metrics"
	"forensics/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files
const multipartMemory = 32 << 20

// AppendCustodyRequest is the body of POST /api/data/chain-of-custody
type AppendCustodyRequest struct {
	EvidenceID  string `json:"evidenceId" validate:"required,max=100" example:"EVT-001"`
	Action      string `json:"action" validate:"required,max=200" example:"Evidence transferred to lab"`
	PerformedBy string `json:"performedBy,omitempty" validate:"max=200"`
	Hash        string `json:"hash,omitempty" validate:"max=128"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

// AddNoteRequest is the body of POST /api/data/notes
type AddNoteRequest struct {
	CaseID  string `json:"caseId" validate:"required" example:"CASE-001"`
	Author  string `json:"author,omitempty" validate:"max=200"`
	Content string `json:"content" validate:"required,max=10000"`
}

// AddDecisionRequest is the body of POST /api/data/decisions
type AddDecisionRequest struct {
	CaseID      string `json:"caseId" validate:"required" example:"CASE-001"`
	Decision    string `json:"decision" validate:"required,max=2000"`
	Reason      string `json:"reason" validate:"required,max=5000"`
	PerformedBy string `json:"performedBy,omitempty" validate:"max=200"`
}

// getAttackStory godoc
//
//	@Summary		Get attack story
//	@Tags			data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId	path		string	true	"Case ID"	example(CASE-001)
//	@Success		200		{object}	core.AttackStory
//	@Failure		404		{object}	errorResponse	"Story not found for this case"
//	@Router			/api/data/story/{caseId} [get]
func (a *API) getAttackStory(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["caseId"]

	story, err := a.repo.GetStory(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Story not found for this case", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to get attack story")
		return
	}
	a.respondJSON(w, story, http.StatusOK)
}

// saveAttackStory godoc
//
//	@Summary		Save attack story
//	@Description	Stores a structured story for the case, replacing any previous one
//	@Tags			data
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId	path		string				true	"Case ID"
//	@Param			story	body		core.AttackStory	true	"Story"
//	@Success		200		{object}	core.AttackStory
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse	"Case not found"
//	@Router			/api/data/story/{caseId} [put]
func (a *API) saveAttackStory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := mux.Vars(r)["caseId"]

	var story core.AttackStory
	if err := a.decodeJSONBody(w, r, &story); err != nil {
		return
	}

	if _, err := a.repo.GetCase(ctx, caseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Case not found", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to save attack story")
		return
	}

	story.CaseID = caseID
	story.ID = core.StoryID(caseID)
	story.GeneratedAt = time.Now().UTC()
	for i := range story.Steps {
		if story.Steps[i].ID == "" {
			story.Steps[i].ID = uuid.New().String()
		}
		if story.Steps[i].EvidenceIDs == nil {
			story.Steps[i].EvidenceIDs = []string{}
		}
	}
	if story.Steps == nil {
		story.Steps = []core.StoryStep{}
	}
	if err := story.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err, a.logger)
		return
	}

	saved, err := a.repo.SaveStory(ctx, &story)
	if err != nil {
		a.writeServiceError(w, err, "Failed to save attack story")
		return
	}

	a.logger.Infow("Attack story saved",
		"case_id", caseID,
		"steps", len(saved.Steps),
		"performed_by", actorFromContext(ctx))
	a.broadcast(EventStoryUpdated, saved)

	a.respondJSON(w, saved, http.StatusOK)
}

// getEvidenceFiles godoc
//
//	@Summary		List evidence files
//	@Tags			data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId	query	string	false	"Restrict to one case"
//	@Success		200		{array}	core.EvidenceFile
//	@Router			/api/data/files [get]
func (a *API) getEvidenceFiles(w http.ResponseWriter, r *http.Request) {
	files, err := a.repo.ListFiles(r.Context(), r.URL.Query().Get("caseId"))
	if err != nil {
		a.writeServiceError(w, err, "Failed to list evidence files")
		return
	}
	a.respondJSON(w, files, http.StatusOK)
}

// uploadEvidenceFile godoc
//
//	@Summary		Upload evidence file
//	@Description	Stores the file, records its SHA-256 digest and opens its chain of custody
//	@Tags			data
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			file	formData	file	true	"Evidence file"
//	@Param			caseId	formData	string	true	"Case ID"
//	@Success		201		{object}	core.EvidenceFile
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse	"Case not found"
//	@Failure		413		{object}	errorResponse	"File exceeds maximum upload size"
//	@Failure		429		{object}	errorResponse	"Upload limit exceeded"
//	@Router			/api/data/files [post]
func (a *API) uploadEvidenceFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if a.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Evidence uploads are not configured", nil, a.logger)
		return
	}

	// Leave headroom for the multipart envelope; the blob store enforces the exact limit
	r.Body = http.MaxBytesReader(w, r.Body, a.config.Upload.MaxSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		metrics.EvidenceUploads.WithLabelValues("rejected").Inc()
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeError(w, http.StatusRequestEntityTooLarge, storage.ErrBlobTooLarge.Error(), err, a.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err, a.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	caseID := r.FormValue("caseId")
	if caseID == "" {
		metrics.EvidenceUploads.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "caseId is required", nil, a.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.EvidenceUploads.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "No file uploaded", err, a.logger)
		return
	}
	defer file.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !slices.Contains(a.config.Upload.AllowedTypes, ext) {
		metrics.EvidenceUploads.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type not allowed: %s", header.Filename), nil, a.logger)
		return
	}

	if _, err := a.repo.GetCase(ctx, caseID); err != nil {
		metrics.EvidenceUploads.WithLabelValues("rejected").Inc()
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Case not found", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to upload evidence")
		return
	}

	blob, err := a.blobs.Save(ctx, header.Filename, file)
	if err != nil {
		if errors.Is(err, storage.ErrBlobTooLarge) {
			metrics.EvidenceUploads.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, err.Error(), err, a.logger)
			return
		}
		metrics.EvidenceUploads.WithLabelValues("error").Inc()
		a.writeServiceError(w, err, "Failed to store evidence file")
		return
	}

	actor := actorFromContext(ctx)
	stored, err := a.repo.CreateFile(ctx, &core.EvidenceFile{
		CaseID:      caseID,
		FileName:    header.Filename,
		FileSize:    blob.Size,
		FileType:    ext,
		Hash:        blob.SHA256,
		UploadedBy:  actor,
		UploadedAt:  time.Now().UTC(),
		Status:      core.FileStatusQueued,
		StoragePath: blob.Path,
	})
	if err != nil {
		// No record points at the blob, so it would never be cleaned up
		if rmErr := os.Remove(blob.Path); rmErr != nil {
			a.logger.Warnw("Failed to remove orphaned evidence file", "path", blob.Path, "error", rmErr)
		}
		metrics.EvidenceUploads.WithLabelValues("error").Inc()
		a.writeServiceError(w, err, "Failed to record evidence file")
		return
	}

	if _, err := a.repo.AppendCustody(ctx, &core.CustodyEntry{
		EvidenceID:  stored.ID,
		Action:      core.CustodyActionUploaded,
		PerformedBy: actor,
		Hash:        blob.SHA256,
		Notes:       blob.MirrorKey,
	}); err != nil {
		a.logger.Errorw("Failed to record custody entry",
			"evidence_id", stored.ID,
			"error", err)
	}

	metrics.EvidenceUploads.WithLabelValues("success").Inc()
	a.logger.Infow("Evidence file uploaded",
		"file_id", stored.ID,
		"case_id", caseID,
		"size", stored.FileSize,
		"sha256", stored.Hash,
		"uploaded_by", actor)
	a.broadcast(EventFileUploaded, stored)

	a.respondJSON(w, stored, http.StatusCreated)
}

// getChainOfCustody godoc
//
//	@Summary		Get chain of custody
//	@Tags			data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			evidenceId	query	string	false	"Restrict to one evidence item"
//	@Success		200			{array}	core.CustodyEntry
//	@Router			/api/data/chain-of-custody [get]
func (a *API) getChainOfCustody(w http.ResponseWriter, r *http.Request) {
	entries, err := a.repo.ListCustody(r.Context(), r.URL.Query().Get("evidenceId"))
	if err != nil {
		a.writeServiceError(w, err, "Failed to get chain of custody")
		return
	}
	a.respondJSON(w, entries, http.StatusOK)
}

// appendCustody godoc
//
//	@Summary		Append custody entry
//	@Description	Adds an entry to an evidence item's chain of custody. Entries cannot be edited or removed.
//	@Tags			data
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			entry	body		AppendCustodyRequest	true	"Entry"
//	@Success		201		{object}	core.CustodyEntry
//	@Failure		400		{object}	errorResponse
//	@Router			/api/data/chain-of-custody [post]
func (a *API) appendCustody(w http.ResponseWriter, r *http.Request) {
	var req AppendCustodyRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), err, a.logger)
		return
	}

	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = actorFromContext(r.Context())
	}

	entry, err := a.repo.AppendCustody(r.Context(), &core.CustodyEntry{
		EvidenceID:  req.EvidenceID,
		Action:      req.Action,
		PerformedBy: performedBy,
		Hash:        req.Hash,
		Notes:       req.Notes,
	})
	if err != nil {
		a.writeServiceError(w, err, "Failed to append custody entry")
		return
	}

	a.broadcast(EventCustodyAppended, entry)
	a.respondJSON(w, entry, http.StatusCreated)
}

// getSystemStats godoc
//
//	@Summary		Dashboard counters
//	@Tags			data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	core.SystemStats
//	@Router			/api/data/system-stats [get]
func (a *API) getSystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.repo.GetStats(r.Context())
	if err != nil {
		a.writeServiceError(w, err, "Failed to get system stats")
		return
	}
	a.respondJSON(w, stats, http.StatusOK)
}

// getNotes godoc
//
//	@Summary		List investigator notes
//	@Tags			data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId	query	string	false	"Restrict to one case"
//	@Success		200		{array}	core.InvestigatorNote
//	@Router			/api/data/notes [get]
func (a *API) getNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := a.repo.ListNotes(r.Context(), r.URL.Query().Get("caseId"))
	if err != nil {
		a.writeServiceError(w, err, "Failed to list notes")
		return
	}
	a.respondJSON(w, notes, http.StatusOK)
}

// addNote godoc
//
//	@Summary		Add investigator note
//	@Description	author defaults to the caller's email
//	@Tags			data
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			note	body		AddNoteRequest	true	"Note"
//	@Success		201		{object}	core.InvestigatorNote
//	@Failure		400		{object}	errorResponse
//	@Router			/api/data/notes [post]
func (a *API) addNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), err, a.logger)
		return
	}

	author := req.Author
	if author == "" {
		author = actorFromContext(r.Context())
	}

	note, err := a.repo.AddNote(r.Context(), &core.InvestigatorNote{
		CaseID:  req.CaseID,
		Author:  author,
		Content: req.Content,
	})
	if err != nil {
		a.writeServiceError(w, err, "Failed to add note")
		return
	}

	a.broadcast(EventJournalAppended, note)
	a.respondJSON(w, note, http.StatusCreated)
}

// getDecisions godoc
//
//	@Summary		List decision log
//	@Tags			data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			caseId	query	string	false	"Restrict to one case"
//	@Success		200		{array}	core.DecisionLogEntry
//	@Router			/api/data/decisions [get]
func (a *API) getDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := a.repo.ListDecisions(r.Context(), r.URL.Query().Get("caseId"))
	if err != nil {
		a.writeServiceError(w, err, "Failed to list decisions")
		return
	}
	a.respondJSON(w, decisions, http.StatusOK)
}

// addDecision godoc
//
//	@Summary		Record decision
//	@Description	performedBy defaults to the caller's email
//	@Tags			data
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			decision	body		AddDecisionRequest	true	"Decision"
//	@Success		201			{object}	core.DecisionLogEntry
//	@Failure		400			{object}	errorResponse
//	@Router			/api/data/decisions [post]
func (a *API) addDecision(w http.ResponseWriter, r *http.Request) {
	var req AddDecisionRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), err, a.logger)
		return
	}

	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = actorFromContext(r.Context())
	}

	decision, err := a.repo.AddDecision(r.Context(), &core.DecisionLogEntry{
		CaseID:      req.CaseID,
		Decision:    req.Decision,
		Reason:      req.Reason,
		PerformedBy: performedBy,
	})
	if err != nil {
		a.writeServiceError(w, err, "Failed to record decision")
		return
	}

	a.logger.Infow("Decision recorded",
		"decision_id", decision.ID,
		"case_id", decision.CaseID,
		"performed_by", performedBy)
	a.broadcast(EventJournalAppended, decision)

	a.respondJSON(w, decision, http.StatusCreated)
}
