package api

import (
	"net/http"

	"forensics/threat"

	"github.com/gorilla/mux"
)

// MitreResponse wraps a resolved ATT&CK technique
type MitreResponse struct {
	Success bool                   `json:"success"`
	Info    *threat.MitreTechnique `json:"info"`
}

// getMitreTechnique godoc
//
//	@Summary		Resolve MITRE ATT&CK technique
//	@Description	Returns the canonical id and reference URL for a technique or sub-technique
//	@Tags			ml
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			techniqueId	path		string	true	"Technique ID"	example(T1566.002)
//	@Success		200			{object}	MitreResponse
//	@Failure		400			{object}	mlErrorResponse	"Invalid MITRE ATT&CK technique ID"
//	@Router			/api/ml/mitre/{techniqueId} [get]
func (a *API) getMitreTechnique(w http.ResponseWriter, r *http.Request) {
	info, err := a.intel.GetMitreInfo(mux.Vars(r)["techniqueId"])
	if err != nil {
		a.writeMLError(w, err, "MITRE lookup")
		return
	}
	a.respondJSON(w, MitreResponse{Success: true, Info: info}, http.StatusOK)
}
