// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/survey"
)

type ResultsHandler struct {
	svc *survey.Service
}

func NewResultsHandler(svc *survey.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// GetResults handles GET /api/surveys/events/{eventId}/surveys/{surveyId}/results
// Counts are recomputed on every request
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	eventID, surveyID := r.PathValue("eventId"), r.PathValue("surveyId")
	if eventID == "" || surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "eventId and surveyId are required")
		return
	}

	results, err := h.svc.ComputeResults(r.Context(), eventID, surveyID)
	if err != nil {
		writeServiceError(w, err, "compute results")
		return
	}

	middleware.DataResponse(w, http.StatusOK, results)
}
