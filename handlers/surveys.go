// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/survey"
)

type SurveyHandler struct {
	svc *survey.Service
}

func NewSurveyHandler(svc *survey.Service) *SurveyHandler {
	return &SurveyHandler{svc: svc}
}

// CreateEvent handles POST /api/surveys/events
// The body is optional; without a title the event is named after its id
func (h *SurveyHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req.Title)
	if err != nil {
		writeServiceError(w, err, "create event")
		return
	}

	middleware.DataResponse(w, http.StatusCreated, event)
}

// CreateSurvey handles POST /api/surveys
func (h *SurveyHandler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sv, err := h.svc.CreateSurvey(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "create survey")
		return
	}

	middleware.DataResponse(w, http.StatusCreated, sv)
}

// ListSurveys handles GET /api/surveys/events/{eventId}/surveys
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "eventId is required")
		return
	}

	list, err := h.svc.ListSurveys(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err, "list surveys")
		return
	}

	middleware.DataResponse(w, http.StatusOK, list)
}

// GetSurvey handles GET /api/surveys/events/{eventId}/surveys/{surveyId}
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	eventID, surveyID := r.PathValue("eventId"), r.PathValue("surveyId")
	if eventID == "" || surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "eventId and surveyId are required")
		return
	}

	detail, err := h.svc.GetSurvey(r.Context(), eventID, surveyID)
	if err != nil {
		writeServiceError(w, err, "get survey")
		return
	}

	middleware.DataResponse(w, http.StatusOK, detail)
}
