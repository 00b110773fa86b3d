// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/livepoll/live"
	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/survey"
)

// Broadcaster pushes a fresh snapshot to a survey's live room
type Broadcaster interface {
	Broadcast(ctx context.Context, key live.RoomKey) error
}

type ResponseHandler struct {
	svc     *survey.Service
	rooms   Broadcaster
	metrics *metrics.Metrics
}

// NewResponseHandler creates the submission handler. rooms may be nil,
// in which case HTTP submissions are not pushed to live viewers. m may be
// nil to skip counting.
func NewResponseHandler(svc *survey.Service, rooms Broadcaster, m *metrics.Metrics) *ResponseHandler {
	return &ResponseHandler{svc: svc, rooms: rooms, metrics: m}
}

// SubmitResponse handles POST /api/surveys/responses
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.SubmitResponse(r.Context(), req)
	h.metrics.ObserveSubmission(survey.KindOf(err))
	if err != nil {
		writeServiceError(w, err, "submit response")
		return
	}

	if h.rooms != nil {
		key := live.RoomKey{EventID: req.EventID, SurveyID: req.SurveyID}
		if err := h.rooms.Broadcast(r.Context(), key); err != nil {
			slog.Error("failed to broadcast results", "room", key.String(), "error", err)
		}
	}

	middleware.DataResponse(w, http.StatusCreated, resp)
}
