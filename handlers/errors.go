// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/survey"
)

// writeServiceError maps a survey error kind to a status code and writes
// the caller-safe message. Only persistence failures are logged.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, survey.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, survey.ErrNotFound):
		status = http.StatusNotFound
	default:
		slog.Error("failed to "+action, "error", err)
	}
	middleware.ErrorResponse(w, status, survey.PublicMessage(err))
}
