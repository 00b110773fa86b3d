// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/token"
)

// SubmitResponse records one vote.
//
// The survey must exist under the given event and the option must belong to
// that survey; the first failing check wins. A nil or empty UserToken is
// replaced by a generated one. Repeat submissions with the same token are
// accepted.
func (s *Service) SubmitResponse(ctx context.Context, req models.SubmitResponseRequest) (models.SubmitResponseResponse, error) {
	if req.EventID == "" || req.SurveyID == "" || req.OptionID == "" {
		return models.SubmitResponseResponse{}, validationError("eventId, surveyId and optionId are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.SubmitResponseResponse{}, persistenceError("Failed to submit response", err)
	}
	defer tx.Rollback()

	var surveyID string
	err = tx.QueryRowContext(ctx, `
		SELECT survey_id FROM survey WHERE survey_id = $1 AND event_id = $2
	`, req.SurveyID, req.EventID).Scan(&surveyID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SubmitResponseResponse{}, notFoundError("Survey not found")
	}
	if err != nil {
		return models.SubmitResponseResponse{}, persistenceError("Failed to submit response", err)
	}

	// Scoping the lookup by survey stops votes for another survey's option
	var optionID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM survey_option WHERE id = $1 AND survey_id = $2
	`, req.OptionID, surveyID).Scan(&optionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SubmitResponseResponse{}, notFoundError("Option not found")
	}
	if err != nil {
		return models.SubmitResponseResponse{}, persistenceError("Failed to submit response", err)
	}

	userToken := ""
	if req.UserToken != nil {
		userToken = *req.UserToken
	}
	if userToken == "" {
		userToken, err = token.GenerateUserToken()
		if err != nil {
			return models.SubmitResponseResponse{}, persistenceError("Failed to submit response", err)
		}
	}

	resp := models.SubmitResponseResponse{
		ResponseID:  token.NewRowID(),
		UserToken:   userToken,
		SubmittedAt: s.now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO response (id, survey_id, survey_option_id, user_token, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, resp.ResponseID, surveyID, optionID, userToken, resp.SubmittedAt)
	if err != nil {
		return models.SubmitResponseResponse{}, persistenceError("Failed to submit response", err)
	}

	if err := tx.Commit(); err != nil {
		return models.SubmitResponseResponse{}, persistenceError("Failed to submit response", err)
	}

	slog.Debug("response submitted", "event_id", req.EventID, "survey_id", surveyID, "response_id", resp.ResponseID)
	return resp, nil
}
