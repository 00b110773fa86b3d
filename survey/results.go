// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danielhkuo/livepoll/models"
)

// ComputeResults counts the responses of every option of a survey, in
// option order. Counts are taken fresh from the response table on each call.
func (s *Service) ComputeResults(ctx context.Context, eventID, surveyID string) (models.SurveyResults, error) {
	var res models.SurveyResults
	err := s.db.QueryRowContext(ctx, `
		SELECT survey_id, event_id, title, question
		FROM survey
		WHERE survey_id = $1 AND event_id = $2
	`, surveyID, eventID).Scan(&res.SurveyID, &res.EventID, &res.Title, &res.Question)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SurveyResults{}, notFoundError("Survey not found")
	}
	if err != nil {
		return models.SurveyResults{}, persistenceError("Failed to fetch results", err)
	}

	options, err := loadOptions(ctx, s.db, surveyID)
	if err != nil {
		return models.SurveyResults{}, persistenceError("Failed to fetch results", err)
	}

	res.PerOption = make([]models.OptionResult, 0, len(options))
	for _, opt := range options {
		var count int
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM response WHERE survey_option_id = $1
		`, opt.ID).Scan(&count)
		if err != nil {
			return models.SurveyResults{}, persistenceError("Failed to fetch results", err)
		}

		res.PerOption = append(res.PerOption, models.OptionResult{
			OptionID: opt.ID,
			Text:     opt.Text,
			Order:    opt.Order,
			Count:    count,
		})
		res.TotalResponses += count
	}

	res.ComputedAt = s.now()
	return res, nil
}
