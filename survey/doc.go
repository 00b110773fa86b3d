// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package survey implements event and survey creation, response ingestion and
result aggregation on top of database/sql.

	svc := survey.NewService(db)

# Ingestion

	resp, err := svc.SubmitResponse(ctx, models.SubmitResponseRequest{
		EventID: eventID, SurveyID: surveyID, OptionID: optionID,
	})

Checks run in order: required fields, survey under event, option under
survey. The insert is a single row in a transaction. When the request has no
user token one is generated here, so every transport gets the same default.

# Aggregation

	results, err := svc.ComputeResults(ctx, eventID, surveyID)

Counts are recomputed from the response table on every call; nothing is
cached. TotalResponses is always the sum of the per-option counts.

# Errors

Every error is a *Error whose Kind is one of:

  - ErrValidation: missing or malformed input
  - ErrNotFound: unknown event, survey or option
  - ErrPersistence: the database failed

	if errors.Is(err, survey.ErrNotFound) { ... }

PublicMessage(err) gives the text that is safe to send to clients.
*/
package survey
