// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the livepoll API.

# Handler Types

Each handler is a struct wrapping the survey service:

  - SurveyHandler: event and survey creation, listing and lookup
  - ResultsHandler: per-option tallies for one survey
  - ResponseHandler: vote submission
  - LiveHandler: the WebSocket endpoint backed by live.Hub

Handlers are created via constructor functions:

	surveyHandler := handlers.NewSurveyHandler(svc)
	responseHandler := handlers.NewResponseHandler(svc, hub, m)

# Responses

Every API body is wrapped in {"success": true, "data": ...} or
{"success": false, "error": "..."}. Service errors map to status codes by
kind: validation is 400, not found is 404, anything else is 500 with a
generic message.

# Live Updates

	GET /ws → LiveHandler.ServeWS

Clients exchange {"event", "data"} text frames: join-survey, leave-survey
and submit-response in; survey-results, response-submitted and error out.
A submission over HTTP is also broadcast to the survey's room so live
viewers see votes from either path.
*/
package handlers
