// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter builds an http.ServeMux with every endpoint and wraps it in the
CORS and security header middleware:

	handler := router.NewRouter(svc, hub, m, cfg)

# Endpoints

Health and operations:

	GET /health  - Liveness with timestamp
	GET /metrics - Prometheus exposition (when metrics are enabled)
	GET /ws      - WebSocket upgrade for live results

Events and surveys:

	POST /api/surveys/events                             - Create event
	POST /api/surveys                                    - Create survey
	GET  /api/surveys/events/{eventId}/surveys           - List an event's surveys
	GET  /api/surveys/events/{eventId}/surveys/{surveyId} - Survey with options

Voting and results:

	POST /api/surveys/responses                                  - Submit a vote
	GET  /api/surveys/events/{eventId}/surveys/{surveyId}/results - Current tally

API routes are logged and instrumented; /health is only instrumented.
*/
package router
