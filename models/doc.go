// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, domain and live wire types.

# Request Types

Types for parsing incoming JSON:

  - CreateEventRequest: title (optional)
  - CreateSurveyRequest: eventId, title, question, options
  - SubmitResponseRequest: eventId, surveyId, optionId, userToken (optional)
  - RoomRequest: eventId, surveyId (join-survey / leave-survey)

# Response Types

  - SubmitResponseResponse: responseId, userToken, submittedAt
  - EventSurveys: eventId, surveys
  - SurveyDetail: survey plus parent event title
  - HealthResponse: status, timestamp, service
  - APIResponse: the {success, data | error} envelope every REST body uses

# Domain Types

  - Event, Survey, Option
  - OptionResult, SurveyResults: the aggregation snapshot

# Live Wire Types

Frames on the live connection look like:

	{"event": "join-survey", "data": {"eventId": "...", "surveyId": "..."}}

Client to server:

	EventJoinSurvey     = "join-survey"
	EventLeaveSurvey    = "leave-survey"
	EventSubmitResponse = "submit-response"

Server to client:

	EventSurveyResults     = "survey-results"      // SurveyResults or null
	EventResponseSubmitted = "response-submitted"  // ResponseSubmitted
	EventError             = "error"               // ErrorMessage
*/
package models
