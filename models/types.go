// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Live event names
const (
	EventJoinSurvey     = "join-survey"
	EventLeaveSurvey    = "leave-survey"
	EventSubmitResponse = "submit-response"

	EventSurveyResults     = "survey-results"
	EventResponseSubmitted = "response-submitted"
	EventError             = "error"
)

// MinSurveyOptions is the fewest options a survey may be created with
const MinSurveyOptions = 2

// Request types

type CreateEventRequest struct {
	Title *string `json:"title,omitempty"`
}

type CreateSurveyRequest struct {
	EventID  string   `json:"eventId"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// UserToken is optional; nil or empty means "generate one for me"
type SubmitResponseRequest struct {
	EventID   string  `json:"eventId"`
	SurveyID  string  `json:"surveyId"`
	OptionID  string  `json:"optionId"`
	UserToken *string `json:"userToken,omitempty"`
}

// RoomRequest is the payload of join-survey and leave-survey
type RoomRequest struct {
	EventID  string `json:"eventId"`
	SurveyID string `json:"surveyId"`
}

// Response types

type SubmitResponseResponse struct {
	ResponseID  string    `json:"responseId"`
	UserToken   string    `json:"userToken"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type EventSurveys struct {
	EventID string   `json:"eventId"`
	Surveys []Survey `json:"surveys"`
}

type EventSummary struct {
	Title string `json:"title"`
}

type SurveyDetail struct {
	Survey
	Event EventSummary `json:"event"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// Domain types

type Event struct {
	EventID   string    `json:"eventId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type Survey struct {
	SurveyID  string    `json:"surveyId"`
	EventID   string    `json:"eventId"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	Options   []Option  `json:"options"`
	CreatedAt time.Time `json:"createdAt"`
}

type Option struct {
	ID       string `json:"id"`
	SurveyID string `json:"surveyId"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
}

// Aggregation types

type OptionResult struct {
	OptionID string `json:"optionId"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
	Count    int    `json:"count"`
}

// SurveyResults is a full snapshot of a survey's tally. PerOption is
// serialized as "results", the key the presentation screen reads.
type SurveyResults struct {
	SurveyID       string         `json:"surveyId"`
	EventID        string         `json:"eventId"`
	Title          string         `json:"title"`
	Question       string         `json:"question"`
	TotalResponses int            `json:"totalResponses"`
	PerOption      []OptionResult `json:"results"`
	ComputedAt     time.Time      `json:"computedAt"`
}

// Live wire types

// Frame is one JSON text frame on the live connection
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ResponseSubmitted struct {
	ResponseID  string    `json:"responseId"`
	SubmittedAt time.Time `json:"submittedAt"`
	UserToken   string    `json:"userToken"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// API envelope

type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
