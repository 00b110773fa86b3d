// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/token"
)

// Service owns every read and write against the survey tables. It keeps no
// in-process state; the database is the only source of truth.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: defaultNow}
}

func defaultNow() time.Time {
	// UTC at microsecond precision round-trips through both drivers unchanged
	return time.Now().UTC().Truncate(time.Microsecond)
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateEvent creates an event. A missing or blank title becomes "Event <id>".
func (s *Service) CreateEvent(ctx context.Context, title *string) (models.Event, error) {
	eventID, err := token.GenerateShortID()
	if err != nil {
		return models.Event{}, persistenceError("Failed to create event", err)
	}

	event := models.Event{
		EventID:   eventID,
		CreatedAt: s.now(),
	}
	if title != nil {
		event.Title = strings.TrimSpace(*title)
	}
	if event.Title == "" {
		event.Title = "Event " + eventID
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO event (event_id, title, created_at)
		VALUES ($1, $2, $3)
	`, event.EventID, event.Title, event.CreatedAt)
	if err != nil {
		return models.Event{}, persistenceError("Failed to create event", err)
	}

	slog.Info("event created", "event_id", event.EventID)
	return event, nil
}

// CreateSurvey creates a survey and its options in one transaction.
// Option order follows the request, starting at 1.
func (s *Service) CreateSurvey(ctx context.Context, req models.CreateSurveyRequest) (models.Survey, error) {
	eventID := strings.TrimSpace(req.EventID)
	title := strings.TrimSpace(req.Title)
	question := strings.TrimSpace(req.Question)

	if eventID == "" || title == "" || question == "" || req.Options == nil {
		return models.Survey{}, validationError("eventId, title, question and options are required")
	}
	if len(req.Options) < models.MinSurveyOptions {
		return models.Survey{}, validationError(fmt.Sprintf("at least %d options are required", models.MinSurveyOptions))
	}

	texts := make([]string, len(req.Options))
	for i, o := range req.Options {
		texts[i] = strings.TrimSpace(o)
		if texts[i] == "" {
			return models.Survey{}, validationError(fmt.Sprintf("option %d must not be empty", i+1))
		}
	}

	surveyID, err := token.GenerateShortID()
	if err != nil {
		return models.Survey{}, persistenceError("Failed to create survey", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Survey{}, persistenceError("Failed to create survey", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM event WHERE event_id = $1)
	`, eventID).Scan(&exists)
	if err != nil {
		return models.Survey{}, persistenceError("Failed to create survey", err)
	}
	if !exists {
		return models.Survey{}, notFoundError("Event not found")
	}

	survey := models.Survey{
		SurveyID:  surveyID,
		EventID:   eventID,
		Title:     title,
		Question:  question,
		Options:   make([]models.Option, 0, len(texts)),
		CreatedAt: s.now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO survey (survey_id, event_id, title, question, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, survey.SurveyID, survey.EventID, survey.Title, survey.Question, survey.CreatedAt)
	if err != nil {
		return models.Survey{}, persistenceError("Failed to create survey", err)
	}

	for i, text := range texts {
		opt := models.Option{
			ID:       token.NewRowID(),
			SurveyID: surveyID,
			Text:     text,
			Order:    i + 1,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO survey_option (id, survey_id, text, sort_order)
			VALUES ($1, $2, $3, $4)
		`, opt.ID, opt.SurveyID, opt.Text, opt.Order)
		if err != nil {
			return models.Survey{}, persistenceError("Failed to create survey", err)
		}
		survey.Options = append(survey.Options, opt)
	}

	if err := tx.Commit(); err != nil {
		return models.Survey{}, persistenceError("Failed to create survey", err)
	}

	slog.Info("survey created", "event_id", eventID, "survey_id", surveyID, "options", len(texts))
	return survey, nil
}

// ListSurveys returns every survey of an event, oldest first, with options.
func (s *Service) ListSurveys(ctx context.Context, eventID string) (models.EventSurveys, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM event WHERE event_id = $1)
	`, eventID).Scan(&exists)
	if err != nil {
		return models.EventSurveys{}, persistenceError("Failed to list surveys", err)
	}
	if !exists {
		return models.EventSurveys{}, notFoundError("Event not found")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT survey_id, event_id, title, question, created_at
		FROM survey
		WHERE event_id = $1
		ORDER BY created_at ASC, survey_id ASC
	`, eventID)
	if err != nil {
		return models.EventSurveys{}, persistenceError("Failed to list surveys", err)
	}

	surveys := []models.Survey{}
	for rows.Next() {
		var sv models.Survey
		if err := rows.Scan(&sv.SurveyID, &sv.EventID, &sv.Title, &sv.Question, &sv.CreatedAt); err != nil {
			rows.Close()
			return models.EventSurveys{}, persistenceError("Failed to list surveys", err)
		}
		surveys = append(surveys, sv)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.EventSurveys{}, persistenceError("Failed to list surveys", err)
	}
	// Close before the option queries; SQLite runs on a single connection
	rows.Close()

	for i := range surveys {
		opts, err := loadOptions(ctx, s.db, surveys[i].SurveyID)
		if err != nil {
			return models.EventSurveys{}, persistenceError("Failed to list surveys", err)
		}
		surveys[i].Options = opts
	}

	return models.EventSurveys{EventID: eventID, Surveys: surveys}, nil
}

// GetSurvey returns one survey with its options and the parent event title.
func (s *Service) GetSurvey(ctx context.Context, eventID, surveyID string) (models.SurveyDetail, error) {
	var d models.SurveyDetail
	err := s.db.QueryRowContext(ctx, `
		SELECT s.survey_id, s.event_id, s.title, s.question, s.created_at, e.title
		FROM survey s
		JOIN event e ON e.event_id = s.event_id
		WHERE s.survey_id = $1 AND s.event_id = $2
	`, surveyID, eventID).Scan(
		&d.SurveyID, &d.EventID, &d.Title, &d.Question, &d.CreatedAt, &d.Event.Title,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SurveyDetail{}, notFoundError("Survey not found")
	}
	if err != nil {
		return models.SurveyDetail{}, persistenceError("Failed to fetch survey", err)
	}

	d.Options, err = loadOptions(ctx, s.db, surveyID)
	if err != nil {
		return models.SurveyDetail{}, persistenceError("Failed to fetch survey", err)
	}

	return d, nil
}

// loadOptions returns a survey's options ordered by sort_order
func loadOptions(ctx context.Context, q querier, surveyID string) ([]models.Option, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, survey_id, text, sort_order
		FROM survey_option
		WHERE survey_id = $1
		ORDER BY sort_order ASC
	`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.SurveyID, &opt.Text, &opt.Order); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}
