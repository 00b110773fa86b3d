// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/handlers"
	"github.com/danielhkuo/livepoll/live"
	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/survey"
)

// NewRouter builds the route table and wraps it in CORS and security
// headers. m may be nil.
func NewRouter(svc *survey.Service, hub *live.Hub, m *metrics.Metrics, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()
	origins := cfg.AllowedOrigins()

	// Initialize handlers
	surveyHandler := handlers.NewSurveyHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)
	responseHandler := handlers.NewResponseHandler(svc, hub, m)
	liveHandler := handlers.NewLiveHandler(hub, origins)

	api := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithMetrics(m, middleware.WithLogging(h))
	}

	// Health check
	mux.HandleFunc("GET /health", middleware.WithMetrics(m, handlers.Health))

	// Event and survey management
	mux.HandleFunc("POST /api/surveys/events", api(surveyHandler.CreateEvent))
	mux.HandleFunc("POST /api/surveys", api(surveyHandler.CreateSurvey))
	mux.HandleFunc("GET /api/surveys/events/{eventId}/surveys", api(surveyHandler.ListSurveys))
	mux.HandleFunc("GET /api/surveys/events/{eventId}/surveys/{surveyId}", api(surveyHandler.GetSurvey))

	// Results and submissions
	mux.HandleFunc("GET /api/surveys/events/{eventId}/surveys/{surveyId}/results", api(resultsHandler.GetResults))
	mux.HandleFunc("POST /api/surveys/responses", api(responseHandler.SubmitResponse))

	// Live updates
	mux.HandleFunc("GET /ws", middleware.WithLogging(liveHandler.ServeWS))

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	return middleware.SecureHeaders(middleware.CORS(origins, mux))
}
