// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"success":true}`},
		{"BadRequest", http.StatusBadRequest, `{"success":false}`},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/api/test", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestWithMetrics(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", WithMetrics(m, WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusTeapot {
			t.Fatalf("Expected status 418, got %d", w.Code)
		}
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	want := `livepoll_http_requests_total{code="418",method="GET",route="GET /items/{id}"} 2`
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("Expected metrics to contain %s", want)
	}
}

func TestDataResponse(t *testing.T) {
	w := httptest.NewRecorder()
	DataResponse(w, http.StatusCreated, map[string]string{"eventId": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}
	body := strings.TrimSpace(w.Body.String())
	if body != `{"success":true,"data":{"eventId":"abc"}}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		message    string
	}{
		{"bad request", http.StatusBadRequest, "eventId, title, question and options are required"},
		{"not found", http.StatusNotFound, "Survey not found"},
		{"internal error", http.StatusInternalServerError, "Failed to submit response"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.APIResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Success {
				t.Error("Expected success=false")
			}
			if resp.Error != tc.message {
				t.Errorf("Expected error '%s', got '%s'", tc.message, resp.Error)
			}
			if resp.Data != nil {
				t.Errorf("Expected no data, got %v", resp.Data)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"eventId":"E","title":"Q1","question":"Best?","options":["a","b"]}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreateSurveyRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.EventID != "E" || len(parsed.Options) != 2 {
			t.Errorf("Unexpected result %+v", parsed)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{invalid json}`))

		var parsed models.CreateSurveyRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.CreateEventRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("optional token absent", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"eventId":"E","surveyId":"S","optionId":"O"}`))

		var parsed models.SubmitResponseRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatal(err)
		}
		if parsed.UserToken != nil {
			t.Errorf("Expected nil userToken, got %q", *parsed.UserToken)
		}
	})
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://polls.example.com", "http://localhost:3000"}

	testCases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://polls.example.com", true},
		{"http://localhost:3000", true},
		{"http://localhost:5173", true},
		{"https://frontend-abc123-an.a.run.app", true},
		{"https://survey.run.app", true},
		{"https://localhost:5173", false},
		{"https://evil.example.com", false},
		{"https://run.app.evil.com", false},
		{"http://polls.example.com", false},
	}

	for _, tc := range testCases {
		t.Run(tc.origin, func(t *testing.T) {
			if got := OriginAllowed(tc.origin, allowed); got != tc.want {
				t.Errorf("OriginAllowed(%q) = %v, want %v", tc.origin, got, tc.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})
	corsHandler := CORS([]string{"https://polls.example.com"}, nextHandler)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/surveys", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Expected Access-Control-Allow-Credentials to be 'true'")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Content-Type") {
			t.Error("Expected Content-Type in allowed headers")
		}
	})

	t.Run("preflight from blocked origin", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/surveys", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("Expected no Access-Control-Allow-Origin for blocked origin")
		}
	})

	t.Run("request from blocked origin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/surveys/responses", strings.NewReader(`{}`))
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
		if w.Body.String() == "handled" {
			t.Error("Expected next handler not to be called for blocked origin")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("Expected no Access-Control-Allow-Origin for blocked origin")
		}
		if !strings.Contains(w.Body.String(), "Not allowed by CORS") {
			t.Errorf("Expected CORS error envelope, got '%s'", w.Body.String())
		}
	})

	t.Run("configured origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/surveys", nil)
		req.Header.Set("Origin", "https://polls.example.com")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "https://polls.example.com" {
			t.Error("Expected Access-Control-Allow-Origin to reflect request origin")
		}
	})

	t.Run("same origin request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("Expected no Access-Control-Allow-Origin without an Origin header")
		}
	})
}

func TestSecureHeaders(t *testing.T) {
	h := SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected X-Content-Type-Options: nosniff")
	}
	if w.Header().Get("X-Frame-Options") == "" {
		t.Error("Expected X-Frame-Options")
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"X-Forwarded-For single IP", map[string]string{"X-Forwarded-For": "203.0.113.195"}, "127.0.0.1:8080", "203.0.113.195"},
		{"X-Forwarded-For chain", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:8080", "203.0.113.195"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "198.51.100.178"}, "127.0.0.1:8080", "198.51.100.178"},
		{"X-Forwarded-For takes precedence", map[string]string{"X-Forwarded-For": "203.0.113.195", "X-Real-IP": "198.51.100.178"}, "127.0.0.1:8080", "203.0.113.195"},
		{"RemoteAddr with port", nil, "192.168.1.100:54321", "192.168.1.100"},
		{"RemoteAddr IPv6", nil, "[::1]:8080", "::1"},
		{"RemoteAddr without port", nil, "192.168.1.100", "192.168.1.100"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if ip := GetClientIP(req); ip != tc.expected {
				t.Errorf("Expected IP '%s', got '%s'", tc.expected, ip)
			}
		})
	}
}
