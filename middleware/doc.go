// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

Wrap handlers with request logging and Prometheus instrumentation:

	mux.HandleFunc("GET /health", middleware.WithMetrics(m, middleware.WithLogging(handler)))

Logs request start (method, path, client_ip) and completion (status,
duration_ms). WithMetrics labels observations with the mux pattern that
matched, so path parameters do not blow up label cardinality.

# CORS

	handler := middleware.CORS(cfg.AllowedOrigins(), mux)

OriginAllowed accepts the configured origins, any http://localhost port,
any *.run.app host, and requests with no Origin header. The WebSocket
upgrader uses the same check.

# JSON Helpers

API responses use a success envelope:

	middleware.DataResponse(w, http.StatusCreated, event)   // {"success":true,"data":{...}}
	middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")

JSONResponse writes a bare body and is used where no envelope is wanted,
such as /health.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
