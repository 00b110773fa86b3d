// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus collectors for the livepoll server.
//
// Collectors live on a private registry so the /metrics endpoint only shows
// livepoll series. A nil *Metrics is valid and records nothing, which keeps
// call sites in the hub and middleware free of nil checks.
package metrics
