// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live implements survey rooms and live result fan-out.

A room is keyed by (eventId, surveyId). Connections join and leave rooms;
every successful submission recomputes the survey's tally and sends the
snapshot to every member of the room. The package knows nothing about
WebSockets: a connection is anything with an ID and a Send method, which
lets tests drive the hub with in-memory recorders.

# Components

  - Registry: concurrency-safe room membership with a reverse index
    from connection to rooms, so disconnect is a single call.
  - Hub: join, leave, submit and broadcast on top of the Registry and a
    Service (the survey package in production).
  - RedisRelay: optional cross-instance fan-out. When configured, the hub
    publishes snapshots to Redis and every instance delivers them to its
    local room members.

# Frames

Every frame is a JSON object {"event": name, "data": payload}.

	client -> server: join-survey, leave-survey, submit-response
	server -> client: survey-results, response-submitted, error

Errors go to the originating connection only. A join for a survey that
does not exist still succeeds and sends survey-results with null data.
*/
package live
