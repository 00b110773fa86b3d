// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/survey"
)

// Service is the part of survey.Service the hub needs.
type Service interface {
	SubmitResponse(ctx context.Context, req models.SubmitResponseRequest) (models.SubmitResponseResponse, error)
	ComputeResults(ctx context.Context, eventID, surveyID string) (models.SurveyResults, error)
}

// Relay carries encoded frames between server instances.
type Relay interface {
	Publish(ctx context.Context, key RoomKey, frame []byte) error
	Close() error
}

type Hub struct {
	svc     Service
	rooms   *Registry
	metrics *metrics.Metrics
	relay   Relay
}

type Option func(*Hub)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithRelay routes broadcasts through r. The relay's subscriber is then
// responsible for calling Deliver on every instance, this one included.
func WithRelay(r Relay) Option {
	return func(h *Hub) { h.relay = r }
}

func NewHub(svc Service, opts ...Option) *Hub {
	h := &Hub{svc: svc, rooms: NewRegistry()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Rooms() *Registry {
	return h.rooms
}

// Connect records a new connection. Membership starts empty.
func (h *Hub) Connect(c Conn) {
	h.metrics.ConnOpened()
	slog.Debug("live connection opened", "conn", c.ID())
}

// Join adds c to the room and sends it the current snapshot. A missing
// survey yields a null snapshot rather than an error.
func (h *Hub) Join(ctx context.Context, c Conn, key RoomKey) {
	h.rooms.Join(key, c)
	h.syncMemberships()
	slog.Debug("joined room", "conn", c.ID(), "room", key.String())

	var data any
	results, err := h.svc.ComputeResults(ctx, key.EventID, key.SurveyID)
	switch {
	case err == nil:
		data = results
	case errors.Is(err, survey.ErrNotFound):
	default:
		slog.Error("failed to compute results on join", "room", key.String(), "error", err)
	}

	frame, err := EncodeFrame(models.EventSurveyResults, data)
	if err != nil {
		slog.Error("failed to encode snapshot", "room", key.String(), "error", err)
		return
	}
	h.send(c, frame)
}

func (h *Hub) Leave(c Conn, key RoomKey) {
	if h.rooms.Leave(key, c) {
		h.syncMemberships()
		slog.Debug("left room", "conn", c.ID(), "room", key.String())
	}
}

// Submit ingests one response for c. Errors go back to c only. On
// success c gets an acknowledgement, then the room gets a fresh snapshot.
func (h *Hub) Submit(ctx context.Context, c Conn, req models.SubmitResponseRequest) {
	resp, err := h.svc.SubmitResponse(ctx, req)
	kind := survey.KindOf(err)
	h.metrics.ObserveSubmission(kind)
	if err != nil {
		if kind == survey.KindPersistence {
			slog.Error("live submission failed", "conn", c.ID(), "error", err)
		}
		h.send(c, errorFrame(survey.PublicMessage(err)))
		return
	}
	ack, err := EncodeFrame(models.EventResponseSubmitted, models.ResponseSubmitted{
		ResponseID:  resp.ResponseID,
		SubmittedAt: resp.SubmittedAt,
		UserToken:   resp.UserToken,
	})
	if err == nil {
		h.send(c, ack)
	}

	if err := h.Broadcast(ctx, RoomKey{EventID: req.EventID, SurveyID: req.SurveyID}); err != nil {
		slog.Error("broadcast after submission failed", "eventId", req.EventID, "surveyId", req.SurveyID, "error", err)
	}
}

// Broadcast recomputes the survey's snapshot and sends it to the room.
func (h *Hub) Broadcast(ctx context.Context, key RoomKey) error {
	results, err := h.svc.ComputeResults(ctx, key.EventID, key.SurveyID)
	if err != nil {
		return fmt.Errorf("compute results for %s: %w", key, err)
	}
	frame, err := EncodeFrame(models.EventSurveyResults, results)
	if err != nil {
		return err
	}
	h.metrics.Broadcast()

	if h.relay != nil {
		err := h.relay.Publish(ctx, key, frame)
		if err == nil {
			return nil
		}
		slog.Warn("relay publish failed, delivering locally", "room", key.String(), "error", err)
	}
	h.Deliver(key, frame)
	return nil
}

// Deliver sends an encoded frame to every local member of the room. A
// failed send is logged and does not stop delivery to the rest.
func (h *Hub) Deliver(key RoomKey, frame []byte) {
	members := h.rooms.Members(key)
	for _, c := range members {
		h.send(c, frame)
	}
	slog.Debug("delivered frame to room", "room", key.String(), "members", len(members))
}

// Disconnect removes c from all rooms. Nothing is broadcast.
func (h *Hub) Disconnect(c Conn) {
	rooms := h.rooms.RemoveConn(c)
	h.syncMemberships()
	h.metrics.ConnClosed()
	slog.Debug("live connection closed", "conn", c.ID(), "rooms", len(rooms))
}

// Dispatch decodes one client frame and routes it.
func (h *Hub) Dispatch(ctx context.Context, c Conn, raw []byte) {
	f, err := DecodeFrame(raw)
	if err != nil {
		slog.Debug("undecodable frame", "conn", c.ID(), "error", err)
		h.send(c, errorFrame("Invalid message format"))
		return
	}

	switch f.Event {
	case models.EventJoinSurvey, models.EventLeaveSurvey:
		var req models.RoomRequest
		if err := json.Unmarshal(f.Data, &req); err != nil || req.EventID == "" || req.SurveyID == "" {
			h.send(c, errorFrame("eventId and surveyId are required"))
			return
		}
		key := RoomKey{EventID: req.EventID, SurveyID: req.SurveyID}
		if f.Event == models.EventJoinSurvey {
			h.Join(ctx, c, key)
		} else {
			h.Leave(c, key)
		}

	case models.EventSubmitResponse:
		var req models.SubmitResponseRequest
		if err := json.Unmarshal(f.Data, &req); err != nil {
			h.send(c, errorFrame("Invalid message format"))
			return
		}
		h.Submit(ctx, c, req)

	default:
		h.send(c, errorFrame("Unknown event: "+f.Event))
	}
}

// Close clears every room and shuts the relay down.
func (h *Hub) Close() error {
	h.rooms.Clear()
	h.syncMemberships()
	if h.relay != nil {
		return h.relay.Close()
	}
	return nil
}

func (h *Hub) send(c Conn, frame []byte) {
	if err := c.Send(frame); err != nil {
		h.metrics.FrameFailed()
		slog.Warn("failed to send frame", "conn", c.ID(), "error", err)
		return
	}
	h.metrics.FrameDelivered()
}

func (h *Hub) syncMemberships() {
	_, n := h.rooms.Stats()
	h.metrics.SetMemberships(n)
}
