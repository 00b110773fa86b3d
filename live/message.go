// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/livepoll/models"
)

// EncodeFrame wraps data in a {"event", "data"} frame. A nil data value
// is encoded as JSON null.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(models.Frame{Event: event, Data: raw})
}

// DecodeFrame parses one client frame. The payload stays raw until the
// event name picks its type.
func DecodeFrame(raw []byte) (models.Frame, error) {
	var f models.Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return models.Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event == "" {
		return models.Frame{}, fmt.Errorf("decode frame: missing event name")
	}
	return f, nil
}

func errorFrame(msg string) []byte {
	b, _ := EncodeFrame(models.EventError, models.ErrorMessage{Message: msg})
	return b
}

// relayEnvelope is what travels over the Redis channel: the room plus
// the already-encoded frame.
type relayEnvelope struct {
	EventID  string          `json:"eventId"`
	SurveyID string          `json:"surveyId"`
	Payload  json.RawMessage `json:"payload"`
}

func encodeRelay(key RoomKey, frame []byte) ([]byte, error) {
	return json.Marshal(relayEnvelope{EventID: key.EventID, SurveyID: key.SurveyID, Payload: frame})
}

func decodeRelay(raw []byte) (RoomKey, []byte, error) {
	var env relayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return RoomKey{}, nil, fmt.Errorf("decode relay message: %w", err)
	}
	if env.EventID == "" || env.SurveyID == "" || len(env.Payload) == 0 {
		return RoomKey{}, nil, fmt.Errorf("decode relay message: incomplete envelope")
	}
	return RoomKey{EventID: env.EventID, SurveyID: env.SurveyID}, env.Payload, nil
}
