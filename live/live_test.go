// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/danielhkuo/livepoll/models"
)

// recorder is an in-memory Conn that keeps every frame it is sent.
type recorder struct {
	id   string
	fail bool

	mu     sync.Mutex
	frames []models.Frame
}

func newRecorder(id string) *recorder {
	return &recorder{id: id}
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Send(msg []byte) error {
	if r.fail {
		return errors.New("connection closed")
	}
	var f models.Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return err
	}
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
	return nil
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Event
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}

// last returns the most recent frame with the given event name.
func (r *recorder) last(t *testing.T, event string) models.Frame {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.frames) - 1; i >= 0; i-- {
		if r.frames[i].Event == event {
			return r.frames[i]
		}
	}
	t.Fatalf("%s: no %q frame in %v", r.id, event, r.frames)
	return models.Frame{}
}

func (r *recorder) snapshot(t *testing.T) *models.SurveyResults {
	t.Helper()
	f := r.last(t, models.EventSurveyResults)
	var res *models.SurveyResults
	if err := json.Unmarshal(f.Data, &res); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return res
}

func equalEvents(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
