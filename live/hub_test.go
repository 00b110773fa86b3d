// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/survey"
	"github.com/danielhkuo/livepoll/testutil"
)

type fixture struct {
	db   *sql.DB
	hub  *Hub
	key  RoomKey
	opts []string
}

func setup(t *testing.T, options ...string) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })

	eventID := testutil.CreateTestEvent(t, db, "Demo")
	if len(options) == 0 {
		options = []string{"Red", "Blue"}
	}
	surveyID, opts := testutil.CreateTestSurvey(t, db, eventID, "Q1", options...)

	return &fixture{
		db:   db,
		hub:  NewHub(survey.NewService(db)),
		key:  RoomKey{EventID: eventID, SurveyID: surveyID},
		opts: opts,
	}
}

func (f *fixture) vote(option int) models.SubmitResponseRequest {
	return models.SubmitResponseRequest{EventID: f.key.EventID, SurveyID: f.key.SurveyID, OptionID: f.opts[option]}
}

func TestJoinSendsCurrentSnapshot(t *testing.T) {
	f := setup(t)
	testutil.AddTestResponse(t, f.db, f.key.SurveyID, f.opts[1], "tok")

	c := newRecorder("viewer")
	f.hub.Join(context.Background(), c, f.key)

	if !equalEvents(c.events(), models.EventSurveyResults) {
		t.Fatalf("events = %v", c.events())
	}
	res := c.snapshot(t)
	if res == nil || res.TotalResponses != 1 || res.PerOption[1].Count != 1 {
		t.Errorf("unexpected snapshot %+v", res)
	}
}

func TestJoinUnknownSurveySendsNull(t *testing.T) {
	f := setup(t)
	c := newRecorder("viewer")
	key := RoomKey{EventID: f.key.EventID, SurveyID: "never-created"}

	f.hub.Join(context.Background(), c, key)

	frame := c.last(t, models.EventSurveyResults)
	if string(frame.Data) != "null" {
		t.Errorf("data = %s, want null", frame.Data)
	}
	if len(f.hub.Rooms().Members(key)) != 1 {
		t.Error("join on an unknown survey should still register membership")
	}
}

// Two viewers watch a survey while a third connection votes.
func TestSubmitBroadcastsToRoom(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v1, v2, voter := newRecorder("v1"), newRecorder("v2"), newRecorder("voter")
	f.hub.Join(ctx, v1, f.key)
	f.hub.Join(ctx, v2, f.key)
	v1.reset()
	v2.reset()

	f.hub.Submit(ctx, voter, f.vote(0))

	for _, v := range []*recorder{v1, v2} {
		if !equalEvents(v.events(), models.EventSurveyResults) {
			t.Errorf("%s events = %v", v.id, v.events())
			continue
		}
		if res := v.snapshot(t); res.TotalResponses != 1 || res.PerOption[0].Count != 1 {
			t.Errorf("%s snapshot = %+v", v.id, res)
		}
	}

	if !equalEvents(voter.events(), models.EventResponseSubmitted) {
		t.Fatalf("voter events = %v", voter.events())
	}
	var ack models.ResponseSubmitted
	if err := json.Unmarshal(voter.last(t, models.EventResponseSubmitted).Data, &ack); err != nil {
		t.Fatal(err)
	}
	if ack.ResponseID == "" || ack.UserToken == "" || ack.SubmittedAt.IsZero() {
		t.Errorf("incomplete ack %+v", ack)
	}
}

func TestSubmitterInRoomGetsAckThenSnapshot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	c := newRecorder("c")
	f.hub.Join(ctx, c, f.key)
	c.reset()

	f.hub.Submit(ctx, c, f.vote(1))

	if !equalEvents(c.events(), models.EventResponseSubmitted, models.EventSurveyResults) {
		t.Errorf("events = %v", c.events())
	}
}

func TestRoomIsolation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	otherSurvey, otherOpts := testutil.CreateTestSurvey(t, f.db, f.key.EventID, "Q2", "Yes", "No")
	other := RoomKey{EventID: f.key.EventID, SurveyID: otherSurvey}

	watcher := newRecorder("watcher")
	f.hub.Join(ctx, watcher, f.key)
	watcher.reset()

	f.hub.Submit(ctx, newRecorder("voter"), models.SubmitResponseRequest{
		EventID: other.EventID, SurveyID: other.SurveyID, OptionID: otherOpts[0],
	})

	if got := watcher.events(); len(got) != 0 {
		t.Errorf("watcher of %s received %v", f.key, got)
	}
}

func TestSubmitErrorGoesToOriginatorOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	watcher, voter := newRecorder("watcher"), newRecorder("voter")
	f.hub.Join(ctx, watcher, f.key)
	watcher.reset()

	tests := []struct {
		name string
		req  models.SubmitResponseRequest
		msg  string
	}{
		{"missing option", models.SubmitResponseRequest{EventID: f.key.EventID, SurveyID: f.key.SurveyID}, "eventId, surveyId and optionId are required"},
		{"unknown option", models.SubmitResponseRequest{EventID: f.key.EventID, SurveyID: f.key.SurveyID, OptionID: "nope"}, "Option not found"},
		{"unknown survey", models.SubmitResponseRequest{EventID: f.key.EventID, SurveyID: "nope", OptionID: f.opts[0]}, "Survey not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voter.reset()
			f.hub.Submit(ctx, voter, tt.req)

			var msg models.ErrorMessage
			if err := json.Unmarshal(voter.last(t, models.EventError).Data, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.Message != tt.msg {
				t.Errorf("message = %q, want %q", msg.Message, tt.msg)
			}
			if !equalEvents(voter.events(), models.EventError) {
				t.Errorf("voter events = %v", voter.events())
			}
		})
	}

	if got := watcher.events(); len(got) != 0 {
		t.Errorf("watcher received %v after failed submissions", got)
	}
	if n := testutil.CountResponses(t, f.db, f.key.SurveyID); n != 0 {
		t.Errorf("failed submissions inserted %d rows", n)
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	c := newRecorder("c")
	f.hub.Join(ctx, c, f.key)
	f.hub.Leave(c, f.key)
	f.hub.Leave(c, f.key)
	c.reset()

	f.hub.Submit(ctx, newRecorder("voter"), f.vote(0))

	if got := c.events(); len(got) != 0 {
		t.Errorf("left connection received %v", got)
	}
}

func TestDisconnectRemovesFromAllRooms(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other, _ := testutil.CreateTestSurvey(t, f.db, f.key.EventID, "Q2", "Yes", "No")

	c, watcher := newRecorder("c"), newRecorder("watcher")
	f.hub.Connect(c)
	f.hub.Join(ctx, c, f.key)
	f.hub.Join(ctx, c, RoomKey{EventID: f.key.EventID, SurveyID: other})
	f.hub.Join(ctx, watcher, f.key)
	watcher.reset()

	f.hub.Disconnect(c)

	if got := f.hub.Rooms().RoomsOf(c); len(got) != 0 {
		t.Errorf("still in rooms %v", got)
	}
	if got := watcher.events(); len(got) != 0 {
		t.Errorf("disconnect triggered frames %v", got)
	}
}

func TestBroadcastSkipsFailingMember(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	broken, healthy := newRecorder("broken"), newRecorder("healthy")
	f.hub.Join(ctx, broken, f.key)
	f.hub.Join(ctx, healthy, f.key)
	broken.fail = true
	healthy.reset()

	f.hub.Submit(ctx, newRecorder("voter"), f.vote(0))

	if res := healthy.snapshot(t); res.TotalResponses != 1 {
		t.Errorf("healthy snapshot total = %d, want 1", res.TotalResponses)
	}
}

func TestConcurrentSubmitAndBroadcast(t *testing.T) {
	f := setup(t, "A", "B", "C")
	ctx := context.Background()

	viewer := newRecorder("viewer")
	f.hub.Join(ctx, viewer, f.key)

	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.hub.Submit(ctx, newRecorder("voter"), f.vote(i%3))
		}(i)
	}
	wg.Wait()

	// Snapshots may arrive out of order, but the largest one has every vote
	best := 0
	viewer.mu.Lock()
	for _, fr := range viewer.frames {
		var res models.SurveyResults
		if err := json.Unmarshal(fr.Data, &res); err == nil && res.TotalResponses > best {
			best = res.TotalResponses
		}
	}
	viewer.mu.Unlock()

	if best != voters {
		t.Errorf("largest snapshot total = %d, want %d", best, voters)
	}
}

func TestDispatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := newRecorder("c")

	join := `{"event":"join-survey","data":{"eventId":"` + f.key.EventID + `","surveyId":"` + f.key.SurveyID + `"}}`
	f.hub.Dispatch(ctx, c, []byte(join))
	if !equalEvents(c.events(), models.EventSurveyResults) {
		t.Fatalf("join events = %v", c.events())
	}

	c.reset()
	submit := `{"event":"submit-response","data":{"eventId":"` + f.key.EventID + `","surveyId":"` + f.key.SurveyID + `","optionId":"` + f.opts[0] + `","userToken":"abc"}}`
	f.hub.Dispatch(ctx, c, []byte(submit))
	if !equalEvents(c.events(), models.EventResponseSubmitted, models.EventSurveyResults) {
		t.Fatalf("submit events = %v", c.events())
	}

	c.reset()
	leave := `{"event":"leave-survey","data":{"eventId":"` + f.key.EventID + `","surveyId":"` + f.key.SurveyID + `"}}`
	f.hub.Dispatch(ctx, c, []byte(leave))
	if len(c.events()) != 0 || len(f.hub.Rooms().RoomsOf(c)) != 0 {
		t.Errorf("leave produced %v, rooms %v", c.events(), f.hub.Rooms().RoomsOf(c))
	}

	bad := []struct {
		name string
		raw  string
		msg  string
	}{
		{"garbage", `not json`, "Invalid message format"},
		{"unknown event", `{"event":"vote","data":{}}`, "Unknown event: vote"},
		{"join without ids", `{"event":"join-survey","data":{}}`, "eventId and surveyId are required"},
		{"join without data", `{"event":"join-survey"}`, "eventId and surveyId are required"},
		{"submit with bad payload", `{"event":"submit-response","data":"x"}`, "Invalid message format"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			c.reset()
			f.hub.Dispatch(ctx, c, []byte(tt.raw))

			var msg models.ErrorMessage
			if err := json.Unmarshal(c.last(t, models.EventError).Data, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.Message != tt.msg {
				t.Errorf("message = %q, want %q", msg.Message, tt.msg)
			}
		})
	}
}

// loopbackRelay stands in for Redis: published frames come straight back
// through Deliver, the same path the Redis subscriber uses.
type loopbackRelay struct {
	hub       *Hub
	published []RoomKey
	fail      bool
	closed    bool
}

func (l *loopbackRelay) Publish(_ context.Context, key RoomKey, frame []byte) error {
	if l.fail {
		return errors.New("redis unavailable")
	}
	l.published = append(l.published, key)
	l.hub.Deliver(key, frame)
	return nil
}

func (l *loopbackRelay) Close() error {
	l.closed = true
	return nil
}

func TestBroadcastThroughRelay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	relay := &loopbackRelay{}
	hub := NewHub(survey.NewService(f.db), WithRelay(relay))
	relay.hub = hub

	viewer := newRecorder("viewer")
	hub.Join(ctx, viewer, f.key)
	viewer.reset()

	hub.Submit(ctx, newRecorder("voter"), f.vote(0))
	if len(relay.published) != 1 || relay.published[0] != f.key {
		t.Errorf("published = %v", relay.published)
	}
	if !equalEvents(viewer.events(), models.EventSurveyResults) {
		t.Errorf("viewer events = %v, want a single snapshot", viewer.events())
	}

	relay.fail = true
	viewer.reset()
	hub.Submit(ctx, newRecorder("voter"), f.vote(1))
	if res := viewer.snapshot(t); res.TotalResponses != 2 {
		t.Errorf("fallback snapshot total = %d, want 2", res.TotalResponses)
	}

	if err := hub.Close(); err != nil {
		t.Fatal(err)
	}
	if !relay.closed {
		t.Error("Close should close the relay")
	}
	if rooms, _ := hub.Rooms().Stats(); rooms != 0 {
		t.Errorf("rooms after Close = %d", rooms)
	}
}
