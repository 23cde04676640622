package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/christopherklint97/kalendr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	events    []store.Event
	err       error
	queries   [][2]string
	inserted  []store.Event
	exchanges []string
}

func (f *fakeStore) EventsForUser(ctx context.Context, userID, from, to string) ([]store.Event, error) {
	f.queries = append(f.queries, [2]string{from, to})
	return f.events, f.err
}

func (f *fakeStore) InsertEvent(ctx context.Context, e store.Event) (store.Event, error) {
	e.ID = "ev-1"
	f.inserted = append(f.inserted, e)
	return e, nil
}

func (f *fakeStore) LogExchange(ctx context.Context, userID, text, intent, message string) error {
	f.exchanges = append(f.exchanges, intent)
	return nil
}

type fakeProvider struct {
	resp  *assistant.Response
	err   error
	calls int
	last  Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Respond(ctx context.Context, req Request) (*assistant.Response, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

var fixedNow = func() time.Time { return time.Date(2024, time.January, 10, 15, 0, 0, 0, time.UTC) }

func TestAskFetchesWindowPerIntent(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(assistant.New(assistant.Options{}), st, WithClock(fixedNow))

	a := svc.Ask(context.Background(), "alice", "kdy mám volno?", nil)
	assert.Equal(t, assistant.IntentCalendarAnalysis, a.Response.Type)
	assert.Equal(t, SourceRules, a.Source)
	assert.False(t, a.Fallback)

	svc.Ask(context.Background(), "alice", "kdy se můžeme sejít?", nil)
	svc.Ask(context.Background(), "alice", "ahoj", nil)

	assert.Equal(t, [][2]string{
		{"2024-01-10", "2024-02-09"},
		{"2024-01-10", "2024-01-24"},
	}, st.queries)
	assert.Equal(t, []string{"calendar_analysis", "meeting_suggestion", "greeting"}, st.exchanges)
}

func TestAskUsesStoredEvents(t *testing.T) {
	st := &fakeStore{events: []store.Event{
		{Date: "2024-01-10", Time: "09:00", EndTime: "17:30", Title: "Práce", GroupName: "Rodina"},
	}}
	svc := NewService(assistant.New(assistant.Options{}), st, WithClock(fixedNow))

	a := svc.Ask(context.Background(), "alice", "pozvat kamaráda na kafe", nil)

	require.NotEmpty(t, a.Response.Suggestions)
	assert.Equal(t, "2024-01-11", a.Response.Suggestions[0].Date)
}

func TestAskStoreFailureApologises(t *testing.T) {
	st := &fakeStore{err: errors.New("database is locked")}
	remote := &fakeProvider{}
	svc := NewService(assistant.New(assistant.Options{}), st, WithClock(fixedNow), WithRemote(remote, time.Second))

	a := svc.Ask(context.Background(), "alice", "kdy mám volno?", nil)

	assert.Equal(t, SourceApology, a.Source)
	assert.Equal(t, apologyMessage, a.Response.Message)
	assert.Equal(t, assistant.IntentHelp, a.Response.Type)
	assert.Zero(t, remote.calls)
	assert.Empty(t, st.exchanges)
}

func TestAskStoreFailureWithRemoteStillGreets(t *testing.T) {
	ctx := context.Background()
	engine := assistant.New(assistant.Options{})

	t.Run("remote fails too", func(t *testing.T) {
		st := &fakeStore{err: errors.New("database is locked")}
		remote := &fakeProvider{err: errors.New("503")}
		svc := NewService(engine, st, WithClock(fixedNow), WithRemote(remote, time.Second))

		a := svc.Ask(ctx, "alice", "ahoj", nil)

		assert.Equal(t, assistant.IntentGreeting, a.Response.Type)
		assert.Equal(t, SourceRules, a.Source)
		assert.True(t, a.Fallback)
		assert.Equal(t, 1, remote.calls)
		assert.Empty(t, remote.last.Events)
		assert.Equal(t, []string{"greeting"}, st.exchanges)
	})

	t.Run("remote answers", func(t *testing.T) {
		st := &fakeStore{err: errors.New("database is locked")}
		remote := &fakeProvider{resp: &assistant.Response{Message: "Ahoj!", Type: assistant.IntentGreeting}}
		svc := NewService(engine, st, WithClock(fixedNow), WithRemote(remote, time.Second))

		a := svc.Ask(ctx, "alice", "ahoj", nil)

		assert.Equal(t, SourceRemote, a.Source)
		assert.Equal(t, "Ahoj!", a.Response.Message)
	})

	t.Run("analysis still apologises", func(t *testing.T) {
		st := &fakeStore{err: errors.New("database is locked")}
		remote := &fakeProvider{}
		svc := NewService(engine, st, WithClock(fixedNow), WithRemote(remote, time.Second))

		a := svc.Ask(ctx, "alice", "kdy mám volno?", nil)

		assert.Equal(t, SourceApology, a.Source)
		assert.Zero(t, remote.calls)
	})
}

func TestAskRemoteFallback(t *testing.T) {
	ctx := context.Background()
	engine := assistant.New(assistant.Options{})

	t.Run("remote answer wins", func(t *testing.T) {
		st := &fakeStore{}
		remote := &fakeProvider{resp: &assistant.Response{Message: "Hi!", Type: assistant.IntentGreeting}}
		svc := NewService(engine, st, WithClock(fixedNow), WithRemote(remote, time.Second))

		history := []Message{{Role: "user", Content: "ahoj"}}
		a := svc.Ask(ctx, "alice", "hello", history)

		assert.Equal(t, SourceRemote, a.Source)
		assert.False(t, a.Fallback)
		assert.Equal(t, "Hi!", a.Response.Message)
		assert.Equal(t, history, remote.last.History)
		assert.Equal(t, fixedNow().Truncate(24*time.Hour), remote.last.Today)
		// The remote model always sees the analysis window.
		assert.Equal(t, [][2]string{{"2024-01-10", "2024-02-09"}}, st.queries)
	})

	t.Run("remote error", func(t *testing.T) {
		remote := &fakeProvider{err: errors.New("503")}
		svc := NewService(engine, &fakeStore{}, WithClock(fixedNow), WithRemote(remote, time.Second))

		a := svc.Ask(ctx, "alice", "ahoj", nil)

		assert.Equal(t, SourceRules, a.Source)
		assert.True(t, a.Fallback)
		assert.Equal(t, assistant.IntentGreeting, a.Response.Type)
		assert.Equal(t, 1, remote.calls)
	})

	t.Run("remote answer invalid", func(t *testing.T) {
		draft := &assistant.EventDraft{Title: "x", Date: "2024-01-11"}
		remote := &fakeProvider{resp: &assistant.Response{Message: "ok", Type: assistant.IntentEventCreation, EventData: draft}}
		svc := NewService(engine, &fakeStore{}, WithClock(fixedNow), WithRemote(remote, time.Second))

		a := svc.Ask(ctx, "alice", "oběd zítra", nil)

		assert.Equal(t, SourceRules, a.Source)
		assert.True(t, a.Fallback)
		assert.Nil(t, a.Response.EventData)
	})
}

func TestConfirmDraft(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(assistant.New(assistant.Options{}), st, WithClock(fixedNow))

	_, err := svc.ConfirmDraft(context.Background(), "alice", "g1", assistant.EventDraft{Title: "Oběd", Date: "2024-01-11"})
	assert.ErrorIs(t, err, ErrDraftIncomplete)

	ev, err := svc.ConfirmDraft(context.Background(), "alice", "g1",
		assistant.EventDraft{Title: "Oběd", Date: "2024-01-11", Time: "12:00", Description: "oběd zítra ve 12:00"})
	require.NoError(t, err)
	assert.Equal(t, "ev-1", ev.ID)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, store.Event{
		ID: "ev-1", GroupID: "g1", Title: "Oběd", Description: "oběd zítra ve 12:00",
		Date: "2024-01-11", Time: "12:00", CreatedBy: "alice",
	}, st.inserted[0])
}
