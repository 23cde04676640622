package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/christopherklint97/kalendr/internal/ai"
	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/christopherklint97/kalendr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	inserted  []store.Event
	insertErr error
}

func (f *fakeStore) EventsForUser(ctx context.Context, userID, from, to string) ([]store.Event, error) {
	return nil, nil
}

func (f *fakeStore) InsertEvent(ctx context.Context, e store.Event) (store.Event, error) {
	if f.insertErr != nil {
		return store.Event{}, f.insertErr
	}
	e.ID = "ev-1"
	f.inserted = append(f.inserted, e)
	return e, nil
}

func (f *fakeStore) LogExchange(ctx context.Context, userID, text, intent, message string) error {
	return nil
}

func newTestApp(st *fakeStore, groupID string) *App {
	now := func() time.Time { return time.Date(2024, time.January, 10, 15, 0, 0, 0, time.UTC) }
	svc := ai.NewService(assistant.New(assistant.DefaultOptions()), st, ai.WithClock(now))
	return NewApp(svc, "alice", groupID)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd synchronously and feeds its message back into the app.
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	a.Update(cmd())
}

func TestAskAndSaveDraft(t *testing.T) {
	st := &fakeStore{}
	a := newTestApp(st, "g1")

	run(t, a, a.ask("zítra ve 12:30 oběd"))
	require.Equal(t, responseView, a.state)
	require.NotNil(t, a.response.draft())
	assert.Equal(t, "2024-01-11", a.response.draft().Date)
	assert.Contains(t, a.View(), "[a] uložit")
	assert.Len(t, a.history, 2)

	a.Update(key("a"))
	assert.Equal(t, loadingView, a.state)

	run(t, a, a.save())
	assert.Equal(t, savedView, a.state)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, "Oběd", st.inserted[0].Title)
	assert.Equal(t, "12:30", st.inserted[0].Time)
	assert.Equal(t, "g1", st.inserted[0].GroupID)
	assert.Len(t, a.Saved(), 1)
	assert.Contains(t, a.View(), "Uloženo")

	a.Update(key("x"))
	assert.Equal(t, inputView, a.state)
}

func TestSaveRefusedWithoutDraftOrGroup(t *testing.T) {
	a := newTestApp(&fakeStore{}, "")

	run(t, a, a.ask("ahoj"))
	a.Update(key("a"))
	assert.Equal(t, responseView, a.state)
	assert.Contains(t, a.response.notice, "datum i čas")

	run(t, a, a.ask("zítra v 10:00 doktor"))
	assert.NotContains(t, a.View(), "[a] uložit")
	a.Update(key("a"))
	assert.Equal(t, responseView, a.state)
	assert.Contains(t, a.response.notice, "skupina")
}

func TestSaveFailureKeepsResponse(t *testing.T) {
	a := newTestApp(&fakeStore{insertErr: errors.New("locked")}, "g1")

	run(t, a, a.ask("zítra v 10:00 doktor"))
	a.Update(key("a"))
	run(t, a, a.save())
	assert.Equal(t, responseView, a.state)
	assert.Contains(t, a.response.notice, "locked")
	assert.Empty(t, a.Saved())
}

func TestSuggestionCursorAndHistory(t *testing.T) {
	a := newTestApp(&fakeStore{}, "g1")

	run(t, a, a.ask("kdy se můžeme sejít na kafe?"))
	require.Len(t, a.response.answer.Response.Suggestions, assistant.DefaultSuggestionLimit)

	a.Update(key("k"))
	assert.Equal(t, 0, a.response.cursor)
	for range 10 {
		a.Update(key("j"))
	}
	assert.Equal(t, assistant.DefaultSuggestionLimit-1, a.response.cursor)

	for range 6 {
		run(t, a, a.ask("ahoj"))
	}
	assert.Len(t, a.history, maxHistory)

	a.Update(key("n"))
	assert.Equal(t, inputView, a.state)
}
