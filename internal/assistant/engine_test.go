package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeEventCreationGating(t *testing.T) {
	e := New(Options{})

	t.Run("date and time", func(t *testing.T) {
		r := e.Compose(IntentEventCreation, "večeře zítra v 19:30", nil, wednesday)
		require.NotNil(t, r.EventData)
		assert.Equal(t, "Večeře", r.EventData.Title)
		assert.Equal(t, "2024-01-11", r.EventData.Date)
		assert.Equal(t, "19:30", r.EventData.Time)
		assert.Contains(t, r.Message, "Mám ji uložit?")
		assert.Equal(t, IntentEventCreation, r.Type)
	})

	t.Run("date only", func(t *testing.T) {
		r := e.Compose(IntentEventCreation, "zítra", nil, wednesday)
		assert.Nil(t, r.EventData)
		assert.Contains(t, r.Message, "2024-01-11 (Čt)")
		assert.Contains(t, r.Message, "V kolik hodin")
	})

	t.Run("time only", func(t *testing.T) {
		r := e.Compose(IntentEventCreation, "14:00", nil, wednesday)
		assert.Nil(t, r.EventData)
		assert.Contains(t, r.Message, "Který den")
	})

	t.Run("neither", func(t *testing.T) {
		r := e.Compose(IntentEventCreation, "vytvoř něco", nil, wednesday)
		assert.Nil(t, r.EventData)
		assert.Equal(t, clarifyMessage, r.Message)
	})
}

func TestComposeAnalysisEmptyCalendar(t *testing.T) {
	r := New(Options{}).Respond("kdy mám volno?", nil, wednesday)

	assert.Equal(t, IntentCalendarAnalysis, r.Type)
	assert.Contains(t, r.Message, "úplně prázdný")
	assert.NotContains(t, r.Message, "2024-01")
	assert.Nil(t, r.EventData)
	assert.Empty(t, r.Suggestions)
}

func TestComposeAnalysisTruncates(t *testing.T) {
	events := []CalendarEvent{
		{Date: "2024-01-10"}, {Date: "2024-01-12"}, {Date: "2024-01-14"}, {Date: "2024-01-16"},
	}

	r := New(Options{}).Respond("kdy mám volno", events, wednesday)

	assert.Contains(t, r.Message, "máš 26 volných dní")
	assert.Contains(t, r.Message, "2024-01-11 (Čt), 2024-01-13 (So), 2024-01-15 (Po), 2024-01-17 (St), 2024-01-18 (Čt) a 21 dalších")
	assert.Contains(t, r.Message, "Obsazené dny: 2024-01-10 (St), 2024-01-12 (Pá), 2024-01-14 (Ne)")
	assert.NotContains(t, r.Message, "2024-01-16")
}

func TestComposeMeetingSuggestions(t *testing.T) {
	events := []CalendarEvent{{Date: "2024-01-10", Time: "09:00", EndTime: "12:00"}}

	r := New(Options{}).Respond("kdy se můžeme sejít na kafe?", events, wednesday)

	assert.Equal(t, IntentMeetingSuggestion, r.Type)
	require.Len(t, r.Suggestions, 5)
	assert.Equal(t, "14:00", r.Suggestions[0].Time)
	assert.Equal(t, "2024-01-10", r.Suggestions[0].Date)
	assert.Equal(t, "17:00", r.Suggestions[3].Time)
	assert.Equal(t, "2024-01-11", r.Suggestions[4].Date)
	assert.Equal(t, "09:00", r.Suggestions[4].Time)
	assert.Contains(t, r.Message, "• St 10. 1. v 14:00")
}

func TestComposeMeetingNoSlots(t *testing.T) {
	e := New(Options{SlotWindowDays: 1, CandidateTimes: []string{"10:00"}})
	events := []CalendarEvent{{Date: "2024-01-10", Time: "10:00"}}

	r := e.Respond("pozvat na kafe", events, wednesday)

	assert.Empty(t, r.Suggestions)
	assert.Contains(t, r.Message, "nenašel")
}

func TestRespondGreetingAndHelp(t *testing.T) {
	e := New(Options{})
	assert.Equal(t, IntentGreeting, e.Respond("Dobrý den", nil, wednesday).Type)

	help := e.Respond("???", nil, wednesday)
	assert.Equal(t, IntentHelp, help.Type)
	assert.Contains(t, help.Message, "na 30 dní dopředu")
	assert.Contains(t, help.Message, "na 14 dní dopředu")

	custom := New(Options{AnalysisWindowDays: 7, SlotWindowDays: 3})
	help = custom.Respond("???", nil, wednesday)
	assert.Contains(t, help.Message, "na 7 dní dopředu")
	assert.Contains(t, help.Message, "na 3 dní dopředu")
}

func TestRespondIsIdempotent(t *testing.T) {
	e := New(Options{})
	events := []CalendarEvent{
		{Date: "2024-01-12", Time: "10:00", EndTime: "11:00"},
		{Date: "2024-01-10"},
	}
	snapshot := append([]CalendarEvent(nil), events...)

	for _, text := range []string{"ahoj", "kdy mám volno", "sraz na kafe", "oběd zítra v 12:00", "???"} {
		first, err := json.Marshal(e.Respond(text, events, wednesday))
		require.NoError(t, err)
		second, err := json.Marshal(e.Respond(text, events, wednesday))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), text)
	}

	a, _ := json.Marshal(AnalyzeFreeBusy(events, wednesday, 30))
	b, _ := json.Marshal(AnalyzeFreeBusy(events, wednesday, 30))
	assert.Equal(t, a, b)

	assert.Equal(t, snapshot, events)
}

func TestResponseJSON(t *testing.T) {
	r := New(Options{}).Respond("oběd zítra v 12:00", nil, wednesday)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "event_creation", raw["type"])
	assert.NotContains(t, raw, "suggestions")

	draft := raw["eventData"].(map[string]any)
	assert.Equal(t, "Oběd", draft["title"])
	assert.Equal(t, "12:00", draft["time"])
	assert.Contains(t, draft, "endTime")
	assert.Nil(t, draft["endTime"])

	var back Response
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestResponseJSONWithoutDraft(t *testing.T) {
	data, err := json.Marshal(New(Options{}).Respond("ahoj", nil, wednesday))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"eventData":null`)
}

func TestEngineWindow(t *testing.T) {
	e := New(Options{})
	assert.Equal(t, 30, e.Window(IntentCalendarAnalysis))
	assert.Equal(t, 14, e.Window(IntentMeetingSuggestion))
	assert.Zero(t, e.Window(IntentEventCreation))
	assert.Zero(t, e.Window(IntentGreeting))
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.Error(t, Options{CandidateTimes: []string{"9:00"}}.Validate())
	assert.Error(t, Options{CandidateTimes: []string{"25:00"}}.Validate())
	assert.Error(t, Options{SlotWindowDays: -1}.Validate())
}
