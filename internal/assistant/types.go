// Package assistant is the rule-based calendar assistant: it classifies free
// text, extracts event drafts and computes free/busy time over a user's
// events. Everything here is pure; callers fetch events and inject "today".
package assistant

import "encoding/json"

// Date and clock layouts used on every boundary of the package.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// CalendarEvent is a read-only view of a stored event.
// Time is empty for all-day events. EndTime is exclusive.
type CalendarEvent struct {
	Date    string `json:"date"`
	Time    string `json:"time,omitempty"`
	EndTime string `json:"end_time,omitempty"`
	Title   string `json:"title"`
	Group   string `json:"group,omitempty"`
}

type Intent string

const (
	IntentGreeting          Intent = "greeting"
	IntentCalendarAnalysis  Intent = "calendar_analysis"
	IntentMeetingSuggestion Intent = "meeting_suggestion"
	IntentEventCreation     Intent = "event_creation"
	IntentHelp              Intent = "help"
)

// Intents lists every intent in classification precedence order.
var Intents = []Intent{
	IntentGreeting,
	IntentCalendarAnalysis,
	IntentMeetingSuggestion,
	IntentEventCreation,
	IntentHelp,
}

// EventDraft is a candidate event awaiting confirmation. Empty fields were
// not found in the text and encode as JSON null.
type EventDraft struct {
	Title       string
	Date        string
	Time        string
	EndTime     string
	Description string
}

// Actionable reports whether the draft carries both a date and a start time.
func (d EventDraft) Actionable() bool {
	return d.Date != "" && d.Time != ""
}

type eventDraftJSON struct {
	Title       string  `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	EndTime     *string `json:"endTime"`
	Description string  `json:"description"`
}

func (d EventDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventDraftJSON{
		Title:       d.Title,
		Date:        nullable(d.Date),
		Time:        nullable(d.Time),
		EndTime:     nullable(d.EndTime),
		Description: d.Description,
	})
}

func (d *EventDraft) UnmarshalJSON(data []byte) error {
	var raw eventDraftJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = EventDraft{
		Title:       raw.Title,
		Date:        deref(raw.Date),
		Time:        deref(raw.Time),
		EndTime:     deref(raw.EndTime),
		Description: raw.Description,
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FreeSlot is a grid time on a given day that no event overlaps.
type FreeSlot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	DayLabel string `json:"dayLabel"`
}

// Response is the only value that leaves the package.
type Response struct {
	Message     string      `json:"message"`
	EventData   *EventDraft `json:"eventData"`
	Type        Intent      `json:"type"`
	Suggestions []FreeSlot  `json:"suggestions,omitempty"`
}
