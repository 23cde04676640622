package assistant

import (
	"fmt"
	"time"
)

// Options tunes the engine. Zero values fall back to the defaults.
type Options struct {
	AnalysisWindowDays int
	SlotWindowDays     int
	CandidateTimes     []string
	SuggestionLimit    int
}

func DefaultOptions() Options {
	return Options{
		AnalysisWindowDays: DefaultAnalysisWindowDays,
		SlotWindowDays:     DefaultSlotWindowDays,
		CandidateTimes:     append([]string(nil), DefaultCandidateTimes...),
		SuggestionLimit:    DefaultSuggestionLimit,
	}
}

// Validate checks that windows are positive and candidate times are HH:MM.
func (o Options) Validate() error {
	if o.AnalysisWindowDays < 0 || o.SlotWindowDays < 0 || o.SuggestionLimit < 0 {
		return fmt.Errorf("windows and suggestion limit must not be negative")
	}
	for _, t := range o.CandidateTimes {
		if _, err := time.Parse(ClockLayout, t); err != nil || len(t) != len(ClockLayout) {
			return fmt.Errorf("candidate time %q is not HH:MM", t)
		}
	}
	return nil
}

// Engine bundles Options with the pipeline: classify, then analyze, find
// slots or extract, then compose. It is immutable and safe for concurrent use.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.AnalysisWindowDays <= 0 {
		opts.AnalysisWindowDays = def.AnalysisWindowDays
	}
	if opts.SlotWindowDays <= 0 {
		opts.SlotWindowDays = def.SlotWindowDays
	}
	if len(opts.CandidateTimes) == 0 {
		opts.CandidateTimes = def.CandidateTimes
	} else {
		opts.CandidateTimes = append([]string(nil), opts.CandidateTimes...)
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = def.SuggestionLimit
	}
	return &Engine{opts: opts}
}

func (e *Engine) Options() Options {
	o := e.opts
	o.CandidateTimes = append([]string(nil), e.opts.CandidateTimes...)
	return o
}

// Window is how many days of events, starting today, the caller must fetch
// before composing a response for intent. Zero means none are needed.
func (e *Engine) Window(intent Intent) int {
	switch intent {
	case IntentCalendarAnalysis:
		return e.opts.AnalysisWindowDays
	case IntentMeetingSuggestion:
		return e.opts.SlotWindowDays
	default:
		return 0
	}
}

// Respond classifies text and composes the reply in one step.
func (e *Engine) Respond(text string, events []CalendarEvent, today time.Time) Response {
	return e.Compose(Classify(text), text, events, today)
}

// Compose builds the reply for an already classified intent.
func (e *Engine) Compose(intent Intent, text string, events []CalendarEvent, today time.Time) Response {
	switch intent {
	case IntentGreeting:
		return composeGreeting()
	case IntentCalendarAnalysis:
		fb := AnalyzeFreeBusy(events, today, e.opts.AnalysisWindowDays)
		return composeAnalysis(events, fb, e.opts.AnalysisWindowDays)
	case IntentMeetingSuggestion:
		slots := e.FreeSlots(events, today)
		return composeMeeting(slots, e.opts.SlotWindowDays, e.opts.SuggestionLimit)
	case IntentEventCreation:
		return composeEventCreation(ExtractEventDraft(text, today), today.Location())
	default:
		return composeHelp(e.opts.AnalysisWindowDays, e.opts.SlotWindowDays)
	}
}

// FreeSlots runs the slot finder with the engine's window and grid.
func (e *Engine) FreeSlots(events []CalendarEvent, today time.Time) []FreeSlot {
	return FindFreeSlots(events, today, e.opts.SlotWindowDays, e.opts.CandidateTimes)
}
