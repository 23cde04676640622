package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/christopherklint97/kalendr/internal/store"
)

const apologyMessage = "Omlouvám se, teď se mi nepodařilo načíst tvůj kalendář. Zkus to prosím za chvíli."

var ErrDraftIncomplete = errors.New("draft needs both a date and a time")

// Answer sources.
const (
	SourceRules   = "rules"
	SourceRemote  = "remote"
	SourceApology = "apology"
)

// EventStore is the part of the store the service needs.
type EventStore interface {
	EventsForUser(ctx context.Context, userID, from, to string) ([]store.Event, error)
	InsertEvent(ctx context.Context, e store.Event) (store.Event, error)
	LogExchange(ctx context.Context, userID, text, intent, message string) error
}

// Answer is a response plus where it came from. Fallback is set when a
// remote provider was configured but the rules answered.
type Answer struct {
	Response assistant.Response
	Intent   assistant.Intent
	Source   string
	Fallback bool
}

// Service puts the rule engine behind the event store and an optional
// remote provider. A failing remote provider falls back to the rules; a
// failing store short-circuits to an apology.
type Service struct {
	engine        *assistant.Engine
	store         EventStore
	remote        Provider
	remoteTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

type ServiceOption func(*Service)

func WithRemote(p Provider, timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.remote = p
		s.remoteTimeout = timeout
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(engine *assistant.Engine, st EventStore, opts ...ServiceOption) *Service {
	s := &Service{
		engine: engine,
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Engine() *assistant.Engine { return s.engine }

// Today is the current local date at midnight.
func (s *Service) Today() time.Time {
	n := s.now()
	y, m, d := n.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, n.Location())
}

// Events loads the user's events for days [today, today+days).
func (s *Service) Events(ctx context.Context, userID string, days int) ([]assistant.CalendarEvent, error) {
	today := s.Today()
	from := today.Format(assistant.DateLayout)
	to := today.AddDate(0, 0, days).Format(assistant.DateLayout)

	events, err := s.store.EventsForUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return store.CalendarEvents(events), nil
}

func (s *Service) Ask(ctx context.Context, userID, text string, history []Message) Answer {
	start := time.Now()
	today := s.Today()
	intent := assistant.Classify(text)

	needed := s.engine.Window(intent)
	window := needed
	if s.remote != nil {
		// The remote model gets the widest view regardless of intent.
		window = max(window, s.engine.Options().AnalysisWindowDays)
	}

	var events []assistant.CalendarEvent
	if window > 0 {
		var err error
		events, err = s.Events(ctx, userID, window)
		if err != nil && needed > 0 {
			s.logger.Error("loading events failed", "user", userID, "intent", intent, "error", err)
			return Answer{
				Response: assistant.Response{Message: apologyMessage, Type: assistant.IntentHelp},
				Intent:   intent,
				Source:   SourceApology,
			}
		}
		if err != nil {
			// The rules can answer this intent without events.
			s.logger.Warn("loading events failed, continuing without them", "user", userID, "intent", intent, "error", err)
			events = nil
		}
	}

	answer := Answer{Intent: intent, Source: SourceRules}
	if resp, ok := s.askRemote(ctx, Request{Text: text, History: history, Events: events, Today: today}); ok {
		answer.Response = *resp
		answer.Source = SourceRemote
	} else {
		answer.Response = s.engine.Compose(intent, text, events, today)
		answer.Fallback = s.remote != nil
	}

	if err := s.store.LogExchange(ctx, userID, text, string(answer.Response.Type), answer.Response.Message); err != nil {
		s.logger.Warn("logging exchange failed", "user", userID, "error", err)
	}

	s.logger.Debug("assistant answered",
		"user", userID,
		"intent", intent,
		"type", answer.Response.Type,
		"source", answer.Source,
		"events", len(events),
		"elapsed", time.Since(start),
	)
	return answer
}

func (s *Service) askRemote(ctx context.Context, req Request) (*assistant.Response, bool) {
	if s.remote == nil {
		return nil, false
	}
	if s.remoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.remoteTimeout)
		defer cancel()
	}

	resp, err := s.remote.Respond(ctx, req)
	if err == nil {
		err = validateResponse(resp)
	}
	if err != nil {
		s.logger.Warn("remote provider failed, using rules", "provider", s.remote.Name(), "error", err)
		return nil, false
	}
	return resp, true
}

// ConfirmDraft stores an actionable draft as an event in groupID.
func (s *Service) ConfirmDraft(ctx context.Context, userID, groupID string, draft assistant.EventDraft) (store.Event, error) {
	if !draft.Actionable() {
		return store.Event{}, ErrDraftIncomplete
	}
	return s.store.InsertEvent(ctx, store.Event{
		GroupID:     groupID,
		Title:       draft.Title,
		Description: draft.Description,
		Date:        draft.Date,
		Time:        draft.Time,
		EndTime:     draft.EndTime,
		CreatedBy:   userID,
	})
}
