package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
)

// Message is one turn of the conversation the client sends along.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is everything a provider may use to answer.
type Request struct {
	Text    string
	History []Message
	Events  []assistant.CalendarEvent
	Today   time.Time
}

// Provider answers an assistant request with a remote model.
type Provider interface {
	Name() string
	Respond(ctx context.Context, req Request) (*assistant.Response, error)
}

// validateResponse rejects replies the caller could not act on safely.
func validateResponse(r *assistant.Response) error {
	if r == nil || r.Message == "" {
		return fmt.Errorf("empty response")
	}
	known := false
	for _, i := range assistant.Intents {
		if r.Type == i {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown response type %q", r.Type)
	}
	if r.EventData != nil && !r.EventData.Actionable() {
		return fmt.Errorf("event data without date and time")
	}
	return nil
}
