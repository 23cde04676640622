package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/christopherklint97/kalendr/internal/ai"
	"github.com/christopherklint97/kalendr/internal/assistant"
)

const (
	digestTitle  = "kalendr"
	lastRunKey   = "digest.last_run"
	slotsInTitle = 6
)

// StateStore keeps small key/value markers between runs.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
}

// Digest tells one user which slots are still free today.
type Digest struct {
	svc    *ai.Service
	state  StateStore
	userID string
	notify Notifier
	logger *slog.Logger
}

func NewDigest(svc *ai.Service, state StateStore, userID string, notify Notifier, logger *slog.Logger) *Digest {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notify == nil {
		notify = DesktopNotifier
	}
	return &Digest{svc: svc, state: state, userID: userID, notify: notify, logger: logger}
}

// Run computes today's free slots, notifies and records the run.
func (d *Digest) Run(ctx context.Context) error {
	events, err := d.svc.Events(ctx, d.userID, 1)
	if err != nil {
		return fmt.Errorf("loading today's events: %w", err)
	}
	today := d.svc.Today()
	slots := assistant.FindFreeSlots(events, today, 1, d.svc.Engine().Options().CandidateTimes)

	msg := BuildMessage(events, slots)
	if err := d.notify(digestTitle, msg); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}

	if err := d.state.SetState(ctx, lastRunKey, today.Format(assistant.DateLayout)); err != nil {
		return fmt.Errorf("recording digest run: %w", err)
	}
	d.logger.Info("digest sent", "user", d.userID, "events", len(events), "free_slots", len(slots))
	return nil
}

// AlreadyRan reports whether a digest went out on today's date.
func (d *Digest) AlreadyRan(ctx context.Context) (bool, error) {
	last, err := d.state.GetState(ctx, lastRunKey)
	if err != nil {
		return false, err
	}
	return last == d.svc.Today().Format(assistant.DateLayout), nil
}

// BuildMessage renders the notification body for today's events and free
// slots.
func BuildMessage(events []assistant.CalendarEvent, slots []assistant.FreeSlot) string {
	var b strings.Builder
	switch len(events) {
	case 0:
		b.WriteString("Dnes nemáš v kalendáři nic.")
	case 1:
		fmt.Fprintf(&b, "Dnes máš 1 událost: %s.", describe(events[0]))
	default:
		fmt.Fprintf(&b, "Dnes máš %d události, první: %s.", len(events), describe(events[0]))
	}

	if len(slots) == 0 {
		b.WriteString(" Volný termín už nezbývá.")
		return b.String()
	}

	times := make([]string, 0, slotsInTitle)
	for _, s := range slots {
		if len(times) == slotsInTitle {
			break
		}
		times = append(times, s.Time)
	}
	fmt.Fprintf(&b, " Volno: %s", strings.Join(times, ", "))
	if extra := len(slots) - len(times); extra > 0 {
		fmt.Fprintf(&b, " a %d dalších", extra)
	}
	b.WriteString(".")
	return b.String()
}

func describe(e assistant.CalendarEvent) string {
	if e.Time == "" {
		return e.Title + " (celý den)"
	}
	return e.Title + " v " + e.Time
}

// LastRun returns the date of the most recent digest.
func LastRun(ctx context.Context, state StateStore) (time.Time, bool) {
	v, err := state.GetState(ctx, lastRunKey)
	if err != nil || v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(assistant.DateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
