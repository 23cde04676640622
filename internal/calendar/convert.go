package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/tj/go-naturaldate"
)

// ToCalendarEvents maps parsed occurrences onto date/clock strings in loc.
// An event that runs past midnight is cut at 23:59 on its start date.
func ToCalendarEvents(events []Event, loc *time.Location) []assistant.CalendarEvent {
	out := make([]assistant.CalendarEvent, 0, len(events))
	for _, e := range events {
		start := e.StartTime.In(loc)
		ce := assistant.CalendarEvent{
			Date:  start.Format(assistant.DateLayout),
			Title: e.Summary,
		}
		if !e.AllDay {
			ce.Time = start.Format(assistant.ClockLayout)
			end := e.EndTime.In(loc)
			switch {
			case !end.After(start):
			case end.Format(assistant.DateLayout) != ce.Date:
				ce.EndTime = "23:59"
			default:
				ce.EndTime = end.Format(assistant.ClockLayout)
			}
			if ce.EndTime == ce.Time {
				ce.EndTime = ""
			}
		}
		out = append(out, ce)
	}
	return out
}

// ResolveDate turns an ISO date or a natural phrase such as "tomorrow" or
// "next friday" into YYYY-MM-DD, resolving relative phrases forward from now.
func ResolveDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("date is empty")
	}
	if t, err := time.ParseInLocation(assistant.DateLayout, s, now.Location()); err == nil {
		return t.Format(assistant.DateLayout), nil
	}

	t, err := naturaldate.Parse(s, now, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t.Format(assistant.DateLayout), nil
}
