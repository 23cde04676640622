package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// Event represents a parsed calendar event occurrence.
type Event struct {
	UID       string
	Summary   string
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
}

// Open returns a reader for an ICS URL or file path.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening calendar file: %w", err)
	}
	return f, nil
}

// Fetch retrieves and parses iCalendar events from a URL or file path,
// returning occurrences that overlap with the given time window. Recurring
// events are expanded.
func Fetch(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]Event, error) {
	r, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r, windowStart, windowEnd, windowStart.Location())
}

// Parse decodes every calendar in r. Times without a zone are read in loc.
func Parse(r io.Reader, windowStart, windowEnd time.Time, loc *time.Location) ([]Event, error) {
	dec := ical.NewDecoder(r)
	var events []Event

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, event := range cal.Events() {
			start, err := event.DateTimeStart(loc)
			if err != nil {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(loc)
			if err != nil || end.IsZero() {
				end = start
			}

			summary, _ := event.Props.Text(ical.PropSummary)
			if summary == "" {
				continue
			}
			uid, _ := event.Props.Text(ical.PropUID)
			allDay := false
			if p := event.Props.Get(ical.PropDateTimeStart); p != nil && p.ValueType() == ical.ValueDate {
				allDay = true
			}

			base := Event{UID: uid, Summary: summary, AllDay: allDay}
			set, err := event.RecurrenceSet(loc)
			if err != nil {
				continue
			}
			for _, occ := range occurrences(set, start, end, windowStart, windowEnd) {
				e := base
				e.StartTime, e.EndTime = occ[0], occ[1]
				events = append(events, e)
			}
		}
	}

	return events, nil
}

// occurrences returns [start, end) pairs of every instance overlapping the
// window. A nil set is a single non-recurring instance.
func occurrences(set *rrule.Set, start, end, windowStart, windowEnd time.Time) [][2]time.Time {
	duration := end.Sub(start)
	overlaps := func(s time.Time) bool {
		e := s.Add(duration)
		if duration == 0 {
			return !s.Before(windowStart) && s.Before(windowEnd)
		}
		return s.Before(windowEnd) && e.After(windowStart)
	}

	if set == nil {
		if overlaps(start) {
			return [][2]time.Time{{start, end}}
		}
		return nil
	}

	var out [][2]time.Time
	// Instances that start before the window may still run into it.
	for _, s := range set.Between(windowStart.Add(-duration), windowEnd, true) {
		if overlaps(s) {
			out = append(out, [2]time.Time{s, s.Add(duration)})
		}
	}
	return out
}

// GroupByDay groups events by date string (YYYY-MM-DD in local time).
func GroupByDay(events []Event) map[string][]Event {
	grouped := make(map[string][]Event)
	for _, e := range events {
		key := e.StartTime.Local().Format("2006-01-02")
		grouped[key] = append(grouped[key], e)
	}
	return grouped
}
