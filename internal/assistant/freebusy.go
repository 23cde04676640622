package assistant

import (
	"sort"
	"time"
)

// FreeBusy is the full, untruncated result of AnalyzeFreeBusy.
type FreeBusy struct {
	FreeDays []string
	BusyDays []string
}

// AnalyzeFreeBusy splits the windowDays days starting at today into days
// without any event and days with at least one. Busy days cover every event
// date passed in, sorted ascending; callers decide the fetch window.
func AnalyzeFreeBusy(events []CalendarEvent, today time.Time, windowDays int) FreeBusy {
	busy := make(map[string]struct{}, len(events))
	for _, e := range events {
		busy[e.Date] = struct{}{}
	}

	var result FreeBusy
	for i := 0; i < windowDays; i++ {
		day := addDays(today, i)
		date := day.Format(DateLayout)
		if _, ok := busy[date]; ok {
			continue
		}
		result.FreeDays = append(result.FreeDays, labelDate(date, today.Location()))
	}

	dates := make([]string, 0, len(busy))
	for d := range busy {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		result.BusyDays = append(result.BusyDays, labelDate(d, today.Location()))
	}

	return result
}
