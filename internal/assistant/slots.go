package assistant

import "time"

// FindFreeSlots walks windowDays days from today and returns every candidate
// time that no event on that day overlaps, day-major then in grid order.
// An event blocks t when event.Time <= t < effective end. All-day events
// (no Time) never block a slot.
func FindFreeSlots(events []CalendarEvent, today time.Time, windowDays int, candidateTimes []string) []FreeSlot {
	if candidateTimes == nil {
		candidateTimes = DefaultCandidateTimes
	}

	byDate := make(map[string][]CalendarEvent)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	var slots []FreeSlot
	for i := 0; i < windowDays; i++ {
		day := addDays(today, i)
		date := day.Format(DateLayout)
		dayEvents := byDate[date]

		for _, t := range candidateTimes {
			if occupied(dayEvents, t) {
				continue
			}
			slots = append(slots, FreeSlot{
				Date:     date,
				Time:     t,
				DayLabel: dayLabel(day),
			})
		}
	}
	return slots
}

func occupied(events []CalendarEvent, t string) bool {
	for _, e := range events {
		if e.Time == "" {
			continue
		}
		if e.Time <= t && t < effectiveEnd(e) {
			return true
		}
	}
	return false
}

// effectiveEnd is EndTime, or Time plus one hour. The one-hour default wraps
// within the same day, so an event at 23:30 ends at 00:30 and blocks nothing
// after its start.
func effectiveEnd(e CalendarEvent) string {
	if e.EndTime != "" {
		return e.EndTime
	}
	return addHour(e.Time)
}
