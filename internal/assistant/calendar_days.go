package assistant

import (
	"fmt"
	"time"
)

// midnight strips the clock from t, keeping its location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	return midnight(t).AddDate(0, 0, n)
}

// addMonths moves t forward by n calendar months, clamping the day to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	t = midnight(t)
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// WeekdayLabel returns the short Czech weekday name for d.
func WeekdayLabel(d time.Weekday) string {
	return weekdayLabels[d]
}

// labelDate renders "2024-01-10 (St)". Unparseable dates are returned as is.
func labelDate(date string, loc *time.Location) string {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s (%s)", date, WeekdayLabel(t.Weekday()))
}

// dayLabel renders the short human form used on slots, e.g. "St 10. 1.".
func dayLabel(t time.Time) string {
	return fmt.Sprintf("%s %d. %d.", WeekdayLabel(t.Weekday()), t.Day(), int(t.Month()))
}

// addHour adds one hour to an HH:MM clock, wrapping 23:xx to 00:xx on the
// same day. Malformed input is returned unchanged.
func addHour(clock string) string {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return clock
	}
	return fmt.Sprintf("%02d:%02d", (t.Hour()+1)%24, t.Minute())
}
