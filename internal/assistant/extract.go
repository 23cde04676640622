package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// ExtractEventDraft parses text into a best-effort draft. Relative dates are
// resolved against today. Missing pieces stay empty; it never fails.
func ExtractEventDraft(text string, today time.Time) EventDraft {
	lower := strings.ToLower(text)

	start, end := extractTimes(lower)
	return EventDraft{
		Title:       extractTitle(text, lower),
		Date:        extractDate(lower, today),
		Time:        start,
		EndTime:     end,
		Description: strings.TrimSpace(text),
	}
}

func extractDate(lower string, today time.Time) string {
	for _, r := range dateRules {
		if !strings.Contains(lower, r.keyword) {
			continue
		}
		d := addDays(today, r.days)
		if r.months != 0 {
			d = addMonths(d, r.months)
		}
		return d.Format(DateLayout)
	}
	return ""
}

// extractTimes applies the keyword layer first, then lets explicit clock
// tokens override it: the first token is the start, the second the end.
func extractTimes(lower string) (start, end string) {
	for _, r := range timeRules {
		if strings.Contains(lower, r.keyword) {
			start = r.clock
			break
		}
	}

	clocks := explicitClocks(lower)
	if len(clocks) > 0 {
		start = clocks[0]
	}
	if len(clocks) > 1 {
		end = clocks[1]
	}
	return start, end
}

// explicitClocks returns every valid H:MM/HH:MM token, zero-padded.
func explicitClocks(s string) []string {
	var out []string
	for _, m := range clockPattern.FindAllStringSubmatch(s, -1) {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if hh > 23 || mm > 59 {
			continue
		}
		out = append(out, fmt.Sprintf("%02d:%02d", hh, mm))
	}
	return out
}

func extractTitle(original, lower string) string {
	for _, r := range titleRules {
		if containsAny(lower, r.keywords) {
			return r.title
		}
	}

	fields := strings.Fields(original)
	if len(fields) == 0 {
		return defaultTitle
	}
	return capitalize(fields[0])
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}
