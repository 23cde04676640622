package assistant

import (
	"fmt"
	"strings"
	"time"
)

const (
	greetingMessage = "Ahoj! Jsem tvůj kalendářový asistent. Umím najít volné dny, navrhnout termín " +
		"schůzky nebo připravit novou událost. Zkus třeba „kdy mám volno“ nebo „schůzka zítra v 14:00“."

	helpFormat = "Můžu ti pomoct s kalendářem:\n" +
		"• „kdy mám volno“ – přehled volných dní na %d dní dopředu\n" +
		"• „kdy se můžeme sejít na kafe“ – volné termíny na %d dní dopředu\n" +
		"• „večeře zítra v 19:00“ – připravím novou událost"

	clarifyMessage = "Co přesně chceš naplánovat? Napiš mi den a čas, třeba „večeře zítra v 19:00“."
)

func composeGreeting() Response {
	return Response{Message: greetingMessage, Type: IntentGreeting}
}

func composeHelp(analysisDays, slotDays int) Response {
	return Response{Message: fmt.Sprintf(helpFormat, analysisDays, slotDays), Type: IntentHelp}
}

func composeAnalysis(events []CalendarEvent, fb FreeBusy, windowDays int) Response {
	if len(events) == 0 {
		return Response{
			Message: fmt.Sprintf("Tvůj kalendář je na příštích %d dní úplně prázdný. Máš volno kdykoli!", windowDays),
			Type:    IntentCalendarAnalysis,
		}
	}

	var sb strings.Builder
	if len(fb.FreeDays) == 0 {
		fmt.Fprintf(&sb, "V příštích %d dnech nemáš žádný úplně volný den.", windowDays)
	} else {
		fmt.Fprintf(&sb, "V příštích %d dnech máš %d volných dní.\nVolné dny: %s",
			windowDays, len(fb.FreeDays), strings.Join(head(fb.FreeDays, freeDaysShown), ", "))
		if extra := len(fb.FreeDays) - freeDaysShown; extra > 0 {
			fmt.Fprintf(&sb, " a %d dalších", extra)
		}
	}
	if len(fb.BusyDays) > 0 {
		fmt.Fprintf(&sb, "\nObsazené dny: %s", strings.Join(head(fb.BusyDays, busyDaysShown), ", "))
	}

	return Response{Message: sb.String(), Type: IntentCalendarAnalysis}
}

func composeMeeting(slots []FreeSlot, windowDays, limit int) Response {
	if len(slots) == 0 {
		return Response{
			Message: fmt.Sprintf("V příštích %d dnech jsem nenašel žádný volný termín.", windowDays),
			Type:    IntentMeetingSuggestion,
		}
	}

	top := head(slots, limit)
	var sb strings.Builder
	sb.WriteString("Tady jsou nejbližší volné termíny, kdy se můžete sejít:")
	for _, s := range top {
		fmt.Fprintf(&sb, "\n• %s v %s", s.DayLabel, s.Time)
	}

	return Response{
		Message:     sb.String(),
		Type:        IntentMeetingSuggestion,
		Suggestions: top,
	}
}

func composeEventCreation(draft EventDraft, loc *time.Location) Response {
	resp := Response{Type: IntentEventCreation}

	switch {
	case draft.Actionable():
		when := draft.Time
		if draft.EndTime != "" {
			when += "–" + draft.EndTime
		}
		resp.Message = fmt.Sprintf("Připravil jsem událost „%s“ na %s v %s. Mám ji uložit?",
			draft.Title, labelDate(draft.Date, loc), when)
		d := draft
		resp.EventData = &d
	case draft.Date != "":
		resp.Message = fmt.Sprintf("Rozumím, „%s“ na %s. V kolik hodin to má být?",
			draft.Title, labelDate(draft.Date, loc))
	case draft.Time != "":
		resp.Message = fmt.Sprintf("Rozumím, „%s“ v %s. Který den to má být?", draft.Title, draft.Time)
	default:
		resp.Message = clarifyMessage
	}

	return resp
}

// head returns at most n leading elements of s without copying.
func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
