package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/invopop/jsonschema"
)

type wireDraft struct {
	Title       string  `json:"title"`
	Date        *string `json:"date" jsonschema:"nullable"`
	Time        *string `json:"time" jsonschema:"nullable"`
	EndTime     *string `json:"endTime" jsonschema:"nullable"`
	Description string  `json:"description"`
}

// wireResponse mirrors assistant.Response for schema generation only.
type wireResponse struct {
	Message     string               `json:"message"`
	EventData   *wireDraft           `json:"eventData" jsonschema:"nullable"`
	Type        string               `json:"type" jsonschema:"enum=greeting,enum=calendar_analysis,enum=meeting_suggestion,enum=event_creation,enum=help"`
	Suggestions []assistant.FreeSlot `json:"suggestions,omitempty"`
}

var jsonSchema = func() string {
	r := &jsonschema.Reflector{DoNotReference: true}
	data, err := json.Marshal(r.Reflect(&wireResponse{}))
	if err != nil {
		panic(fmt.Sprintf("building response schema: %v", err))
	}
	return string(data)
}()

func buildSystemPrompt(req Request) string {
	eventsJSON, _ := json.Marshal(req.Events)

	return fmt.Sprintf(`You are the assistant of a shared calendar. Users write in Czech or English.
Reply in the language of the user.

Today is %s (%s).

The user's events (date, time, end_time are local, end_time is exclusive, missing end_time means one hour):
%s

Rules:
- type "greeting" for greetings, "calendar_analysis" for questions about free days,
  "meeting_suggestion" when the user wants to meet someone, "event_creation" when they want to add an event,
  "help" otherwise
- For meeting_suggestion, suggestions must be free slots from the grid %s within the next two weeks
- For event_creation, fill eventData only when both date (YYYY-MM-DD) and time (HH:MM) are known, otherwise set it to null and ask for the missing part in message
- Never invent events the user does not have

Return valid JSON matching the required schema:
%s`,
		req.Today.Format(assistant.DateLayout),
		assistant.WeekdayLabel(req.Today.Weekday()),
		string(eventsJSON),
		strings.Join(assistant.DefaultCandidateTimes, ", "),
		jsonSchema,
	)
}

func buildUserPrompt(req Request) string {
	if len(req.History) == 0 {
		return req.Text
	}

	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, m := range req.History {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	sb.WriteString("\nNew message: ")
	sb.WriteString(req.Text)
	return sb.String()
}

// decodeResponse parses model output, tolerating prose or code fences
// around the JSON object.
func decodeResponse(raw string) (*assistant.Response, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in output: %s", truncateStr(raw, 200))
	}

	var resp assistant.Response
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w (raw: %s)", err, truncateStr(raw, 500))
	}
	if err := validateResponse(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
