package tui

import (
	"fmt"
	"strings"

	"github.com/christopherklint97/kalendr/internal/ai"
	"github.com/christopherklint97/kalendr/internal/assistant"
)

type responseModel struct {
	answer  ai.Answer
	cursor  int
	canSave bool
	notice  string
	width   int
}

func newResponseModel(answer ai.Answer, canSave bool, width int) responseModel {
	return responseModel{answer: answer, canSave: canSave, width: width}
}

func (m responseModel) draft() *assistant.EventDraft {
	return m.answer.Response.EventData
}

func (m *responseModel) moveCursor(delta int) {
	n := len(m.answer.Response.Suggestions)
	if n == 0 {
		return
	}
	m.cursor = max(0, min(n-1, m.cursor+delta))
}

func (m responseModel) View() string {
	resp := m.answer.Response
	var sb strings.Builder

	sb.WriteString(resp.Message)
	sb.WriteString("\n")

	if len(resp.Suggestions) > 0 {
		sb.WriteString("\n")
		for i, s := range resp.Suggestions {
			prefix := "  "
			if i == m.cursor {
				prefix = "> "
			}
			line := fmt.Sprintf("%s%-10s %s", prefix, s.DayLabel, s.Time)
			if i == m.cursor {
				line = highlightStyle.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if d := resp.EventData; d != nil {
		sb.WriteString("\n")
		sb.WriteString(draftLine("Název", d.Title))
		sb.WriteString(draftLine("Datum", d.Date))
		sb.WriteString(draftLine("Čas", clockRange(d.Time, d.EndTime)))
	}

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(warningStyle.Render(m.notice))
		sb.WriteString("\n")
	}

	var keys []string
	if d := resp.EventData; d != nil && d.Actionable() && m.canSave {
		keys = append(keys, "[a] uložit")
	}
	if len(resp.Suggestions) > 1 {
		keys = append(keys, "↑/↓ výběr")
	}
	keys = append(keys, "[n] nový dotaz", "[q] konec")

	box := boxStyle
	if m.width > 0 {
		box = box.Width(inputWidth(m.width))
	}
	return box.Render(strings.TrimRight(sb.String(), "\n")) + "\n" +
		dimStyle.Render(string(m.answer.Response.Type)+" · "+m.answer.Source) + "\n" +
		helpStyle.Render(strings.Join(keys, " • "))
}

func draftLine(label, value string) string {
	if value == "" {
		value = dimStyle.Render("?")
	}
	return fmt.Sprintf("%-6s %s\n", label+":", value)
}

func clockRange(start, end string) string {
	if start == "" || end == "" {
		return start
	}
	return start + "–" + end
}
