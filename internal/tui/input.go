package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

type inputModel struct {
	textarea textarea.Model
	subtitle string
	width    int
}

func newInputModel(subtitle string, width int) inputModel {
	ta := textarea.New()
	ta.Placeholder = "Napiš, co potřebuješ... (např. \"kdy mám volno?\")"
	ta.Focus()
	ta.CharLimit = 500
	ta.SetWidth(inputWidth(width))
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	return inputModel{
		textarea: ta,
		subtitle: subtitle,
		width:    width,
	}
}

func inputWidth(termWidth int) int {
	if termWidth <= 0 {
		return 60
	}
	return max(20, min(termWidth-4, 80))
}

func (m inputModel) Update(msg tea.Msg) (inputModel, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
		m.textarea.SetWidth(inputWidth(ws.Width))
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	header := titleStyle.Render("kalendr")
	sub := subtitleStyle.Render(m.subtitle)
	help := helpStyle.Render("Enter: odeslat • Ctrl+C: konec")

	return header + "\n" + sub + "\n" + m.textarea.View() + "\n" + help
}

func (m inputModel) Value() string {
	return m.textarea.Value()
}
