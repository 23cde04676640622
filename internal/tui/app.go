package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/christopherklint97/kalendr/internal/ai"
	"github.com/christopherklint97/kalendr/internal/store"
)

type viewState int

const (
	inputView viewState = iota
	loadingView
	responseView
	savedView
)

const maxHistory = 10

type answerMsg struct {
	text   string
	answer ai.Answer
}

type savedMsg struct {
	event store.Event
	err   error
}

// App is a chat loop over the assistant service: ask, read the answer, save
// the proposed event or ask again.
type App struct {
	state    viewState
	input    inputModel
	spinner  spinner.Model
	response responseModel
	width    int

	svc     *ai.Service
	userID  string
	groupID string
	history []ai.Message
	saved   []store.Event
}

// NewApp starts a chat for userID. Drafts are saved into groupID; an empty
// groupID disables saving.
func NewApp(svc *ai.Service, userID, groupID string) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &App{
		state:   inputView,
		input:   newInputModel(subtitle(svc, userID), 0),
		spinner: s,
		svc:     svc,
		userID:  userID,
		groupID: groupID,
	}
}

func subtitle(svc *ai.Service, userID string) string {
	return fmt.Sprintf("%s · %s", userID, svc.Today().Format("2. 1. 2006"))
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.textarea.Focus(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.response.width = msg.Width
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case answerMsg:
		return a.handleAnswer(msg)
	case savedMsg:
		return a.handleSaved(msg)
	}

	switch a.state {
	case inputView:
		return a.updateInput(msg)
	case loadingView:
		return a.updateLoading(msg)
	case responseView:
		return a.updateResponse(msg)
	case savedView:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, a.resetInput()
		}
	}

	return a, nil
}

func (a *App) View() string {
	switch a.state {
	case inputView:
		return a.input.View()
	case loadingView:
		return a.spinner.View() + " Přemýšlím..."
	case responseView:
		return a.response.View()
	case savedView:
		e := a.saved[len(a.saved)-1]
		return successStyle.Render("Uloženo: ") + fmt.Sprintf("%s %s %s", e.Title, e.Date, clockRange(e.Time, e.EndTime)) +
			"\n" + helpStyle.Render("Stiskni libovolnou klávesu pro další dotaz")
	}
	return ""
}

// Saved returns the events stored during the session.
func (a *App) Saved() []store.Event {
	return a.saved
}

func (a *App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "enter" && strings.TrimSpace(a.input.Value()) != "" {
			a.state = loadingView
			return a, tea.Batch(a.spinner.Tick, a.ask(a.input.Value()))
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

func (a *App) updateResponse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch keyMsg.String() {
	case "a":
		d := a.response.draft()
		switch {
		case d == nil || !d.Actionable():
			a.response.notice = "Není co uložit, návrh potřebuje datum i čas."
		case a.groupID == "":
			a.response.notice = "Není nastavená skupina (calendar.group_id), událost nelze uložit."
		default:
			a.state = loadingView
			return a, tea.Batch(a.spinner.Tick, a.save())
		}
	case "n":
		return a, a.resetInput()
	case "q", "esc":
		return a, tea.Quit
	case "up", "k":
		a.response.moveCursor(-1)
	case "down", "j":
		a.response.moveCursor(1)
	}
	return a, nil
}

func (a *App) resetInput() tea.Cmd {
	a.state = inputView
	a.input = newInputModel(a.input.subtitle, a.width)
	return a.input.textarea.Focus()
}

func (a *App) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	a.history = append(a.history,
		ai.Message{Role: "user", Content: msg.text},
		ai.Message{Role: "assistant", Content: msg.answer.Response.Message},
	)
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}

	a.response = newResponseModel(msg.answer, a.groupID != "", a.width)
	a.state = responseView
	return a, nil
}

func (a *App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.response.notice = "Uložení selhalo: " + msg.err.Error()
		a.state = responseView
		return a, nil
	}

	a.saved = append(a.saved, msg.event)
	a.state = savedView
	return a, nil
}

func (a *App) ask(text string) tea.Cmd {
	history := append([]ai.Message(nil), a.history...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		return answerMsg{text: text, answer: a.svc.Ask(ctx, a.userID, text, history)}
	}
}

func (a *App) save() tea.Cmd {
	draft := *a.response.draft()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		e, err := a.svc.ConfirmDraft(ctx, a.userID, a.groupID, draft)
		return savedMsg{event: e, err: err}
	}
}
