package views

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/utils"
)

type ViewState int

const (
	ViewContacts ViewState = iota
	ViewHelp
)

type AppModel struct {
	state  ViewState
	width  int
	height int

	contactsView *ContactsModel
}

type NavigateMsg struct {
	State ViewState
}

type ErrorMsg struct {
	Err error
}

// NewAppModel builds the root model over an already loaded book.
func NewAppModel(ctx context.Context, b *book.ContactBook) *AppModel {
	return &AppModel{
		state:        ViewContacts,
		contactsView: NewContactsModel(ctx, b),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.contactsView.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "?", "f1":
			if m.state == ViewHelp {
				return m, NavigateTo(ViewContacts)
			}
			if m.contactsView.currentView == ContactViewList {
				return m, NavigateTo(ViewHelp)
			}
		case "esc", "q":
			if m.state == ViewHelp {
				return m, NavigateTo(ViewContacts)
			}
		}

	case NavigateMsg:
		return m.navigateTo(msg.State)
	}

	if m.state != ViewContacts {
		return m, nil
	}

	_, cmd := m.contactsView.Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string
	switch m.state {
	case ViewHelp:
		content = renderHelp()
	default:
		content = m.contactsView.View()
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m AppModel) navigateTo(state ViewState) (tea.Model, tea.Cmd) {
	m.state = state
	return m, nil
}

func NavigateTo(state ViewState) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{State: state}
	}
}

var helpLines = [][2]string{
	{"Ctrl+N / a", "add a contact"},
	{"Enter / e", "edit the selected contact"},
	{"d / Del", "delete the selected contact (confirm with y)"},
	{"Ctrl+F / /", "filter by a field; Tab cycles the field"},
	{"Esc", "clear the active filter"},
	{"← → / PgUp PgDn", "previous / next page"},
	{"Home / End", "first / last page"},
	{"↑ ↓", "select a row"},
	{"q", "quit"},
}

func renderHelp() string {
	styles := utils.DefaultStyles
	rows := []string{styles.Header.Render("Keys"), ""}
	for _, line := range helpLines {
		rows = append(rows, styles.Prompt.Render(utils.Column(line[0], 18))+" "+line[1])
	}
	rows = append(rows, "", styles.Muted.Render("[?/Esc] back"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, b *book.ContactBook) error {
	program := tea.NewProgram(NewAppModel(ctx, b), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
