package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/models"
	"rhystmorgan/contactbook/internal/utils"
	"rhystmorgan/contactbook/internal/validation"
)

type ContactView int

const (
	ContactViewList ContactView = iota
	ContactViewCreate
	ContactViewEdit
	ContactViewFilter
	ContactViewDeleteConfirm
)

type ContactsModel struct {
	book   *book.ContactBook
	ctx    context.Context
	styles utils.Styles

	currentView ContactView
	selected    int

	form      ContactForm
	editingID int64

	filterField int
	filterInput textinput.Model

	err            error
	successMessage string

	width  int
	height int
}

// ContactForm holds one text input per contact field, in models.Fields order.
type ContactForm struct {
	inputs       []textinput.Model
	errors       map[string]string
	currentField int
}

type ContactSavedMsg struct {
	Contact models.Contact
	Created bool
	// PersistErr is set when the change is only held in memory.
	PersistErr error
}

type ContactDeletedMsg struct {
	ContactID  int64
	PersistErr error
}

type ContactInvalidMsg struct {
	Fields map[string]string
}

func NewContactsModel(ctx context.Context, b *book.ContactBook) *ContactsModel {
	filterInput := textinput.New()
	filterInput.Placeholder = "Filter value..."
	filterInput.CharLimit = 100
	filterInput.PromptStyle = utils.DefaultStyles.Prompt
	filterInput.TextStyle = utils.DefaultStyles.Input

	m := &ContactsModel{
		book:        b,
		ctx:         ctx,
		styles:      utils.DefaultStyles,
		currentView: ContactViewList,
		form:        newContactForm(),
		filterInput: filterInput,
	}

	if f, ok := b.ActiveFilter(); ok {
		m.filterField = fieldIndex(f.Field)
		m.filterInput.SetValue(f.Value)
	}

	return m
}

func newContactForm() ContactForm {
	placeholders := map[models.Field]string{
		models.FieldFirstName: "Ada",
		models.FieldLastName:  "Lovelace",
		models.FieldPhone:     "+44 20 7946 0000",
		models.FieldEmail:     "ada@example.com",
	}

	inputs := make([]textinput.Model, len(models.Fields))
	for i, field := range models.Fields {
		input := textinput.New()
		input.Placeholder = placeholders[field]
		input.CharLimit = 100
		input.PromptStyle = utils.DefaultStyles.Prompt
		input.TextStyle = utils.DefaultStyles.Input
		inputs[i] = input
	}
	inputs[0].Focus()

	return ContactForm{
		inputs: inputs,
		errors: make(map[string]string),
	}
}

func (m *ContactsModel) Init() tea.Cmd {
	return nil
}

func (m *ContactsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch m.currentView {
		case ContactViewList:
			return m.updateListView(msg)
		case ContactViewCreate, ContactViewEdit:
			return m.updateFormView(msg)
		case ContactViewFilter:
			return m.updateFilterView(msg)
		case ContactViewDeleteConfirm:
			return m.updateDeleteConfirmView(msg)
		}

	case ContactSavedMsg:
		m.currentView = ContactViewList
		m.form = newContactForm()
		m.err = msg.PersistErr
		if msg.Created {
			m.successMessage = fmt.Sprintf("Added %s.", msg.Contact.FullName())
		} else {
			m.successMessage = fmt.Sprintf("Updated %s.", msg.Contact.FullName())
		}
		m.clampSelection()

	case ContactDeletedMsg:
		m.currentView = ContactViewList
		m.err = msg.PersistErr
		m.successMessage = "Contact deleted."
		m.clampSelection()

	case ContactInvalidMsg:
		m.form.errors = msg.Fields

	case ErrorMsg:
		m.err = msg.Err
		m.currentView = ContactViewList
		m.clampSelection()
	}

	return m, nil
}

func (m *ContactsModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.book.CurrentView()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "ctrl+n", "a":
		m.clearMessages()
		m.currentView = ContactViewCreate
		m.form = newContactForm()
		return m, m.form.focusCurrentField()

	case "ctrl+f", "/":
		m.clearMessages()
		m.currentView = ContactViewFilter
		return m, m.filterInput.Focus()

	case "esc":
		if _, ok := m.book.ActiveFilter(); ok {
			m.book.ClearFilter()
			m.filterInput.SetValue("")
			m.selected = 0
		}
		m.clearMessages()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(page.Contacts)-1 {
			m.selected++
		}

	case "left", "pgup", "h":
		m.book.ChangePage(-1)
		m.selected = 0

	case "right", "pgdown", "l":
		m.book.ChangePage(1)
		m.selected = 0

	case "home":
		m.book.GoToPage(1)
		m.selected = 0

	case "end":
		m.book.GoToPage(page.Total)
		m.selected = 0

	case "e", "enter":
		if contact, ok := m.selectedContact(); ok {
			m.clearMessages()
			m.form = populateForm(contact)
			m.editingID = contact.ID
			m.currentView = ContactViewEdit
			return m, m.form.focusCurrentField()
		}

	case "d", "delete":
		if _, ok := m.selectedContact(); ok {
			m.clearMessages()
			m.currentView = ContactViewDeleteConfirm
		}
	}

	return m, nil
}

func (m *ContactsModel) updateFormView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.currentView = ContactViewList
		m.form = newContactForm()
		return m, nil

	case "tab", "down":
		m.form.nextField()
		return m, m.form.focusCurrentField()

	case "shift+tab", "up":
		m.form.prevField()
		return m, m.form.focusCurrentField()

	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	current := m.form.currentField
	m.form.inputs[current], cmd = m.form.inputs[current].Update(msg)
	delete(m.form.errors, string(models.Fields[current]))
	return m, cmd
}

func (m *ContactsModel) updateFilterView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.filterInput.Blur()
		m.currentView = ContactViewList
		return m, nil

	case "tab":
		m.filterField = (m.filterField + 1) % len(models.Fields)
		return m, nil

	case "shift+tab":
		m.filterField = (m.filterField + len(models.Fields) - 1) % len(models.Fields)
		return m, nil

	case "enter":
		m.book.Filter(models.Fields[m.filterField], strings.TrimSpace(m.filterInput.Value()))
		m.filterInput.Blur()
		m.selected = 0
		m.currentView = ContactViewList
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *ContactsModel) updateDeleteConfirmView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if contact, ok := m.selectedContact(); ok {
			return m, m.deleteContact(contact.ID)
		}
		m.currentView = ContactViewList

	case "n", "N", "esc":
		m.currentView = ContactViewList
	}

	return m, nil
}

func (m *ContactsModel) submitForm() (tea.Model, tea.Cmd) {
	values := m.form.values()

	result := validation.ValidateContact(values[0], values[1], values[2], values[3])
	if !result.IsValid {
		m.form.errors = (&validation.Error{Errors: result.Errors}).Fields()
		return m, nil
	}

	if m.currentView == ContactViewEdit {
		return m, m.saveContact(m.editingID, values)
	}
	return m, m.createContact(values)
}

func (m *ContactsModel) createContact(values []string) tea.Cmd {
	ctx, b := m.ctx, m.book
	return func() tea.Msg {
		contact, err := b.Add(ctx, values[0], values[1], values[2], values[3])
		return savedMsg(contact, true, err)
	}
}

func (m *ContactsModel) saveContact(id int64, values []string) tea.Cmd {
	ctx, b := m.ctx, m.book
	return func() tea.Msg {
		contact, err := b.Edit(ctx, id, values[0], values[1], values[2], values[3])
		return savedMsg(contact, false, err)
	}
}

func (m *ContactsModel) deleteContact(id int64) tea.Cmd {
	ctx, b := m.ctx, m.book
	return func() tea.Msg {
		err := b.Delete(ctx, id)
		switch {
		case err == nil:
			return ContactDeletedMsg{ContactID: id}
		case errors.Is(err, book.ErrPersist):
			return ContactDeletedMsg{ContactID: id, PersistErr: err}
		default:
			return ErrorMsg{Err: fmt.Errorf("failed to delete contact: %w", err)}
		}
	}
}

func savedMsg(contact models.Contact, created bool, err error) tea.Msg {
	var invalid *validation.Error
	switch {
	case err == nil:
		return ContactSavedMsg{Contact: contact, Created: created}
	case errors.Is(err, book.ErrPersist):
		return ContactSavedMsg{Contact: contact, Created: created, PersistErr: err}
	case errors.As(err, &invalid):
		return ContactInvalidMsg{Fields: invalid.Fields()}
	default:
		return ErrorMsg{Err: fmt.Errorf("failed to save contact: %w", err)}
	}
}

func (m *ContactsModel) selectedContact() (models.Contact, bool) {
	page := m.book.CurrentView()
	if m.selected < 0 || m.selected >= len(page.Contacts) {
		return models.Contact{}, false
	}
	return page.Contacts[m.selected], true
}

func (m *ContactsModel) clampSelection() {
	n := len(m.book.CurrentView().Contacts)
	m.selected = max(0, min(m.selected, n-1))
}

func (m *ContactsModel) clearMessages() {
	m.err = nil
	m.successMessage = ""
}

func (m *ContactsModel) View() string {
	switch m.currentView {
	case ContactViewCreate:
		return m.renderFormView("New Contact")
	case ContactViewEdit:
		return m.renderFormView("Edit Contact")
	case ContactViewDeleteConfirm:
		return m.renderDeleteConfirmView()
	default:
		return m.renderListView()
	}
}

func (m *ContactsModel) renderListView() string {
	var content strings.Builder
	page := m.book.CurrentView()

	title := fmt.Sprintf("Contacts (%d)", m.book.Len())
	content.WriteString(m.styles.Header.Render(title))
	if f, ok := m.book.ActiveFilter(); ok {
		content.WriteString(" ")
		content.WriteString(m.styles.Badge.Render(fmt.Sprintf("%s ~ %q", f.Field.Label(), f.Value)))
	}
	content.WriteString("\n\n")

	if m.currentView == ContactViewFilter {
		content.WriteString(m.renderFilterBar())
		content.WriteString("\n\n")
	}

	if len(page.Contacts) == 0 {
		if _, ok := m.book.ActiveFilter(); ok {
			content.WriteString(m.styles.Muted.Render("No contacts match the filter. Press Esc to clear it."))
		} else {
			content.WriteString(m.styles.Muted.Render("No contacts yet. Press Ctrl+N to add one."))
		}
	} else {
		content.WriteString(m.renderContactList(page))
	}

	content.WriteString("\n\n")
	content.WriteString(m.renderFooter(page))
	content.WriteString(m.renderMessages())

	return content.String()
}

func (m *ContactsModel) renderFilterBar() string {
	field := models.Fields[m.filterField]
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		"Filter ",
		m.styles.Badge.Render(field.Label()),
		" ",
		m.filterInput.View(),
		m.styles.Muted.Render("  [Tab] field  [Enter] apply  [Esc] cancel"),
	)
}

func (m *ContactsModel) renderContactList(page book.Page) string {
	header := fmt.Sprintf("%s %s %s %s",
		utils.Column("First name", 14),
		utils.Column("Last name", 14),
		utils.Column("Phone", 18),
		utils.Column("Email", 28),
	)

	rows := []string{m.styles.Row.Render(m.styles.Muted.Render(header))}
	for i, contact := range page.Contacts {
		line := fmt.Sprintf("%s %s %s %s",
			utils.Column(contact.FirstName, 14),
			utils.Column(contact.LastName, 14),
			utils.Column(contact.Phone, 18),
			utils.Column(contact.Email, 28),
		)
		if i == m.selected {
			rows = append(rows, m.styles.Selected.Render(line))
		} else {
			rows = append(rows, m.styles.Row.Render(line))
		}
	}

	return strings.Join(rows, "\n")
}

func (m *ContactsModel) renderFooter(page book.Page) string {
	pagination := "◀ " + page.Info() + " ▶"
	stats := fmt.Sprintf("%s | %d shown", pagination, page.Count)

	controls := "[Ctrl+N]New [E]dit [D]elete [Ctrl+F]Filter [Esc]Clear filter [←/→]Page [Q]uit"

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Muted.Render(stats),
		m.styles.Muted.Render(controls),
	)
}

func (m *ContactsModel) renderMessages() string {
	var content strings.Builder
	if m.successMessage != "" {
		content.WriteString("\n")
		content.WriteString(m.styles.Success.Render("✓ " + m.successMessage))
	}
	if m.err != nil {
		content.WriteString("\n")
		content.WriteString(m.styles.Error.Render("✗ " + formatErrorMessage(m.err)))
	}
	return content.String()
}

func (m *ContactsModel) renderFormView(title string) string {
	var content strings.Builder

	content.WriteString(m.styles.Header.Render(title))
	content.WriteString("\n\n")

	for i, field := range models.Fields {
		content.WriteString(m.styles.Label.Render(field.Label()))
		content.WriteString(m.form.inputs[i].View())
		content.WriteString("\n")
		if msg, ok := m.form.errors[string(field)]; ok {
			content.WriteString(m.styles.Label.Render(""))
			content.WriteString(m.styles.Error.Render(msg))
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(m.styles.Muted.Render("[Tab/↓]Next [Shift+Tab/↑]Previous [Enter]Save [Esc]Cancel"))

	return content.String()
}

func (m *ContactsModel) renderDeleteConfirmView() string {
	contact, ok := m.selectedContact()
	if !ok {
		return "No contact selected"
	}

	text := utils.FormatConfirmationText("delete", []utils.Detail{
		{Key: "Name", Value: contact.FullName()},
		{Key: "Phone", Value: contact.Phone},
		{Key: "Email", Value: contact.Email},
		{Key: "Added", Value: utils.FormatContactID(contact.ID)},
	})

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Header.Render("Delete Contact"),
		"",
		m.styles.Warning.Render(text),
	)
}

func formatErrorMessage(err error) string {
	switch {
	case errors.Is(err, book.ErrPersist):
		return "Changes could not be saved to disk and are kept in memory only: " + err.Error()
	case errors.Is(err, book.ErrNotFound):
		return "That contact no longer exists."
	default:
		return err.Error()
	}
}

func populateForm(contact models.Contact) ContactForm {
	form := newContactForm()
	for i, field := range models.Fields {
		form.inputs[i].SetValue(contact.Value(field))
	}
	return form
}

func fieldIndex(field models.Field) int {
	for i, f := range models.Fields {
		if f == field {
			return i
		}
	}
	return 0
}

func (f *ContactForm) values() []string {
	values := make([]string, len(f.inputs))
	for i, input := range f.inputs {
		values[i] = input.Value()
	}
	return values
}

func (f *ContactForm) nextField() {
	if f.currentField < len(f.inputs)-1 {
		f.currentField++
	}
}

func (f *ContactForm) prevField() {
	if f.currentField > 0 {
		f.currentField--
	}
}

func (f *ContactForm) focusCurrentField() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.currentField].Focus()
}
