package views

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/models"
	"rhystmorgan/contactbook/internal/storage"
)

type brokenSlot struct {
	storage.MemorySlot
}

func (s *brokenSlot) Write(context.Context, []byte) error {
	return errors.New("disk full")
}

func newTestBook(t *testing.T, slot storage.Slot) *book.ContactBook {
	t.Helper()
	if slot == nil {
		slot = storage.NewMemorySlot(nil)
	}
	b := book.New(slot)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func seed(t *testing.T, b *book.ContactBook, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := b.Add(context.Background(),
			fmt.Sprintf("First%d", i), fmt.Sprintf("Last%d", i),
			fmt.Sprintf("000-%04d", i), fmt.Sprintf("c%d@example.com", i))
		require.NoError(t, err)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press feeds a key and runs any command it returns, feeding the result
// back like the bubbletea runtime would. Blink and focus commands are
// not run.
func press(m *ContactsModel, keys ...string) {
	for _, k := range keys {
		_, cmd := m.Update(key(k))
		if cmd == nil || k != "enter" && k != "y" {
			continue
		}
		if msg := cmd(); msg != nil {
			m.Update(msg)
		}
	}
}

func fillForm(m *ContactsModel, values ...string) {
	for i, v := range values {
		if i > 0 {
			press(m, "tab")
		}
		press(m, "ctrl+u", v)
	}
}

func TestAddContactThroughForm(t *testing.T) {
	b := newTestBook(t, nil)
	m := NewContactsModel(context.Background(), b)

	press(m, "ctrl+n")
	require.Equal(t, ContactViewCreate, m.currentView)

	fillForm(m, "Ada", "Lovelace", "555-0100", "ada@example.com")
	press(m, "enter")

	require.Equal(t, 1, b.Len())
	got := b.All()[0]
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "ada@example.com", got.Email)

	assert.Equal(t, ContactViewList, m.currentView)
	for _, input := range m.form.inputs {
		assert.Empty(t, input.Value(), "form should be cleared after add")
	}
	assert.Contains(t, m.View(), "Added Ada Lovelace.")
	assert.Contains(t, m.View(), "1/1")
}

func TestEmptyFormShowsFieldErrors(t *testing.T) {
	b := newTestBook(t, nil)
	m := NewContactsModel(context.Background(), b)

	press(m, "ctrl+n")
	fillForm(m, "Ada", "  ")
	press(m, "enter")

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, ContactViewCreate, m.currentView)
	assert.Len(t, m.form.errors, 3)
	assert.NotContains(t, m.form.errors, "firstName")

	view := m.View()
	assert.Contains(t, view, "Last name is required")
	assert.Contains(t, view, "Email is required")
}

func TestPagingUpdatesFooter(t *testing.T) {
	b := newTestBook(t, nil)
	seed(t, b, 6)
	m := NewContactsModel(context.Background(), b)

	assert.Contains(t, m.View(), "1/2")
	assert.NotContains(t, m.View(), "First6")

	press(m, "right")
	assert.Contains(t, m.View(), "2/2")
	assert.Contains(t, m.View(), "First6")
	assert.NotContains(t, m.View(), "First1 ")

	press(m, "right")
	assert.Equal(t, 2, b.CurrentView().Number)

	press(m, "left", "left")
	assert.Equal(t, 1, b.CurrentView().Number)
}

func TestFilterAndClear(t *testing.T) {
	b := newTestBook(t, nil)
	ctx := context.Background()
	for _, c := range [][4]string{
		{"Anna", "Li", "555-1111", "a@x.com"},
		{"Ben", "Ok", "212-0000", "b@x.com"},
		{"Cleo", "Ng", "555-2222", "c@x.com"},
	} {
		_, err := b.Add(ctx, c[0], c[1], c[2], c[3])
		require.NoError(t, err)
	}
	m := NewContactsModel(ctx, b)

	press(m, "ctrl+f", "tab", "tab", "555", "enter")

	f, ok := b.ActiveFilter()
	require.True(t, ok)
	assert.Equal(t, models.FieldPhone, f.Field)
	assert.Equal(t, "555", f.Value)
	assert.Len(t, b.Visible(), 2)
	assert.NotContains(t, m.View(), "Ben")
	assert.Contains(t, m.View(), `Phone ~ "555"`)

	press(m, "esc")
	_, ok = b.ActiveFilter()
	assert.False(t, ok)
	assert.Len(t, b.Visible(), 3)
}

func TestEditSelectedContact(t *testing.T) {
	b := newTestBook(t, nil)
	seed(t, b, 2)
	m := NewContactsModel(context.Background(), b)
	second := b.All()[1]

	press(m, "down", "e")
	require.Equal(t, ContactViewEdit, m.currentView)
	assert.Equal(t, "First2", m.form.inputs[0].Value())

	press(m, "ctrl+u", "Renamed", "enter")

	got, ok := b.Get(second.ID)
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.FirstName)
	assert.Equal(t, "Last2", got.LastName)
	assert.Equal(t, second.ID, b.All()[1].ID, "edit keeps position")
	assert.Contains(t, m.View(), "Updated Renamed Last2.")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	b := newTestBook(t, nil)
	seed(t, b, 2)
	m := NewContactsModel(context.Background(), b)

	press(m, "d")
	require.Equal(t, ContactViewDeleteConfirm, m.currentView)
	assert.Contains(t, m.View(), "Confirm delete")

	press(m, "n")
	assert.Equal(t, ContactViewList, m.currentView)
	assert.Equal(t, 2, b.Len())

	press(m, "down", "d", "y")
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, "First1", b.All()[0].FirstName)
	assert.Equal(t, 0, m.selected)
}

func TestPersistFailureShowsBannerAndKeepsContact(t *testing.T) {
	b := newTestBook(t, &brokenSlot{})
	m := NewContactsModel(context.Background(), b)

	press(m, "ctrl+n")
	fillForm(m, "Ada", "Lovelace", "555", "ada@example.com")
	press(m, "enter")

	assert.Equal(t, 1, b.Len())
	require.Error(t, m.err)
	assert.ErrorIs(t, m.err, book.ErrPersist)
	assert.Contains(t, m.View(), "kept in memory")
	assert.Contains(t, m.View(), "Ada")
}

func TestAppModelHelpToggle(t *testing.T) {
	b := newTestBook(t, nil)
	var model tea.Model = NewAppModel(context.Background(), b)

	assert.Equal(t, "Loading...", model.View())

	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, model.View(), "No contacts yet")

	model, cmd := model.Update(key("?"))
	require.NotNil(t, cmd)
	assert.NotContains(t, model.View(), "Keys", "navigation happens when the message arrives")
	model, _ = model.Update(cmd())
	assert.Contains(t, model.View(), "Keys")

	model, cmd = model.Update(key("esc"))
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.Contains(t, model.View(), "Contacts (0)")
}
