package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/models"
)

type listOutput struct {
	Contacts []models.Contact `json:"contacts"`
	Page     int              `json:"page"`
	Total    int              `json:"total"`
	Count    int              `json:"count"`
	Info     string           `json:"info"`
}

// setup points every run at a fresh data dir and keeps logs off the terminal.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONTACTBOOK_DATA_DIR", dir)
	t.Setenv("CONTACTBOOK_LOG_FILE", "off")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	configFile := filepath.Join(t.TempDir(), "missing.yaml")
	err := execute(context.Background(), append([]string{"--config", configFile}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func list(t *testing.T, args ...string) listOutput {
	t.Helper()
	var out listOutput
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, append([]string{"list", "--json"}, args...)...)), &out))
	return out
}

func addContact(t *testing.T, first, last, phone, email string) {
	t.Helper()
	mustRun(t, "add", "--first", first, "--last", last, "--phone", phone, "--email", email)
}

func TestAddAndList(t *testing.T) {
	setup(t)

	out := mustRun(t, "add", "--first", "Ada", "--last", "Lovelace", "--phone", "555-0100", "--email", "ada@example.com")
	assert.Contains(t, out, "(Ada Lovelace)")

	out = mustRun(t, "list")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "Page 1/1 (1 contacts)")
}

func TestAddRejectsMissingField(t *testing.T) {
	setup(t)

	_, err := run(t, "add", "--first", "Ada", "--last", "Lovelace", "--phone", "555")
	assert.ErrorIs(t, err, book.ErrInvalidContact)
	assert.Zero(t, list(t).Count)
}

func TestListPagesAndFilters(t *testing.T) {
	setup(t)
	for i := 1; i <= 6; i++ {
		phone := fmt.Sprintf("212-%04d", i)
		if i == 2 || i == 5 {
			phone = fmt.Sprintf("555-%04d", i)
		}
		addContact(t, fmt.Sprintf("First%d", i), "Last", phone, "x@example.com")
	}

	first := list(t)
	assert.Equal(t, "1/2", first.Info)
	assert.Len(t, first.Contacts, 5)

	second := list(t, "--page", "2")
	require.Len(t, second.Contacts, 1)
	assert.Equal(t, "First6", second.Contacts[0].FirstName)

	clamped := list(t, "--page", "9")
	assert.Equal(t, "2/2", clamped.Info)

	filtered := list(t, "--filter-field", "phone", "--filter-value", "555")
	assert.Equal(t, 2, filtered.Count)
	assert.Equal(t, "1/1", filtered.Info)

	_, err := run(t, "list", "--filter-field", "id", "--filter-value", "1")
	assert.Error(t, err)

	assert.Equal(t, 6, list(t).Count, "filter is not persisted")
}

func TestEditKeepsOmittedFields(t *testing.T) {
	setup(t)
	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")
	id := list(t).Contacts[0].ID

	mustRun(t, "edit", fmt.Sprint(id), "--last", "King")

	got := list(t).Contacts[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "King", got.LastName)

	_, err := run(t, "edit", fmt.Sprint(id), "--email", " ")
	assert.ErrorIs(t, err, book.ErrInvalidContact)

	_, err = run(t, "edit", "42", "--last", "X")
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	setup(t)
	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")
	id := fmt.Sprint(list(t).Contacts[0].ID)

	assert.Contains(t, mustRun(t, "delete", id), "Deleted contact "+id)

	_, err := run(t, "delete", id)
	assert.ErrorIs(t, err, book.ErrNotFound)
	assert.Zero(t, list(t).Count)

	_, err = run(t, "delete", "abc")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	setup(t)
	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")
	addContact(t, "Alan", "Turing", "212", "alan@example.com")

	exportFile := filepath.Join(t.TempDir(), "contacts.csv")
	assert.Contains(t, mustRun(t, "export", exportFile), "Exported 2 contacts")

	setup(t)
	out := mustRun(t, "import", exportFile)
	assert.Contains(t, out, "Imported 2 of 2 contacts (0 skipped)")

	out = mustRun(t, "import", "--skip-duplicates", exportFile)
	assert.Contains(t, out, "Imported 0 of 2 contacts (2 skipped)")

	got := list(t)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "Ada", got.Contacts[0].FirstName)
	assert.Equal(t, "Turing", got.Contacts[1].LastName)

	_, err := run(t, "export", "--format", "xml", exportFile)
	assert.Error(t, err)
}

func TestExportWithoutFileWritesBackup(t *testing.T) {
	dir := setup(t)
	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")

	out := mustRun(t, "export", "--format", "csv")
	assert.Contains(t, out, "Exported 1 contacts to "+filepath.Join(dir, "backups", "contacts_backup_"))

	matches, err := filepath.Glob(filepath.Join(dir, "backups", "contacts_backup_*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	setup(t)
	assert.Contains(t, mustRun(t, "import", matches[0]), "Imported 1 of 1 contacts")
}

func TestHistoryNeedsAudit(t *testing.T) {
	setup(t)
	_, err := run(t, "history", "1")
	assert.ErrorContains(t, err, "audit log is disabled")

	t.Setenv("CONTACTBOOK_AUDIT_ENABLED", "true")
	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")
	id := fmt.Sprint(list(t).Contacts[0].ID)
	mustRun(t, "edit", id, "--phone", "777")

	out := mustRun(t, "history", id)
	assert.Contains(t, out, "create")
	assert.Contains(t, out, `update  phone="777"`)
}

func TestSQLiteBackendPersistsAcrossRuns(t *testing.T) {
	dir := setup(t)
	t.Setenv("CONTACTBOOK_BACKEND", "sqlite")

	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")
	assert.FileExists(t, filepath.Join(dir, "contactbook.db"))
	assert.Equal(t, 1, list(t).Count)
}

func TestEncryptedSlotNeedsPassphrase(t *testing.T) {
	setup(t)
	t.Setenv("CONTACTBOOK_PASSPHRASE", "correct horse")
	addContact(t, "Ada", "Lovelace", "555", "ada@example.com")
	assert.Equal(t, 1, list(t).Count)

	t.Setenv("CONTACTBOOK_PASSPHRASE", "wrong")
	_, err := run(t, "list")
	assert.Error(t, err)
}
