// Package transfer moves contacts in and out of the book as JSON or CSV.
package transfer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/models"
	"rhystmorgan/contactbook/internal/validation"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

const exportVersion = "1.0"

var csvHeader = []string{
	string(models.FieldFirstName),
	string(models.FieldLastName),
	string(models.FieldPhone),
	string(models.FieldEmail),
}

func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be 'json' or 'csv')", name)
	}
}

// FormatFromPath guesses the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// ContactData is one contact as it appears in an export file. IDs are not
// exported; imported contacts are always given fresh ones.
type ContactData struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`

	LineNumber int `json:"-"`
}

type exportWrapper struct {
	ExportedAt    time.Time     `json:"exported_at"`
	Version       string        `json:"version"`
	TotalContacts int           `json:"total_contacts"`
	Contacts      []ContactData `json:"contacts"`
}

type ImportError struct {
	LineNumber int
	Field      string
	Message    string
}

func (e ImportError) String() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.LineNumber, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.LineNumber, e.Field, e.Message)
}

type ImportResult struct {
	TotalContacts    int
	ImportedContacts int
	SkippedContacts  int
	Errors           []ImportError
	Warnings         []string
	Imported         []models.Contact
}

// Adder is the part of the contact book an import writes through.
type Adder interface {
	Add(ctx context.Context, firstName, lastName, phone, email string) (models.Contact, error)
	All() []models.Contact
}

type ImportOptions struct {
	Format Format
	// SkipDuplicates drops rows whose four fields equal an existing contact.
	SkipDuplicates bool
}

func Export(w io.Writer, format Format, contacts []models.Contact) error {
	switch format {
	case FormatJSON:
		return exportJSON(w, contacts, time.Now())
	case FormatCSV:
		return exportCSV(w, contacts)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportFile writes contacts to path, creating its directory.
func ExportFile(path string, format Format, contacts []models.Contact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Export(file, format, contacts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func exportJSON(w io.Writer, contacts []models.Contact, now time.Time) error {
	wrapper := exportWrapper{
		ExportedAt:    now.UTC(),
		Version:       exportVersion,
		TotalContacts: len(contacts),
		Contacts:      make([]ContactData, 0, len(contacts)),
	}
	for _, c := range contacts {
		wrapper.Contacts = append(wrapper.Contacts, ContactData{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Phone:     c.Phone,
			Email:     c.Email,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(wrapper); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func exportCSV(w io.Writer, contacts []models.Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range contacts {
		if err := writer.Write([]string{c.FirstName, c.LastName, c.Phone, c.Email}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Parse reads an export file and validates every row. Rows failing
// validation are reported in the result and left out of the returned slice.
func Parse(r io.Reader, format Format) (*ImportResult, []ContactData, error) {
	var rows []ContactData
	var err error

	switch format {
	case FormatJSON:
		rows, err = parseJSON(r)
	case FormatCSV:
		rows, err = parseCSV(r)
	default:
		return nil, nil, fmt.Errorf("unsupported import format: %s", format)
	}
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{TotalContacts: len(rows)}
	valid := make([]ContactData, 0, len(rows))
	for _, row := range rows {
		check := validation.ValidateContact(row.FirstName, row.LastName, row.Phone, row.Email)
		if !check.IsValid {
			for _, e := range check.Errors {
				result.Errors = append(result.Errors, ImportError{
					LineNumber: row.LineNumber,
					Field:      e.Field,
					Message:    e.Message,
				})
			}
			result.SkippedContacts++
			continue
		}
		valid = append(valid, row)
	}

	return result, valid, nil
}

// parseJSON accepts the export wrapper or a bare array of contacts.
func parseJSON(r io.Reader) ([]ContactData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	var rows []ContactData
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	} else {
		var wrapper exportWrapper
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
		rows = wrapper.Contacts
	}

	for i := range rows {
		rows[i].LineNumber = i + 1
	}
	return rows, nil
}

func parseCSV(r io.Reader) ([]ContactData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("empty CSV file")
	}

	headerMap := make(map[models.Field]int)
	for idx, col := range records[0] {
		if field, err := models.ParseField(col); err == nil {
			headerMap[field] = idx
		}
	}
	for _, field := range models.Fields {
		if _, ok := headerMap[field]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", field)
		}
	}

	column := func(record []string, field models.Field) string {
		idx := headerMap[field]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]ContactData, 0, len(records)-1)
	for rowIdx, record := range records[1:] {
		rows = append(rows, ContactData{
			FirstName: column(record, models.FieldFirstName),
			LastName:  column(record, models.FieldLastName),
			Phone:     column(record, models.FieldPhone),
			Email:     column(record, models.FieldEmail),
			// header is line 1
			LineNumber: rowIdx + 2,
		})
	}
	return rows, nil
}

// Import parses r and adds every valid row to the book. Each add persists;
// a persistence failure stops the import and is returned with the partial
// result.
func Import(ctx context.Context, dst Adder, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	result, rows, err := Parse(r, opts.Format)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{})
	if opts.SkipDuplicates {
		for _, c := range dst.All() {
			existing[dedupeKey(c.FirstName, c.LastName, c.Phone, c.Email)] = struct{}{}
		}
	}

	for _, row := range rows {
		if opts.SkipDuplicates {
			key := dedupeKey(row.FirstName, row.LastName, row.Phone, row.Email)
			if _, dup := existing[key]; dup {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: duplicate of an existing contact, skipped", row.LineNumber))
				result.SkippedContacts++
				continue
			}
			existing[key] = struct{}{}
		}

		contact, err := dst.Add(ctx, row.FirstName, row.LastName, row.Phone, row.Email)
		if err != nil {
			var invalid *validation.Error
			if errors.As(err, &invalid) {
				result.Errors = append(result.Errors, ImportError{LineNumber: row.LineNumber, Message: err.Error()})
				result.SkippedContacts++
				continue
			}
			if errors.Is(err, book.ErrPersist) {
				// The contact is in the book even though it was not saved.
				result.Imported = append(result.Imported, contact)
				result.ImportedContacts++
			}
			return result, fmt.Errorf("import stopped at line %d: %w", row.LineNumber, err)
		}

		result.Imported = append(result.Imported, contact)
		result.ImportedContacts++
	}

	return result, nil
}

func ImportFile(ctx context.Context, dst Adder, path string, opts ImportOptions) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Import(ctx, dst, file, opts)
}

func dedupeKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "\x00")
}

// BackupFilename returns a timestamped export file name.
func BackupFilename(format Format, now time.Time) string {
	return fmt.Sprintf("contacts_backup_%s.%s", now.Format("2006-01-02_15-04-05"), format)
}
