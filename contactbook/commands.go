package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhystmorgan/contactbook/internal/api"
	"rhystmorgan/contactbook/internal/audit"
	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/models"
	"rhystmorgan/contactbook/internal/transfer"
	"rhystmorgan/contactbook/internal/utils"
	"rhystmorgan/contactbook/internal/validation"
)

func newAddCmd(a *app) *cobra.Command {
	var first, last, phone, email string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Example: `  contactbook add --first Ada --last Lovelace --phone 555-0100 --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contact, err := a.book.Add(cmd.Context(), first, last, phone, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added contact %d (%s)\n", contact.ID, contact.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		page        int
		filterField string
		filterValue string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filterField != "" {
				if err := validation.ValidateFilterField(filterField).Err(); err != nil {
					return err
				}
				field, _ := models.ParseField(filterField)
				a.book.Filter(field, filterValue)
			} else if filterValue != "" {
				return errors.New("--filter-value needs --filter-field")
			}
			a.book.GoToPage(page)
			view := a.book.CurrentView()

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(struct {
					Contacts []models.Contact `json:"contacts"`
					Page     int              `json:"page"`
					Total    int              `json:"total"`
					Count    int              `json:"count"`
					Info     string           `json:"info"`
				}{view.Contacts, view.Number, view.Total, view.Count, view.Info()})
			}

			if len(view.Contacts) == 0 {
				fmt.Fprintln(out, "No contacts.")
			} else {
				fmt.Fprintln(out, contactTable(view.Contacts))
			}
			fmt.Fprintf(out, "Page %s (%d contacts)\n", view.Info(), view.Count)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, clamped to the last page")
	cmd.Flags().StringVar(&filterField, "filter-field", "", "field to filter on: firstName, lastName, phone or email")
	cmd.Flags().StringVar(&filterValue, "filter-value", "", "case-insensitive substring the field must contain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the page as JSON")
	return cmd
}

func contactTable(contacts []models.Contact) string {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName, c.Phone, c.Email})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(utils.DefaultStyles.Muted).
		Headers("ID", "First name", "Last name", "Phone", "Email").
		Rows(rows...).
		String()
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.book.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted contact %d\n", id)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var first, last, phone, email string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a contact in place; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, ok := a.book.Get(id)
			if !ok {
				return fmt.Errorf("%w: %d", book.ErrNotFound, id)
			}

			flags := cmd.Flags()
			keep := func(name, value, existing string) string {
				if flags.Changed(name) {
					return value
				}
				return existing
			}

			contact, err := a.book.Edit(cmd.Context(), id,
				keep("first", first, current.FirstName),
				keep("last", last, current.LastName),
				keep("phone", phone, current.Phone),
				keep("email", email, current.Email),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated contact %d (%s)\n", contact.ID, contact.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export every contact as JSON or CSV",
		Long: `Export writes every contact, ignoring any filter. Without FILE a timestamped
backup is written under the data directory's backups folder.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			f, err := resolveFormat(format, path)
			if err != nil {
				return err
			}
			if path == "" {
				path = filepath.Join(a.config.DataDir, "backups", transfer.BackupFilename(f, time.Now()))
			}

			contacts := a.book.All()
			if err := transfer.ExportFile(path, f, contacts); err != nil {
				return err
			}
			a.record(audit.AuditActionExport, map[string]string{
				"file":   path,
				"format": string(f),
				"count":  strconv.Itoa(len(contacts)),
			})
			a.logger.Info("contacts exported", zap.String("file", path), zap.Int("count", len(contacts)))

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contacts to %s\n", len(contacts), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or csv (default: from the file extension)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		format         string
		skipDuplicates bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import contacts from a JSON or CSV export",
		Long: `Import reads a file written by export, or a plain JSON array, or a CSV file
with firstName,lastName,phone,email columns. Every row gets a new id. Rows
with a blank field are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := resolveFormat(format, path)
			if err != nil {
				return err
			}

			result, err := transfer.ImportFile(cmd.Context(), a.book, path, transfer.ImportOptions{
				Format:         f,
				SkipDuplicates: skipDuplicates,
			})
			if result != nil {
				printImportResult(cmd, result)
				a.record(audit.AuditActionImport, map[string]string{
					"file":     path,
					"format":   string(f),
					"imported": strconv.Itoa(result.ImportedContacts),
					"skipped":  strconv.Itoa(result.SkippedContacts),
				})
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or csv (default: from the file extension)")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "skip rows identical to an existing contact")
	return cmd
}

func printImportResult(cmd *cobra.Command, result *transfer.ImportResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d of %d contacts (%d skipped)\n",
		result.ImportedContacts, result.TotalContacts, result.SkippedContacts)
	for _, e := range result.Errors {
		fmt.Fprintln(out, "  error:", e.String())
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(out, "  warning:", w)
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show today's audit entries for a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.auditor == nil {
				return errors.New("audit log is disabled; set audit.enabled in the config")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			logs, err := a.auditor.History(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintf(out, "No audit entries for contact %d\n", id)
				return nil
			}
			for _, log := range logs {
				fmt.Fprintf(out, "%s  %-7s %s\n", log.Timestamp.Format("15:04:05"), log.Action, formatDetails(log.Details))
			}
			return nil
		},
	}
}

func formatDetails(details map[string]string) string {
	parts := make([]string, 0, len(details))
	for _, f := range models.Fields {
		if v, ok := details[string(f)]; ok {
			parts = append(parts, fmt.Sprintf("%s=%q", f, v))
		}
	}
	return strings.Join(parts, " ")
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the contact book over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.HTTP.Addr
			}
			srv := api.NewServer(addr, api.NewRouter(a.book, a.logger), a.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving contacts on http://%s/api/contacts/\n", addr)
			return api.ListenAndServe(cmd.Context(), srv, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8888)")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid contact id %q: %w", s, err)
	}
	return id, nil
}

func resolveFormat(flag, path string) (transfer.Format, error) {
	if flag == "" {
		return transfer.FormatFromPath(path), nil
	}
	return transfer.ParseFormat(flag)
}
