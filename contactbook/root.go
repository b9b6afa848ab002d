package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhystmorgan/contactbook/internal/audit"
	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/config"
	"rhystmorgan/contactbook/internal/logging"
	"rhystmorgan/contactbook/internal/storage"
	"rhystmorgan/contactbook/internal/views"
)

// app is the state shared by every command, built before the command runs.
type app struct {
	configFile string
	verbose    bool

	config  *config.Config
	logger  *zap.Logger
	slot    storage.Slot
	auditor *audit.ContactAuditor
	book    *book.ContactBook
}

// execute runs the command line in args. Storage, the audit log and the
// logger are closed even when the command fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd, a := newRootCmd()
	defer a.close()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "contactbook",
		Short: "A paginated, filterable address book for the terminal",
		Long: `contactbook keeps a small list of personal contacts in a single storage
slot and shows them a page at a time.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return views.Run(cmd.Context(), a.book)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default ~/.contactbook/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newEditCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)

	return rootCmd, a
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.config = cfg

	a.logger, err = logging.New(cfg.Log, a.verbose)
	if err != nil {
		return err
	}

	a.slot, err = storage.Open(cmd.Context(), cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	opts := []book.Option{
		book.WithPerPage(cfg.PerPage),
		book.WithLogger(a.logger),
	}
	if cfg.Audit.Enabled {
		a.auditor, err = audit.NewContactAuditor(cfg.Audit.Dir)
		if err != nil {
			return err
		}
		opts = append(opts, book.WithAuditor(a.auditor))
	}

	a.book = book.New(a.slot, opts...)
	if err := a.book.Load(cmd.Context()); err != nil {
		return err
	}

	a.logger.Debug("contact book opened",
		zap.String("command", cmd.Name()),
		zap.String("backend", cfg.Backend),
		zap.Int("contacts", a.book.Len()),
	)
	return nil
}

func (a *app) close() {
	if a.auditor != nil {
		if err := a.auditor.Close(); err != nil {
			a.logger.Warn("failed to flush audit log", zap.Error(err))
		}
	}
	if a.slot != nil {
		if err := a.slot.Close(); err != nil {
			a.logger.Warn("failed to close storage", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	a.auditor, a.slot, a.logger = nil, nil, nil
}

// record writes an audit entry for actions that bypass the book's own hook.
func (a *app) record(action audit.AuditAction, details map[string]string) {
	if a.auditor == nil {
		return
	}
	if err := a.auditor.Record(action, 0, details); err != nil {
		a.logger.Warn("failed to record audit entry", zap.String("action", string(action)), zap.Error(err))
	}
}
