package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDir      = ".contactbook"
	DefaultSlot = "contacts"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Slot is a single named location holding the serialized contact list.
// Read returns nil data and a nil error when the slot has never been written.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

type Options struct {
	Backend    string
	DataDir    string
	Slot       string
	Passphrase string
}

// DefaultDataDir returns ~/.contactbook.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

// Open returns the slot for the configured backend, wrapped in an
// EncryptedSlot when a passphrase is set.
func Open(ctx context.Context, opts Options) (Slot, error) {
	if opts.Slot == "" {
		opts.Slot = DefaultSlot
	}

	var (
		slot Slot
		err  error
	)
	switch opts.Backend {
	case BackendFile, "":
		slot, err = NewFileSlot(opts.DataDir, opts.Slot)
	case BackendSQLite:
		slot, err = OpenSQLiteSlot(ctx, filepath.Join(opts.DataDir, "contactbook.db"), opts.Slot)
	case BackendMemory:
		slot = NewMemorySlot(nil)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.Passphrase != "" {
		slot = NewEncryptedSlot(slot, opts.Passphrase)
	}
	return slot, nil
}

// FileSlot keeps the slot as <dataDir>/<name>.json.
type FileSlot struct {
	path string
}

func NewFileSlot(dataDir, name string) (*FileSlot, error) {
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDataDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileSlot{path: filepath.Join(dataDir, name+".json")}, nil
}

func (s *FileSlot) Path() string {
	return s.path
}

func (s *FileSlot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	}
	return data, nil
}

// Write replaces the file atomically through a temp file in the same directory.
func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write slot file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set slot file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close slot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace slot file: %w", err)
	}
	return nil
}

func (s *FileSlot) Close() error {
	return nil
}
