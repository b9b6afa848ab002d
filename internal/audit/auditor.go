package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const defaultBatchSize = 10

// ContactAuditor appends contact actions to a daily JSON-lines file.
type ContactAuditor struct {
	logFile   string
	batchSize int
	mu        sync.Mutex
	batchLogs []AuditLog
	seq       int
	now       func() time.Time
}

// NewContactAuditor creates a new ContactAuditor instance
func NewContactAuditor(logDir string) (*ContactAuditor, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	return &ContactAuditor{
		logFile:   filepath.Join(logDir, fmt.Sprintf("contact_audit_%s.log", time.Now().Format("2006-01-02"))),
		batchSize: defaultBatchSize,
		batchLogs: make([]AuditLog, 0, defaultBatchSize),
		now:       time.Now,
	}, nil
}

func (a *ContactAuditor) Path() string {
	return a.logFile
}

// Record queues an entry and flushes once the batch is full.
func (a *ContactAuditor) Record(action AuditAction, contactID int64, details map[string]string) error {
	a.mu.Lock()
	a.seq++
	ts := a.now()
	a.batchLogs = append(a.batchLogs, AuditLog{
		ID:        fmt.Sprintf("audit_%s_%d", ts.Format("20060102150405"), a.seq),
		ContactID: contactID,
		Action:    action,
		Timestamp: ts,
		Details:   details,
	})
	full := len(a.batchLogs) >= a.batchSize
	a.mu.Unlock()

	if full {
		return a.Flush()
	}
	return nil
}

// Flush writes all pending audit logs to storage
func (a *ContactAuditor) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.batchLogs) == 0 {
		return nil
	}

	file, err := os.OpenFile(a.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	return a.writeBatchLocked(file)
}

// writeBatchLocked writes the pending entries to w. Entries that reached w
// leave the batch even when a later one fails.
func (a *ContactAuditor) writeBatchLocked(w io.Writer) error {
	for i, log := range a.batchLogs {
		logJSON, err := json.Marshal(log)
		if err == nil {
			_, err = w.Write(append(logJSON, '\n'))
		}
		if err != nil {
			a.batchLogs = append(a.batchLogs[:0], a.batchLogs[i:]...)
			return fmt.Errorf("failed to write audit log: %w", err)
		}
	}

	a.batchLogs = a.batchLogs[:0]
	return nil
}

// History returns the entries recorded for contactID, oldest first.
func (a *ContactAuditor) History(contactID int64) ([]AuditLog, error) {
	if err := a.Flush(); err != nil {
		return nil, err
	}

	var logs []AuditLog

	file, err := os.Open(a.logFile)
	if errors.Is(err, os.ErrNotExist) {
		return logs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var log AuditLog
		if err := decoder.Decode(&log); err != nil {
			break
		}
		if log.ContactID == contactID {
			logs = append(logs, log)
		}
	}

	return logs, nil
}

// Close ensures all pending logs are written
func (a *ContactAuditor) Close() error {
	return a.Flush()
}
