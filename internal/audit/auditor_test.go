package audit

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactAuditorRecordAndHistory(t *testing.T) {
	auditor, err := NewContactAuditor(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, auditor.Record(AuditActionCreate, 7, nil))
	require.NoError(t, auditor.Record(AuditActionUpdate, 7, map[string]string{"phone": "555"}))
	require.NoError(t, auditor.Record(AuditActionCreate, 8, nil))

	_, err = os.Stat(auditor.Path())
	assert.True(t, os.IsNotExist(err), "entries should stay buffered until flushed")

	history, err := auditor.History(7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, AuditActionCreate, history[0].Action)
	assert.Equal(t, "555", history[1].Details["phone"])
	assert.NotEqual(t, history[0].ID, history[1].ID)
}

func TestContactAuditorFlushesFullBatch(t *testing.T) {
	auditor, err := NewContactAuditor(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < defaultBatchSize; i++ {
		require.NoError(t, auditor.Record(AuditActionDelete, int64(i), nil))
	}

	data, err := os.ReadFile(auditor.Path())
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, strings.Count(string(data), "\n"))

	require.NoError(t, auditor.Close())
}

func TestContactAuditorHistoryWithoutFile(t *testing.T) {
	auditor, err := NewContactAuditor(t.TempDir())
	require.NoError(t, err)

	history, err := auditor.History(1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// shortWriter accepts a fixed number of writes and then fails.
type shortWriter struct {
	bytes.Buffer
	left int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.left == 0 {
		return 0, errors.New("disk full")
	}
	w.left--
	return w.Buffer.Write(p)
}

func TestPartialWriteKeepsOnlyUnwrittenEntries(t *testing.T) {
	auditor, err := NewContactAuditor(t.TempDir())
	require.NoError(t, err)

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, auditor.Record(AuditActionCreate, id, nil))
	}

	w := &shortWriter{left: 1}
	auditor.mu.Lock()
	err = auditor.writeBatchLocked(w)
	pending := len(auditor.batchLogs)
	auditor.mu.Unlock()

	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(w.String(), "\n"))
	assert.Equal(t, 2, pending)

	require.NoError(t, auditor.Flush())
	data, err := os.ReadFile(auditor.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	history, err := auditor.History(1)
	require.NoError(t, err)
	assert.Empty(t, history, "entry 1 already reached the first writer")
}
