package pantrysync

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncLogFilePath(t *testing.T) {
	path := NewSyncLogFilePath("logs", "Family/Weekly Shop")
	assert.Equal(t, "logs", filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".family_weekly_shop.json"), path)
}

func TestFileSyncLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileSyncLogger(&buf)

	require.NoError(t, logger.LogSync(SyncLog{ListID: "weekly", LinesRemoved: 1}))
	require.NoError(t, logger.LogSync(SyncLog{ListID: "weekly", LinesUpdated: 2, Error: "boom"}))
	assert.Zero(t, buf.Len(), "runs are buffered until Flush")

	require.NoError(t, logger.Flush())

	var doc struct {
		Session struct {
			Runs []SyncLog `json:"runs"`
		} `json:"sync_session"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Session.Runs, 2)
	assert.Equal(t, 1, doc.Session.Runs[0].LinesRemoved)
	assert.Equal(t, "boom", doc.Session.Runs[1].Error)

	assert.NoError(t, NewFileSyncLogger(nil).Flush())
}

func TestStdoutSyncLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &StdoutSyncLogger{out: &buf}

	run := SyncLog{
		ListID:    "weekly",
		Scope:     "family:smiths",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Decisions: []DecisionLog{{LineID: "l1", Action: "removed"}},
	}
	require.NoError(t, logger.LogSync(run))
	require.NoError(t, logger.LogSync(run))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got SyncLog
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, run, got)
}

func TestNoOpSyncLogger(t *testing.T) {
	assert.NoError(t, NewNoOpSyncLogger().LogSync(SyncLog{ListID: "weekly"}))
}
