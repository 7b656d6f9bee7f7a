package pantrysync

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SyncLogger records one entry per sync run.
type SyncLogger interface {
	LogSync(run SyncLog) error
}

// NewSyncLogFilePath returns a timestamped log file path for a list under dir.
func NewSyncLogFilePath(dir, listID string) string {
	return filepath.Join(dir, fmt.Sprintf(
		"%d.%s.json",
		time.Now().Unix(),
		strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(strings.ToLower(listID)),
	))
}

// SyncLog represents a single sync run over one list.
type SyncLog struct {
	ListID       string        `json:"list_id"`
	Scope        string        `json:"scope"`
	Timestamp    time.Time     `json:"timestamp"`
	Duration     time.Duration `json:"duration_ns"`
	LinesRemoved int           `json:"lines_removed"`
	LinesUpdated int           `json:"lines_updated"`
	Remaining    int           `json:"remaining"`
	Decisions    []DecisionLog `json:"decisions,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// DecisionLog is what happened to one list line during a run.
type DecisionLog struct {
	LineID       string `json:"line_id"`
	IngredientID string `json:"ingredient_id,omitempty"`
	Action       string `json:"action"`
	Upgraded     bool   `json:"upgraded,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// FileSyncLogger accumulates runs and writes them out on Flush.
type FileSyncLogger struct {
	runs   []SyncLog
	writer io.Writer
}

// NewFileSyncLogger creates a new file-based sync logger
func NewFileSyncLogger(writer io.Writer) *FileSyncLogger {
	return &FileSyncLogger{
		runs:   make([]SyncLog, 0),
		writer: writer,
	}
}

// LogSync buffers the run (does not flush immediately)
func (l *FileSyncLogger) LogSync(run SyncLog) error {
	l.runs = append(l.runs, run)
	return nil
}

// Flush writes all buffered runs as one JSON document.
func (l *FileSyncLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"sync_session": map[string]any{
			"timestamp": time.Now(),
			"runs":      l.runs,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write sync log: %w", err)
	}

	l.runs = l.runs[:0]
	return nil
}

// NoOpSyncLogger discards all runs.
type NoOpSyncLogger struct{}

func NewNoOpSyncLogger() *NoOpSyncLogger { return &NoOpSyncLogger{} }

func (NoOpSyncLogger) LogSync(SyncLog) error { return nil }

// StdoutSyncLogger writes each run as a JSON line (for Lambda/CloudWatch).
type StdoutSyncLogger struct {
	out io.Writer
}

func NewStdoutSyncLogger() *StdoutSyncLogger {
	return &StdoutSyncLogger{out: os.Stdout}
}

func (l *StdoutSyncLogger) LogSync(run SyncLog) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
