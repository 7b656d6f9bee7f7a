package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"pantrysync"
	"pantrysync/ingredient"
	"pantrysync/reconcile"
	"pantrysync/storage"
	"pantrysync/storage/sqlstore"
)

type backend interface {
	SyncList(ctx context.Context, listID string) (reconcile.Outcome, error)
	PlanToList(ctx context.Context, listID string, sources []reconcile.Source) (reconcile.Aggregate, []reconcile.Line, error)
}

func main() {
	listID := flag.String("list", "", "id of the shopping list to sync")
	planPath := flag.String("plan", "", "JSON file of plan sources to add to the list before syncing")
	debug := flag.Bool("debug", false, "dump the full sync outcome")
	flag.Parse()

	if *listID == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("SETUP: Failed to read .env", "error", err)
	}

	var syncConfig pantrysync.SyncConfig
	if err := envdecode.Decode(&syncConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var dbConfig pantrysync.DatabaseConfig
	if err := envdecode.Decode(&dbConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	vocab, err := ingredient.LoadVocabulary(syncConfig.ResolverVocabularyPath)
	if err != nil {
		log.Fatalf("SETUP: Failed to load vocabulary: %s", err)
	}
	if syncConfig.ResolverCandidateLimit > 0 && vocab.CandidateLimit == ingredient.DefaultCandidateLimit {
		vocab.CandidateLimit = syncConfig.ResolverCandidateLimit
	}

	logger, cleanup, err := newSyncLogger(syncConfig.SyncLogDir, *listID)
	if err != nil {
		slog.Error("SETUP: Failed to create sync logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush sync log", "error", err)
		}
	}()

	ctx := context.Background()

	b, err := newBackend(ctx, syncConfig, dbConfig, vocab, reconcile.WithLogger(logger))
	if err != nil {
		slog.Error("SETUP: Failed to open household", "error", err)
		return
	}

	if *planPath != "" {
		sources, err := readSources(*planPath)
		if err != nil {
			slog.Error("SETUP: Failed to read plan", "path", *planPath, "error", err)
			return
		}
		agg, lines, err := b.PlanToList(ctx, *listID, sources)
		if err != nil {
			slog.Error("FAILURE: Error adding plan to list", "error", err)
			return
		}
		for _, s := range agg.Skipped {
			slog.Warn("RESULT: Plan source kept as a note", "source", s.Source.Name, "reason", s.Reason)
		}
		slog.Info("RESULT: Plan added to list", "list_id", *listID, "needs", len(agg.Needs), "lines", len(lines))
	}

	out, err := b.SyncList(ctx, *listID)
	if err != nil {
		slog.Error("FAILURE: Error syncing list", "list_id", *listID, "error", err)
		return
	}

	summary := out.Summary(*listID)
	slog.Info("RESULT: List synced", "list_id", *listID, "scope", out.Scope.String(), "changed", summary.Changed())
	fmt.Println(summary)

	if *debug {
		pantrysync.Dump(os.Stdout, out)
	}
}

func newBackend(ctx context.Context, syncConfig pantrysync.SyncConfig, dbConfig pantrysync.DatabaseConfig, vocab ingredient.Vocabulary, opts ...reconcile.Option) (backend, error) {
	if dbConfig.DSN == "" {
		slog.Info("SETUP: Using snapshot file", "path", syncConfig.SnapshotPath)
		return storage.NewService(storage.NewFileState(syncConfig.SnapshotPath), vocab, opts...), nil
	}

	store, err := sqlstore.Open(dbConfig.DSN, vocab, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	slog.Info("SETUP: Using database")
	return store, nil
}

func readSources(path string) ([]reconcile.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sources []reconcile.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to decode plan sources: %w", err)
	}
	return sources, nil
}

func newSyncLogger(dir, listID string) (pantrysync.SyncLogger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFilePath := pantrysync.NewSyncLogFilePath(dir, listID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := pantrysync.NewFileSyncLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
