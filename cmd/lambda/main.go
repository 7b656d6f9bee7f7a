package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"pantrysync"
	"pantrysync/ingredient"
	"pantrysync/reconcile"
	"pantrysync/slack"
	"pantrysync/storage"
	"pantrysync/tools"
)

type Results struct {
	Output map[string]any `json:"output"`
}

func main() {
	fn := func(ctx context.Context, call tools.Call) (Results, error) {
		var syncConfig pantrysync.SyncConfig
		if err := envdecode.Decode(&syncConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var s3Config pantrysync.S3Config
		if err := envdecode.Decode(&s3Config); err != nil {
			return Results{}, fmt.Errorf("missing S3 config: %w", err)
		}

		var slackConfig pantrysync.SlackConfig
		if err := envdecode.Decode(&slackConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		if call.Name == "" {
			call.Name = "list_sync"
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		state := storage.NewS3State(s3.NewFromConfig(awsCfg), s3Config.Bucket, s3Config.SnapshotKey)
		slog.Info("SETUP: S3 household state initialized", "bucket", s3Config.Bucket, "key", s3Config.SnapshotKey)

		tel, err := pantrysync.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := tel.Shutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		vocab := ingredient.DefaultVocabulary()
		if syncConfig.ResolverCandidateLimit > 0 {
			vocab.CandidateLimit = syncConfig.ResolverCandidateLimit
		}

		service := storage.NewService(state, vocab,
			reconcile.WithLogger(pantrysync.NewStdoutSyncLogger()),
			reconcile.WithTelemetry(tel.Tracer, tel.Meter),
		)

		output, err := tools.NewRegistry(service).Run(ctx, call)
		if err != nil {
			slog.Error("RESULT: Error handling call", "tool", call.Name, "error", err)
			return Results{}, err
		}

		if call.Name == "list_sync" && slackConfig.WebhookURL != "" {
			notify(ctx, slack.NewClient(slackConfig.WebhookURL, http.DefaultClient), slackConfig.Channel, output)
		}

		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}

func notify(ctx context.Context, notifier pantrysync.Notifier, channel string, output map[string]any) {
	summary := pantrysync.SyncSummary{ListID: fmt.Sprint(output["list_id"])}
	if n, ok := output["lines_removed"].(float64); ok {
		summary.Removed = int(n)
	}
	if n, ok := output["lines_updated"].(float64); ok {
		summary.Updated = int(n)
	}
	if remainder, ok := output["remainder"].([]any); ok {
		summary.Remaining = len(remainder)
	}
	if !summary.Changed() {
		return
	}
	if err := notifier.PostSummary(ctx, channel, summary); err != nil {
		slog.Error("Failed to post summary to Slack", "error", err)
	}
}
