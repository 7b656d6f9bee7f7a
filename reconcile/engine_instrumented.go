package reconcile

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// WithTelemetry traces each sync and records run, line and duration metrics.
func WithTelemetry(tracer trace.Tracer, meter metric.Meter) Option {
	return func(e *Engine) {
		e.tel = newInstruments(tracer, meter)
	}
}

type instruments struct {
	tracer trace.Tracer

	runs       metric.Int64Counter
	failures   metric.Int64Counter
	removed    metric.Int64Counter
	updated    metric.Int64Counter
	mismatches metric.Int64Counter
	upgrades   metric.Int64Counter
	duration   metric.Float64Histogram
}

func newInstruments(tracer trace.Tracer, meter metric.Meter) *instruments {
	in := &instruments{tracer: tracer}
	in.runs, _ = meter.Int64Counter("sync_runs_total",
		metric.WithDescription("Total number of list syncs started"))
	in.failures, _ = meter.Int64Counter("sync_failures_total",
		metric.WithDescription("Total number of list syncs that failed"))
	in.removed, _ = meter.Int64Counter("sync_lines_removed_total",
		metric.WithDescription("Total number of list lines removed as covered by the pantry"))
	in.updated, _ = meter.Int64Counter("sync_lines_updated_total",
		metric.WithDescription("Total number of list lines reduced by pantry stock"))
	in.mismatches, _ = meter.Int64Counter("sync_unit_mismatches_total",
		metric.WithDescription("Total number of list lines kept because units could not be compared"))
	in.upgrades, _ = meter.Int64Counter("sync_lines_upgraded_total",
		metric.WithDescription("Total number of list lines whose quantities were parsed or normalized"))
	in.duration, _ = meter.Float64Histogram("sync_duration_seconds",
		metric.WithDescription("Duration of a list sync in seconds"))
	return in
}

var noopTracer = noop.NewTracerProvider().Tracer("")

func (in *instruments) start(ctx context.Context, list List, lines int) (context.Context, trace.Span) {
	if in == nil {
		return noopTracer.Start(ctx, "Engine.Sync")
	}
	ctx, span := in.tracer.Start(ctx, "Engine.Sync", trace.WithAttributes(
		attribute.String("list_id", list.ID),
		attribute.Int("lines_count", lines),
	))
	if in.runs != nil {
		in.runs.Add(ctx, 1)
	}
	return ctx, span
}

func (in *instruments) record(ctx context.Context, span trace.Span, out Outcome, elapsed time.Duration, err error) {
	if in == nil {
		return
	}
	if in.duration != nil {
		in.duration.Record(ctx, elapsed.Seconds())
	}

	if err != nil {
		span.SetStatus(codes.Error, "Sync failed")
		span.RecordError(err)
		if in.failures != nil {
			in.failures.Add(ctx, 1)
		}
		return
	}

	var mismatches, upgrades int64
	for _, d := range out.Decisions {
		if d.Action == ActionMismatch {
			mismatches++
		}
		if d.Upgraded {
			upgrades++
		}
	}

	scope := attribute.String("scope_kind", string(out.Scope.Kind))
	add := func(c metric.Int64Counter, n int64) {
		if c != nil && n > 0 {
			c.Add(ctx, n, metric.WithAttributes(scope))
		}
	}
	add(in.removed, int64(out.Result.LinesRemoved))
	add(in.updated, int64(out.Result.LinesUpdated))
	add(in.mismatches, mismatches)
	add(in.upgrades, upgrades)

	span.SetAttributes(
		attribute.String("scope", out.Scope.String()),
		attribute.Int("lines_removed", out.Result.LinesRemoved),
		attribute.Int("lines_updated", out.Result.LinesUpdated),
		attribute.Int("lines_remaining", len(out.Result.Remainder)),
		attribute.Int64("unit_mismatches", mismatches),
	)
	span.SetStatus(codes.Ok, "")
}
