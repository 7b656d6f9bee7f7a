package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestEngine_WithTelemetry(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	spans := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")

	h := newHousehold()
	h.ingredients = catalog(eggs, flour)
	h.pantries[Scope{ScopeFamily, "smiths"}] = append(h.pantries[Scope{ScopeFamily, "smiths"}],
		Line{ID: "p9", IngredientID: "flour", CanonicalQuantity: dec("500"), CanonicalUnit: "g"})

	engine := NewEngine(h, WithTelemetry(tracer, meter))
	_, err := engine.Sync(ctx, List{ID: "weekly", FamilyID: "smiths"}, []Line{
		{ID: "l1", IngredientID: "eggs", CanonicalQuantity: dec("6"), CanonicalUnit: "count"},
		{ID: "l2", IngredientID: "eggs", CanonicalQuantity: dec("10"), CanonicalUnit: "count"},
		{ID: "l3", IngredientID: "flour", Note: "2 cups"},
	})
	require.NoError(t, err)

	_, err = engine.Sync(ctx, List{ID: "orphan"}, nil)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.EqualValues(t, 2, sumOf(t, rm, "sync_runs_total"))
	assert.EqualValues(t, 1, sumOf(t, rm, "sync_failures_total"))
	assert.EqualValues(t, 1, sumOf(t, rm, "sync_lines_removed_total"))
	assert.EqualValues(t, 1, sumOf(t, rm, "sync_lines_updated_total"))
	assert.EqualValues(t, 1, sumOf(t, rm, "sync_unit_mismatches_total"))
	assert.EqualValues(t, 1, sumOf(t, rm, "sync_lines_upgraded_total"))

	ended := spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "Engine.Sync", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}

func TestEngine_WithoutTelemetry(t *testing.T) {
	_, err := NewEngine(newHousehold()).Sync(context.Background(), List{ID: "a", FamilyID: "smiths"}, nil)
	assert.NoError(t, err)
}
