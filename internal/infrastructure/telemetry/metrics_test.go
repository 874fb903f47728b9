package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newTestMeter returns a meter backed by a manual reader so recorded values can be collected.
func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if len(attrs) == 0 || dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Minute,
		ServiceName:       "ims-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, cfg, mp.GetConfig())
	assert.NotNil(t, mp.Meter("ledger"))
	assert.NoError(t, mp.ForceFlush(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, mp.Shutdown(cancelled))
}

func TestCounter(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	counter, err := telemetry.NewCounter(mp.Meter("test"), "events_total", "Events", "{event}")
	require.NoError(t, err)

	counter.Add(ctx, 5, telemetry.AttrEventType.String("A"))
	counter.Inc(ctx, telemetry.AttrEventType.String("A"))
	counter.Inc(ctx, telemetry.AttrEventType.String("B"))

	m := collect(t, reader)["events_total"]
	assert.Equal(t, int64(6), sumOf(t, m, telemetry.AttrEventType.String("A")))
	assert.Equal(t, int64(7), sumOf(t, m))
}

func TestHistogram_CustomBoundaries(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	h, err := telemetry.NewHistogram(mp.Meter("test"), telemetry.HistogramOpts{
		Name:       "job_seconds",
		Unit:       "s",
		Boundaries: telemetry.JobDurationBuckets,
	})
	require.NoError(t, err)

	h.Record(ctx, 0.2)
	h.RecordDuration(ctx, 2*time.Second)

	data, ok := collect(t, reader)["job_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(2), data.DataPoints[0].Count)
	assert.InDelta(t, 2.2, data.DataPoints[0].Sum, 1e-9)
	assert.Equal(t, telemetry.JobDurationBuckets, data.DataPoints[0].Bounds)
}

func TestGauge(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	g, err := telemetry.NewGauge(mp.Meter("test"), "below_reorder", "Items", "{item}")
	require.NoError(t, err)

	g.Record(ctx, 4)
	g.Record(ctx, 2)

	data, ok := collect(t, reader)["below_reorder"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, int64(2), data.DataPoints[0].Value)
}
