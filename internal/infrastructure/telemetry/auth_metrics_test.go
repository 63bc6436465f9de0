package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func newTestAuthMetrics(t *testing.T) (*telemetry.AuthMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewAuthMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func TestAuthMetrics_RecordLogin(t *testing.T) {
	m, reader := newTestAuthMetrics(t)
	ctx := context.Background()

	m.RecordLogin(ctx, telemetry.LoginSucceeded, 20*time.Millisecond)
	m.RecordLogin(ctx, telemetry.LoginFailed, 30*time.Millisecond)
	m.RecordLogin(ctx, telemetry.LoginFailed, 30*time.Millisecond)

	metrics := collect(t, reader)
	logins := metrics["auth_login_total"]
	assert.Equal(t, int64(1), sumFor(t, logins, telemetry.AttrResult.String(telemetry.LoginSucceeded)))
	assert.Equal(t, int64(2), sumFor(t, logins, telemetry.AttrResult.String(telemetry.LoginFailed)))

	hist, ok := metrics["auth_login_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestAuthMetrics_RecordDecision(t *testing.T) {
	m, reader := newTestAuthMetrics(t)
	ctx := context.Background()

	m.RecordDecision(ctx, "role:read", true, "")
	m.RecordDecision(ctx, "role:read", false, "missing permission")
	m.RecordRefresh(ctx, true)
	m.RecordRefresh(ctx, false)

	metrics := collect(t, reader)
	decisions := metrics["authz_decision_total"]
	assert.Equal(t, int64(1), sumFor(t, decisions,
		telemetry.AttrPermission.String("role:read"),
		telemetry.AttrDecision.String("allow"),
		telemetry.AttrReason.String(""),
	))
	assert.Equal(t, int64(1), sumFor(t, decisions,
		telemetry.AttrPermission.String("role:read"),
		telemetry.AttrDecision.String("deny"),
		telemetry.AttrReason.String("missing permission"),
	))

	refreshes := metrics["auth_token_refresh_total"]
	assert.Equal(t, int64(1), sumFor(t, refreshes, telemetry.AttrResult.String("success")))
	assert.Equal(t, int64(1), sumFor(t, refreshes, telemetry.AttrResult.String("rejected")))
}

func TestAuthMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.AuthMetrics
	assert.NotPanics(t, func() {
		m.RecordLogin(context.Background(), telemetry.LoginThrottled, time.Millisecond)
		m.RecordRefresh(context.Background(), false)
		m.RecordDecision(context.Background(), "x", false, "no role/permissions")
	})
}
