package telemetry_test

import (
	"context"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestProviders_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	cfg := config.TelemetryConfig{ServiceName: "backoffice-test", CollectorEndpoint: "localhost:4317"}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore().Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewProfiler(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("disabled", func(t *testing.T) {
		p, err := telemetry.NewProfiler(config.ProfilingConfig{}, "backoffice", logger)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires server address", func(t *testing.T) {
		_, err := telemetry.NewProfiler(config.ProfilingConfig{Enabled: true}, "backoffice", logger)
		assert.ErrorContains(t, err, "server_address")
	})

	t.Run("requires application name", func(t *testing.T) {
		_, err := telemetry.NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, "", logger)
		assert.ErrorContains(t, err, "application name")
	})
}

func TestProfileTypes(t *testing.T) {
	base := telemetry.ProfileTypes(config.ProfilingConfig{})
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
	}, base)

	all := telemetry.ProfileTypes(config.ProfilingConfig{
		ProfileAllocations: true,
		ProfileGoroutines:  true,
		ProfileMutexes:     true,
	})
	assert.Len(t, all, len(base)+5)
	assert.Contains(t, all, pyroscope.ProfileGoroutines)
	assert.Contains(t, all, pyroscope.ProfileMutexDuration)
}
