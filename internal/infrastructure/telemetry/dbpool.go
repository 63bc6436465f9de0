package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterPoolMetrics publishes the database/sql pool counters as
// observable instruments, read from stats at each collection.
func RegisterPoolMetrics(meter metric.Meter, stats func() sql.DBStats) error {
	conns, err := meter.Int64ObservableGauge("db.client.connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("db.client.connections: %w", err)
	}
	limit, err := meter.Int64ObservableGauge("db.client.connections.max",
		metric.WithDescription("Maximum number of open connections allowed"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("db.client.connections.max: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.waits",
		metric.WithDescription("Times a caller waited for a free connection"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return fmt.Errorf("db.client.connections.waits: %w", err)
	}
	waited, err := meter.Float64ObservableCounter("db.client.connections.wait_time",
		metric.WithDescription("Total time spent waiting for a free connection"),
		metric.WithUnit("s"))
	if err != nil {
		return fmt.Errorf("db.client.connections.wait_time: %w", err)
	}

	idle := metric.WithAttributes(AttrPoolState.String("idle"))
	used := metric.WithAttributes(AttrPoolState.String("used"))
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(conns, int64(s.Idle), idle)
		o.ObserveInt64(conns, int64(s.InUse), used)
		o.ObserveInt64(limit, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		o.ObserveFloat64(waited, s.WaitDuration.Seconds())
		return nil
	}, conns, limit, waits, waited)
	return err
}

// AttrPoolState distinguishes idle from in-use connections
var AttrPoolState = attribute.Key("state")
