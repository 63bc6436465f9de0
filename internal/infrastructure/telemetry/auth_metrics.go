package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Login outcomes recorded by AuthMetrics
const (
	LoginSucceeded = "success"
	LoginFailed    = "invalid_credentials"
	LoginThrottled = "throttled"
)

// AuthMetrics holds the authentication and authorization instruments
type AuthMetrics struct {
	logins         *Counter
	loginDuration  *Histogram
	refreshes      *Counter
	authzDecisions *Counter
}

// NewAuthMetrics creates the instruments on meter
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	logins, err := NewCounter(meter, "auth_login_total", "Login attempts by outcome", "{attempt}")
	if err != nil {
		return nil, err
	}
	loginDuration, err := NewHistogram(meter, "auth_login_duration_seconds",
		"Time spent verifying credentials", "s", FastDurationBuckets...)
	if err != nil {
		return nil, err
	}
	refreshes, err := NewCounter(meter, "auth_token_refresh_total", "Refresh token exchanges by outcome", "{refresh}")
	if err != nil {
		return nil, err
	}
	decisions, err := NewCounter(meter, "authz_decision_total", "Authorization decisions by permission and outcome", "{decision}")
	if err != nil {
		return nil, err
	}
	return &AuthMetrics{
		logins:         logins,
		loginDuration:  loginDuration,
		refreshes:      refreshes,
		authzDecisions: decisions,
	}, nil
}

// RecordLogin counts a login attempt and its latency
func (m *AuthMetrics) RecordLogin(ctx context.Context, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.logins.Inc(ctx, AttrResult.String(result))
	m.loginDuration.RecordDuration(ctx, elapsed, AttrResult.String(result))
}

// RecordRefresh counts a refresh exchange
func (m *AuthMetrics) RecordRefresh(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "rejected"
	}
	m.refreshes.Inc(ctx, AttrResult.String(result))
}

// RecordDecision counts an authorization decision. reason is empty for allows.
func (m *AuthMetrics) RecordDecision(ctx context.Context, permission string, allowed bool, reason string) {
	if m == nil {
		return
	}
	decision := "allow"
	if !allowed {
		decision = "deny"
	}
	m.authzDecisions.Inc(ctx,
		AttrPermission.String(permission),
		AttrDecision.String(decision),
		AttrReason.String(reason),
	)
}
