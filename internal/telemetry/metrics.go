package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/inspect"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Authentication metrics
	LoginsTotal          metric.Int64Counter
	LoginFailuresTotal   metric.Int64Counter
	TokenRejectionsTotal metric.Int64Counter
	LastLoginErrorsTotal metric.Int64Counter
	AuthorizationDenials metric.Int64Counter

	// Lifecycle metrics
	CascadesTotal         metric.Int64Counter
	PrincipalsCascaded    metric.Int64Counter
	OrganizationsDeleted  metric.Int64Counter
	LifecycleUnitDuration metric.Float64Histogram

	// Inspection metrics
	InspectionsCreatedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Authentication metrics
	m.LoginsTotal, _ = meter.Int64Counter(
		"inspect.auth.logins.total",
		metric.WithDescription("Total number of successful logins and organization sign-ins"),
		metric.WithUnit("{login}"),
	)

	m.LoginFailuresTotal, _ = meter.Int64Counter(
		"inspect.auth.login_failures.total",
		metric.WithDescription("Total number of rejected login attempts"),
		metric.WithUnit("{login}"),
	)

	m.TokenRejectionsTotal, _ = meter.Int64Counter(
		"inspect.auth.token_rejections.total",
		metric.WithDescription("Total number of bearer tokens that failed resolution"),
		metric.WithUnit("{token}"),
	)

	m.LastLoginErrorsTotal, _ = meter.Int64Counter(
		"inspect.auth.last_login_errors.total",
		metric.WithDescription("Total number of failed best-effort last login updates"),
		metric.WithUnit("{error}"),
	)

	m.AuthorizationDenials, _ = meter.Int64Counter(
		"inspect.authz.denials.total",
		metric.WithDescription("Total number of denied authorization decisions"),
		metric.WithUnit("{decision}"),
	)

	// Lifecycle metrics
	m.CascadesTotal, _ = meter.Int64Counter(
		"inspect.lifecycle.cascades.total",
		metric.WithDescription("Total number of organization deactivation cascades"),
		metric.WithUnit("{cascade}"),
	)

	m.PrincipalsCascaded, _ = meter.Int64Counter(
		"inspect.lifecycle.principals_cascaded.total",
		metric.WithDescription("Total number of principals deactivated or deleted by an organization cascade"),
		metric.WithUnit("{principal}"),
	)

	m.OrganizationsDeleted, _ = meter.Int64Counter(
		"inspect.lifecycle.organizations_deleted.total",
		metric.WithDescription("Total number of organizations deleted"),
		metric.WithUnit("{organization}"),
	)

	m.LifecycleUnitDuration, _ = meter.Float64Histogram(
		"inspect.lifecycle.unit.duration",
		metric.WithDescription("Duration of lifecycle units of work"),
		metric.WithUnit("ms"),
	)

	// Inspection metrics
	m.InspectionsCreatedTotal, _ = meter.Int64Counter(
		"inspect.inspections.created.total",
		metric.WithDescription("Total number of inspections recorded"),
		metric.WithUnit("{inspection}"),
	)

	return m
}
