// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for authentication operations.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid_argument"
	OutcomeConflict     = "conflict"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Metrics groups the server instruments. A nil *Metrics records nothing.
type Metrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
// Panics if registration fails (following prometheus convention).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_operations_total",
			Help: "Total number of authentication operations by outcome",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophauth_operation_duration_seconds",
			Help:    "Authentication operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
	}

	reg.MustRegister(m.operations, m.duration, m.httpRequests)
	return m
}

// RecordOperation counts one call of operation and observes its duration.
// The outcome label is derived from err.
func (m *Metrics) RecordOperation(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Outcome maps a service error onto one of the Outcome* labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, common.ErrMissingField):
		return OutcomeInvalid
	case errors.Is(err, common.ErrDuplicateIdentity):
		return OutcomeConflict
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInvalidToken):
		return OutcomeUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
