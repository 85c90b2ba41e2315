// Package metrics exposes Prometheus counters for the authentication flows.
//
// All methods are safe on a nil *Metrics, so components take an optional
// metrics handle without branching.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
	ResultAnon    = "anonymous"
)

// Metrics holds the authcore collectors.
type Metrics struct {
	registry *prometheus.Registry

	AuthAttemptsTotal        *prometheus.CounterVec
	CredentialsIssuedTotal   *prometheus.CounterVec
	CredentialsRevokedTotal  *prometheus.CounterVec
	IdentityResolutionsTotal *prometheus.CounterVec
	UsersCreatedTotal        *prometheus.CounterVec
	PrunedTotal              *prometheus.CounterVec
	RevocationsTracked       prometheus.Gauge
	HTTPRequestsTotal        *prometheus.CounterVec
	HTTPRequestDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them on registry. A nil registry
// gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_auth_attempts_total",
				Help: "Credential checks by outcome",
			},
			[]string{"result"},
		),
		CredentialsIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_credentials_issued_total",
				Help: "Credentials issued by strategy",
			},
			[]string{"strategy"},
		),
		CredentialsRevokedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_credentials_revoked_total",
				Help: "Credentials revoked by strategy",
			},
			[]string{"strategy"},
		),
		IdentityResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_identity_resolutions_total",
				Help: "Identity resolutions by outcome",
			},
			[]string{"result"},
		),
		UsersCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_users_created_total",
				Help: "Registration attempts by outcome",
			},
			[]string{"result"},
		),
		PrunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_pruned_total",
				Help: "Expired entries removed by the sweeper",
			},
			[]string{"kind"},
		),
		RevocationsTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authcore_revocations_tracked",
				Help: "Revoked references still held in the registry",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authcore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.AuthAttemptsTotal,
		m.CredentialsIssuedTotal,
		m.CredentialsRevokedTotal,
		m.IdentityResolutionsTotal,
		m.UsersCreatedTotal,
		m.PrunedTotal,
		m.RevocationsTracked,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AuthAttempt(result string) {
	if m != nil {
		m.AuthAttemptsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CredentialIssued(strategy string) {
	if m != nil {
		m.CredentialsIssuedTotal.WithLabelValues(strategy).Inc()
	}
}

func (m *Metrics) CredentialRevoked(strategy string) {
	if m != nil {
		m.CredentialsRevokedTotal.WithLabelValues(strategy).Inc()
	}
}

func (m *Metrics) IdentityResolved(result string) {
	if m != nil {
		m.IdentityResolutionsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) UserCreated(result string) {
	if m != nil {
		m.UsersCreatedTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Pruned(kind string, n int) {
	if m != nil && n > 0 {
		m.PrunedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) SetRevocationsTracked(n int) {
	if m != nil {
		m.RevocationsTracked.Set(float64(n))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
