// AngelaMos | 2026
// metrics.go

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	IdentityResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_identity_resolutions_total",
			Help: "Portal identity resolutions by outcome",
		},
		[]string{"outcome"}, // resolved, no_client, ineligible, error
	)

	SectionLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_section_load_failures_total",
			Help: "Dashboard sections that failed to load",
		},
		[]string{"section"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sent_total",
			Help: "Outbound email attempts by template and status",
		},
		[]string{"template", "status"},
	)

	LoginLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_login_lockouts_total",
			Help: "Sign-in attempts rejected by the attempt counter",
		},
	)
)

func ObserveHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func RecordIdentityResolution(outcome string) {
	IdentityResolutions.WithLabelValues(outcome).Inc()
}

func RecordSectionFailure(section string) {
	SectionLoadFailures.WithLabelValues(section).Inc()
}

func RecordEmail(template, status string) {
	EmailsSent.WithLabelValues(template, status).Inc()
}
