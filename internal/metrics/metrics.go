// Package metrics holds Prometheus instruments that are used across the
// server.  All collectors are registered with the global registry, so the
// optional metrics listener only has to mount promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Requests handled, labelled by serving disposition.",
		},
		[]string{"disposition"},
	)

	HTTPRedirectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_redirects_total",
			Help: "Plain-HTTP requests redirected to HTTPS.",
		})

	TLSReloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tls_reloads_total",
			Help: "Successful reloads of the TLS certificate pair.",
		})

	TLSReloadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tls_reload_errors_total",
			Help: "Failed reloads of the TLS certificate pair.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		HTTPRedirectsTotal,
		TLSReloadsTotal,
		TLSReloadErrorsTotal,
	)
}
