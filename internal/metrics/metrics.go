// Package metrics holds Prometheus instruments used across the platform.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CachedTenants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cached_tenants",
			Help: "Number of tenant directory entries currently cached.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenant directory rows loaded.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant directory load errors.",
		})

	TenantEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_evict_total",
			Help: "Cumulative number of tenant entries evicted from the cache.",
		})

	RoutingDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Routing decisions by host mode and action.",
		},
		[]string{"mode", "action"})

	TokenVerifyFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_verify_failures_total",
			Help: "Bearer tokens rejected during verification.",
		})

	KeySetFetchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keyset_fetch_total",
			Help: "Outbound JWKS fetches to the identity provider.",
		})
)

func init() {
	prometheus.MustRegister(
		CachedTenants,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		TenantEvictTotal,
		RoutingDecisionsTotal,
		TokenVerifyFailuresTotal,
		KeySetFetchTotal,
	)
}
