// Package metrics exposes Prometheus instrumentation for the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Activation outcomes
const (
	OutcomeRendered  = "rendered"
	OutcomeNoSession = "no_session"
	OutcomeError     = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapterdash_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chapterdash_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	dashboardActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapterdash_dashboard_activations_total",
		Help: "Dashboard activations by outcome.",
	}, []string{"outcome"})

	themeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapterdash_theme_changes_total",
		Help: "Theme preference changes by resulting theme.",
	}, []string{"theme"})

	catalogSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapterdash_catalog_syncs_total",
		Help: "Catalog manifest sync runs by status.",
	}, []string{"status"})
)

// Middleware records request counts and latencies labelled by gin route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveActivation counts a dashboard activation
func ObserveActivation(outcome string) {
	dashboardActivations.WithLabelValues(outcome).Inc()
}

// ObserveThemeChange counts a theme change
func ObserveThemeChange(theme string) {
	themeChanges.WithLabelValues(theme).Inc()
}

// ObserveCatalogSync counts a catalog sync run
func ObserveCatalogSync(status string) {
	catalogSyncs.WithLabelValues(status).Inc()
}
