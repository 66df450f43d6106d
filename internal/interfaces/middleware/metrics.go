package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics records request counts and latencies labelled by route template
func Metrics(mediaURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := normalizePath(c.FullPath(), c.Request.URL.Path, mediaURL)
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// normalizePath keeps label cardinality bounded: matched requests use the
// route template, media files collapse to one label, anything else is
// "unmatched"
func normalizePath(route, rawPath, mediaURL string) string {
	switch {
	case mediaURL != "" && strings.HasPrefix(rawPath, mediaURL):
		return mediaURL + "*"
	case route != "":
		return route
	default:
		return "unmatched"
	}
}
