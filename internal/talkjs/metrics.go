package talkjs

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// upstreamReqs counts outbound calls by method, endpoint template and
	// status ("error" when no response was received).
	upstreamReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkjs_upstream_requests_total",
			Help: "Total number of requests sent to the TalkJS REST API.",
		},
		[]string{"method", "endpoint", "status"},
	)

	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talkjs_upstream_request_duration_seconds",
			Help:    "Duration of TalkJS REST API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// userPages counts pages fetched while walking the user listing.
	userPages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "talkjs_user_pages_fetched_total",
			Help: "Total number of user listing pages fetched from TalkJS.",
		},
	)
)

func init() {
	prometheus.MustRegister(upstreamReqs, upstreamLat, userPages)
}

func observe(method, endpoint, status string, start time.Time) {
	upstreamReqs.WithLabelValues(method, endpoint, status).Inc()
	upstreamLat.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

// resourceSegments are the path words kept verbatim in metric labels;
// every other segment is an identifier.
var resourceSegments = map[string]struct{}{
	"conversations": {},
	"participants":  {},
	"users":         {},
	"messages":      {},
}

// endpointLabel turns "/conversations/c1/participants/u1?x=y" into
// "/conversations/:id/participants/:id" to keep label cardinality bounded.
func endpointLabel(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := resourceSegments[p]; !ok {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
