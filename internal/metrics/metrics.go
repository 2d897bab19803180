package metrics

import (
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"
)

var (
	remoteLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claroz_remote_request_latency",
			Help:    "Histogram of remote HTTP request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"backend", "method", "path", "status_code"},
	)

	feedTargets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claroz_feed_targets_total",
		Help: "The total number of remote feed targets queried, by outcome",
	}, []string{"outcome"})
)

// RestyLatency builds a response middleware recording request latency for
// one remote backend (atproto server, content store).
func RestyLatency(backend string) resty.ResponseMiddleware {
	return func(_ *resty.Client, response *resty.Response) error {
		reqURL, err := url.Parse(response.Request.URL)
		if err != nil {
			return err
		}

		remoteLatency.WithLabelValues(
			backend,
			response.Request.Method,
			reqURL.Path,
			fmt.Sprintf("%d", response.StatusCode()),
		).Observe(response.Duration().Seconds())

		return nil
	}
}

// CountFeedTarget records the outcome of one remote target fetch during
// feed aggregation: "ok" or "degraded".
func CountFeedTarget(outcome string) {
	feedTargets.WithLabelValues(outcome).Inc()
}
