package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "btcrunway_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	ProjectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "btcrunway_projections_total",
			Help: "Total number of retirement projections requested",
		},
		[]string{"outcome"}, // success, invalid, failed
	)

	PriceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "btcrunway_price_fetches_total",
			Help: "Total number of BTC/USD price history updates",
		},
		[]string{"outcome"}, // success, skipped, failed
	)

	LatestUsdBtc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "btcrunway_latest_usd_btc",
			Help: "Most recently recorded BTC/USD price",
		},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordProjection(outcome string) {
	ProjectionsTotal.WithLabelValues(outcome).Inc()
}

func RecordPriceFetch(outcome string, usdBtc float64) {
	PriceFetchesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		LatestUsdBtc.Set(usdBtc)
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
