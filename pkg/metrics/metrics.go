package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stark_bridge_upstream_requests_total",
			Help: "Requests sent to the exchange REST API",
		},
		[]string{"op", "code"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stark_bridge_upstream_duration_seconds",
			Help:    "Exchange REST API call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"op"},
	)

	marketCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stark_bridge_market_cache_total",
			Help: "Market metadata cache lookups by result",
		},
		[]string{"result"},
	)

	onboardings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stark_bridge_onboarding_total",
			Help: "Onboarding attempts by outcome",
		},
		[]string{"outcome"},
	)

	apiKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stark_bridge_api_key_issuance_total",
			Help: "API key issuance attempts by outcome",
		},
		[]string{"outcome"},
	)

	ordersSigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stark_bridge_orders_signed_total",
			Help: "Orders built and signed",
		},
		[]string{"market", "side"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stark_bridge_http_requests_total",
			Help: "Public API requests",
		},
		[]string{"route", "status"},
	)
)

// code: http статус ответа биржи или "error", если ответа не было.
func ObserveUpstream(op, code string, started time.Time) {
	upstreamRequests.WithLabelValues(op, code).Inc()
	upstreamDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func MarketCacheHit()     { marketCache.WithLabelValues("hit").Inc() }
func MarketCacheMiss()    { marketCache.WithLabelValues("miss").Inc() }
func MarketCacheRefresh() { marketCache.WithLabelValues("refresh").Inc() }

func Onboarding(outcome string) { onboardings.WithLabelValues(outcome).Inc() }

func APIKeyIssued(outcome string) { apiKeys.WithLabelValues(outcome).Inc() }

func OrderSigned(market, side string) { ordersSigned.WithLabelValues(market, side).Inc() }

func HTTPRequest(route, status string) { httpRequests.WithLabelValues(route, status).Inc() }
