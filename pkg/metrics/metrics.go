package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics groups the engine collectors. Build it with New against the
// registry that serves /metrics.
type Metrics struct {
	// Counter: commands processed, by outcome
	OrdersReceivedTotal *prometheus.CounterVec
	// Counter: commands rejected, by reason
	OrdersRejectedTotal *prometheus.CounterVec
	// Counter: fills produced by matching
	FillsTotal *prometheus.CounterVec
	// Counter: filled quantity
	FilledQuantityTotal *prometheus.CounterVec
	// Counter: sink failures
	PublishErrorsTotal *prometheus.CounterVec
	// Histogram: time a command spends inside the book
	CommandLatencySeconds *prometheus.HistogramVec
	// Gauge: resting orders
	RestingOrders *prometheus.GaugeVec
	// Gauge: best bid/ask prices
	BestBidPrice *prometheus.GaugeVec
	BestAskPrice *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersReceivedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lob_orders_received_total",
				Help: "Total number of commands received by the engine",
			},
			[]string{"instrument", "command"},
		),
		OrdersRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lob_orders_rejected_total",
				Help: "Total number of commands rejected by the book",
			},
			[]string{"instrument", "reason"},
		),
		FillsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lob_fills_total",
				Help: "Total number of maker/taker fills",
			},
			[]string{"instrument"},
		),
		FilledQuantityTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lob_filled_quantity_total",
				Help: "Total quantity filled, approximated as float for export",
			},
			[]string{"instrument"},
		),
		PublishErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lob_publish_errors_total",
				Help: "Total number of failed fill or market data publications",
			},
			[]string{"instrument", "sink"},
		),
		CommandLatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lob_command_latency_seconds",
				Help:    "Time taken to apply one command to the book",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20),
			},
			[]string{"instrument", "command"},
		),
		RestingOrders: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lob_resting_orders",
				Help: "Current number of resting orders",
			},
			[]string{"instrument"},
		),
		BestBidPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lob_best_bid_price",
				Help: "Current best bid price, NaN when the bid side is empty",
			},
			[]string{"instrument"},
		),
		BestAskPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lob_best_ask_price",
				Help: "Current best ask price, NaN when the ask side is empty",
			},
			[]string{"instrument"},
		),
	}
}

// Gauge converts a nullable price for export. Prometheus has no null, so an
// empty side is NaN rather than a misleading zero.
func Gauge(price decimal.NullDecimal) float64 {
	if !price.Valid {
		return math.NaN()
	}
	return price.Decimal.InexactFloat64()
}
