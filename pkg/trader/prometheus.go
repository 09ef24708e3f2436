package trader

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of exchange polls by result",
			Name:      "polls_total",
			Namespace: "nftrader",
		},
		[]string{"result"},
	)
	supplySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of decodable cards in the last supply seen",
			Name:      "supply_size",
			Namespace: "nftrader",
		},
	)
	skippedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of undecodable cards in the last supply seen",
			Name:      "skipped_records",
			Namespace: "nftrader",
		},
	)
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of payments by resulting state",
			Name:      "trades_total",
			Namespace: "nftrader",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		pollsTotal,
		supplySize,
		skippedRecords,
		tradesTotal,
	)
}

func updateSupplyMetrics(size, skipped int) {
	supplySize.Set(float64(size))
	skippedRecords.Set(float64(skipped))
}
