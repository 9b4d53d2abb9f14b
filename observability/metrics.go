package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type marketMetrics struct {
	trades    *prometheus.CounterVec
	shares    *prometheus.CounterVec
	feeVolume *prometheus.CounterVec
}

var (
	marketMetricsOnce sync.Once
	marketRegistry    *marketMetrics
)

// Market returns the lazily-initialised metrics registry tracking trade
// settlement activity.
func Market() *marketMetrics {
	marketMetricsOnce.Do(func() {
		marketRegistry = &marketMetrics{
			trades: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "frenparty",
				Subsystem: "market",
				Name:      "trades_total",
				Help:      "Count of settled trades segmented by direction.",
			}, []string{"direction"}),
			shares: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "frenparty",
				Subsystem: "market",
				Name:      "shares_total",
				Help:      "Count of shares moved by settled trades segmented by direction.",
			}, []string{"direction"}),
			feeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "frenparty",
				Subsystem: "market",
				Name:      "fee_volume_total",
				Help:      "Fee volume in base units segmented by fee kind.",
			}, []string{"kind"}),
		}
		prometheus.MustRegister(marketRegistry.trades, marketRegistry.shares, marketRegistry.feeVolume)
	})
	return marketRegistry
}

// RecordTrade increments the trade counters for the supplied direction.
func (m *marketMetrics) RecordTrade(direction string, shareCount uint64) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToLower(direction))
	if normalized == "" {
		normalized = "unknown"
	}
	m.trades.WithLabelValues(normalized).Inc()
	m.shares.WithLabelValues(normalized).Add(float64(shareCount))
}

// RecordFees adds the settled fee amounts to the fee volume counters. Values
// above the float64 integer range are capped by the conversion; the exact
// amounts remain available in the emitted trade events.
func (m *marketMetrics) RecordFees(protocolFee, subjectFee float64) {
	if m == nil {
		return
	}
	if protocolFee > 0 {
		m.feeVolume.WithLabelValues("protocol").Add(protocolFee)
	}
	if subjectFee > 0 {
		m.feeVolume.WithLabelValues("subject").Add(subjectFee)
	}
}
