package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	Operations  *prometheus.CounterVec
	TotalSupply prometheus.Gauge
	Holders     prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by name and outcome",
		}, []string{"operation", "outcome"}),
		TotalSupply: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_total_supply",
			Help: "Current total token supply",
		}),
		Holders: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_holders",
			Help: "Number of holder accounts ever referenced",
		}),
	}
}

// ObserveOperation records one operation outcome.
func (m *Metrics) ObserveOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

// SetSupply updates the supply gauge after a successful mutation.
func (m *Metrics) SetSupply(total uint64) {
	m.TotalSupply.Set(float64(total))
}

// SetHolders updates the holder count gauge.
func (m *Metrics) SetHolders(n int) {
	m.Holders.Set(float64(n))
}
