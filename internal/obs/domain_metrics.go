package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SalesCreatedTotal counts sale creation attempts by outcome.
	SalesCreatedTotal *prometheus.CounterVec
	// SalesCanceledTotal counts sale cancellations.
	SalesCanceledTotal prometheus.Counter
	// SaleSoftWarningsTotal counts non-fatal inconsistencies observed while
	// computing sale totals (missing product, catalog price drift).
	SaleSoftWarningsTotal *prometheus.CounterVec
	// SaleItemsHistogram records the number of line items per created sale.
	SaleItemsHistogram prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers sales domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_created_total",
			Help:      "Count of sale creation attempts by result.",
		}, []string{"result"})
		SalesCanceledTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_canceled_total",
			Help:      "Count of canceled sales.",
		})
		SaleSoftWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_soft_warnings_total",
			Help:      "Count of soft warnings raised during sale total computation.",
		}, []string{"reason"})
		SaleItemsHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_line_items",
			Help:      "Distribution of line items per created sale.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 20},
		})

		registerCollector(reg, SalesCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SalesCreatedTotal = v
			}
		})
		registerCollector(reg, SalesCanceledTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SalesCanceledTotal = v
			}
		})
		registerCollector(reg, SaleSoftWarningsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SaleSoftWarningsTotal = v
			}
		})
		registerCollector(reg, SaleItemsHistogram, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleItemsHistogram = v
			}
		})
	})
}
