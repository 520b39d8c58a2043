package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records how unit prices are resolved and how sale
// computations end.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	sales       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_unit_price_resolutions_total",
		Help: "Resolved unit prices by the rule that produced them.",
	}, []string{"source"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_unconfigured_price_total",
		Help: "Lines priced with no configured tier or override price.",
	}, []string{"tier"})
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_sale_computations_total",
		Help: "Sale total computations by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_sale_computation_duration_seconds",
		Help:    "Duration of sale computations including the catalog snapshot load.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(resolutions, fallbacks, sales, duration)
	return &PricingMetrics{
		resolutions: resolutions,
		fallbacks:   fallbacks,
		sales:       sales,
		duration:    duration,
	}
}

// IncResolution counts one unit price resolution.
func (p *PricingMetrics) IncResolution(source string) {
	if p == nil || p.resolutions == nil {
		return
	}
	p.resolutions.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFallback counts a line that fell back to a zero price.
func (p *PricingMetrics) IncFallback(tier string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(normalizeLabel(tier)).Inc()
}

// ObserveSale records the outcome and duration of one sale computation.
func (p *PricingMetrics) ObserveSale(operation string, err error, duration time.Duration) {
	if p == nil || p.sales == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	op := normalizeLabel(operation)
	p.sales.WithLabelValues(op, outcome).Inc()
	p.duration.WithLabelValues(op).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
