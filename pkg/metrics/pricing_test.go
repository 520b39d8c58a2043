package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPricingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPricingMetrics(reg)

	metrics.IncResolution("override")
	metrics.IncResolution("override")
	metrics.IncFallback("retail")
	metrics.ObserveSale("create", nil, 120*time.Millisecond)
	metrics.ObserveSale("create", errors.New("boom"), 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pricing_unit_price_resolutions_total", map[string]string{"source": "override"}); err != nil {
		t.Fatalf("fetch resolutions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected resolutions=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "pricing_unconfigured_price_total", map[string]string{"tier": "retail"}); err != nil {
		t.Fatalf("fetch fallbacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fallbacks=1, got %f", got)
	}

	for _, outcome := range []string{"success", "failure"} {
		if got, err := fetchCounterValue(mfs, "pricing_sale_computations_total", map[string]string{"operation": "create", "outcome": outcome}); err != nil {
			t.Fatalf("fetch %s: %v", outcome, err)
		} else if got != 1 {
			t.Fatalf("expected %s=1, got %f", outcome, got)
		}
	}

	if got, err := fetchHistogramSum(mfs, "pricing_sale_computation_duration_seconds", map[string]string{"operation": "create"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestPricingMetricsNilSafe(t *testing.T) {
	var metrics *PricingMetrics
	metrics.IncResolution("tier")
	metrics.IncFallback("retail")
	metrics.ObserveSale("quote", nil, time.Millisecond)

	unregistered := NewPricingMetrics(nil)
	unregistered.IncResolution("tier")
	unregistered.ObserveSale("", nil, time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
