package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0")
	defer srv.Close()

	CyclesTotal.WithLabelValues("idle").Inc()
	EmissionsTotal.WithLabelValues("BUY").Inc()
	LastClose.WithLabelValues("BTC/USDT").Set(42000)
	CycleDuration.Observe(0.25)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	var lastClose float64
	want := map[string]bool{
		"signalwatch_cycles_total":           false,
		"signalwatch_emissions_total":        false,
		"signalwatch_last_close":             false,
		"signalwatch_cycle_duration_seconds": false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
		if mf.GetName() == "signalwatch_last_close" {
			lastClose = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("%s metric not found", name)
		}
	}

	if lastClose != 42000 {
		t.Fatalf("last close = %v, want 42000", lastClose)
	}
}
