package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalwatch_cycles_total", Help: "Polling cycles by outcome"},
		[]string{"result"},
	)
	FetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalwatch_fetch_failures_total", Help: "Failed bar fetches"},
		[]string{"exchange"},
	)
	EmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalwatch_emissions_total", Help: "Signal transitions emitted"},
		[]string{"action"},
	)
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "signalwatch_cycle_duration_seconds",
		Help:    "Duration of one fetch and compute cycle",
		Buckets: prometheus.DefBuckets,
	})
	LastClose = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "signalwatch_last_close", Help: "Close of the latest fetched bar"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, FetchFailuresTotal, EmissionsTotal, CycleDuration, LastClose)
}

// Serve exposes /metrics on addr in a background goroutine.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
