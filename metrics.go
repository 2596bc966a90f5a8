package main

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"verity/governor"
)

var (
	linesVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verity_lines_verified_total",
		Help: "Lines that passed the coherence check.",
	})
	linesBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verity_lines_blocked_total",
		Help: "Lines dropped as unstable.",
	})
	entropyGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "verity_entropy",
		Help: "Entropy of the most recent evolution.",
	})
	evolveSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verity_evolve_seconds",
		Help:    "Wall time of one full inject+evolve pass.",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordVerdict updates the per-line metrics. Called on the governor
// goroutine, so it has to stay cheap.
func RecordVerdict(rep governor.Report) {
	entropyGauge.Set(rep.Entropy)
	evolveSeconds.Observe(rep.Elapsed.Seconds())
	if rep.Verdict == governor.Blocked {
		linesBlocked.Inc()
	} else {
		linesVerified.Inc()
	}
}

// StartMetricsServer exposes /metrics on addr. Binding is checked up front
// so a bad address fails at startup instead of silently serving nothing.
func StartMetricsServer(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		_ = http.Serve(ln, mux)
	}()
	return nil
}
