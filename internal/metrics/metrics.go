package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Trading signals emitted"},
		[]string{"symbol", "action"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fills_total", Help: "Simulated fills produced"},
		[]string{"symbol", "side"},
	)
	OrdersRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "orders_rejected_total", Help: "Orders rejected during backtest processing"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, SignalsTotal, FillsTotal, OrdersRejected)
}

// Serve exposes /metrics on addr and returns the server for shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
