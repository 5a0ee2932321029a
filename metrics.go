package nex

import (
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

// ServeMetrics starts an HTTP listener exposing the process's
// VictoriaMetrics registry in Prometheus exposition format at /metrics,
// the same shape the control-plane's scraper collectors expect from
// every backend role.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return http.ListenAndServe(addr, mux)
}
