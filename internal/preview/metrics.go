package preview

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the preview server's Prometheus instruments.
type metrics struct {
	registry *prom.Registry
	requests *prom.CounterVec
	rebuilds *prom.CounterVec
}

func newMetrics() *metrics {
	reg := prom.NewRegistry()
	m := &metrics{
		registry: reg,
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docvers",
			Name:      "preview_requests_total",
			Help:      "Preview HTTP requests by status class",
		}, []string{"code"}),
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docvers",
			Name:      "preview_rebuilds_total",
			Help:      "Live-reload rebuilds by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.rebuilds)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument wraps a handler, counting responses by status class.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.requests.WithLabelValues(statusClass(sw.code)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
