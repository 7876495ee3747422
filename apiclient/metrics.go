package apiclient

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts backend requests and session invalidations.
type Metrics struct {
	requests      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "internship_session",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the portal backend by status code and method.",
		}, []string{"code", "method"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "internship_session",
			Subsystem: "api",
			Name:      "session_invalidations_total",
			Help:      "Sessions dropped by the request and response interceptors.",
		}, []string{"reason"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, collector := range []prometheus.Collector{m.requests, m.invalidations} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Requests returns the request counter, labelled by code and method.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

// Invalidations returns the invalidation counter, labelled by reason.
func (m *Metrics) Invalidations() *prometheus.CounterVec {
	return m.invalidations
}

func (m *Metrics) instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(m.requests, next)
}

func (m *Metrics) observeInvalidation(reason InvalidationReason) {
	m.invalidations.WithLabelValues(string(reason)).Inc()
}
