package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	otpIssued       *prometheus.CounterVec
	otpVerified     *prometheus.CounterVec
	leadsCreated    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the service collectors on reg. Pass prometheus.NewRegistry()
// in tests to keep them isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		otpIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_issued_total",
			Help: "OTP issuance attempts by result",
		}, []string{"result"}),
		otpVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_verified_total",
			Help: "OTP verification attempts by result",
		}, []string{"result"}),
		leadsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Lead records created by kind",
		}, []string{"kind"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) RecordOTPIssued(result string) {
	m.otpIssued.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordOTPVerified(result string) {
	m.otpVerified.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLeadCreated(kind string) {
	m.leadsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
