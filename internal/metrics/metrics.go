package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat turn outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeBypassed  = "bypassed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Metrics holds the advisor collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	chatTurns         *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
	pdfPages          *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		chatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "chat_turns_total",
			Help:      "Chat turns by intent and outcome.",
		}, []string{"intent", "outcome"}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "advisor",
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion service calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"result"}),
		pdfPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "pdf_pages_extracted_total",
			Help:      "Pages extracted from uploaded or loaded PDFs.",
		}, []string{"source"}),
	}
	reg.MustRegister(
		m.chatTurns, m.completionLatency, m.pdfPages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveTurn(intent, outcome string) {
	if m == nil {
		return
	}
	if intent == "" {
		intent = "none"
	}
	m.chatTurns.WithLabelValues(intent, outcome).Inc()
}

func (m *Metrics) ObserveCompletion(start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.completionLatency.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObservePages(source string, pages int) {
	if m == nil || pages <= 0 {
		return
	}
	m.pdfPages.WithLabelValues(source).Add(float64(pages))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
