// Package metrics exposes the service's Prometheus collectors on a private
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "secanalytics"

// Verdict labels for Detections.
const (
	VerdictAnomalous = "anomalous"
	VerdictNormal    = "normal"
	VerdictUntrained = "untrained"
)

type Metrics struct {
	registry *prometheus.Registry

	detections       *prometheus.CounterVec
	anomalyScore     prometheus.Histogram
	trainings        *prometheus.CounterVec
	trainDuration    prometheus.Histogram
	modelTrained     prometheus.Gauge
	passwordAnalyses *prometheus.CounterVec
	loginsRecorded   prometheus.Counter
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.detections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detections_total",
		Help:      "Login anomaly checks by verdict.",
	}, []string{"verdict"})

	m.anomalyScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "anomaly_score",
		Help:      "Distribution of 0-100 anomaly scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	m.trainings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trainings_total",
		Help:      "Model training attempts by result.",
	}, []string{"result"})

	m.trainDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "train_duration_seconds",
		Help:      "Wall time of successful trainings.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	m.modelTrained = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_trained",
		Help:      "1 when a trained outlier model is loaded.",
	})

	m.passwordAnalyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_analyses_total",
		Help:      "Password analyses by strength bucket.",
	}, []string{"strength"})

	m.loginsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_recorded_total",
		Help:      "Login records appended to the log store.",
	})

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	m.registry.MustRegister(
		m.detections, m.anomalyScore, m.trainings, m.trainDuration, m.modelTrained,
		m.passwordAnalyses, m.loginsRecorded, m.requests, m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Detection(verdict string, score float64) {
	m.detections.WithLabelValues(verdict).Inc()
	if verdict != VerdictUntrained {
		m.anomalyScore.Observe(score)
	}
}

func (m *Metrics) Training(d time.Duration, err error) {
	if err != nil {
		m.trainings.WithLabelValues("error").Inc()
		return
	}
	m.trainings.WithLabelValues("ok").Inc()
	m.trainDuration.Observe(d.Seconds())
}

func (m *Metrics) ModelTrained(trained bool) {
	if trained {
		m.modelTrained.Set(1)
		return
	}
	m.modelTrained.Set(0)
}

func (m *Metrics) PasswordAnalysis(strength string) {
	m.passwordAnalyses.WithLabelValues(strength).Inc()
}

func (m *Metrics) LoginRecorded() {
	m.loginsRecorded.Inc()
}

func (m *Metrics) Request(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}
