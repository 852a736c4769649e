package main

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	alerts   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_receiver_requests_total",
			Help: "Webhook requests handled, by alert source and HTTP status code.",
		}, []string{"source", "code"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_receiver_alerts_total",
			Help: "Alert items received, by alert source.",
		}, []string{"source"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.alerts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRequest(source string, code int) {
	m.requests.WithLabelValues(source, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveAlerts(source string, count int) {
	m.alerts.WithLabelValues(source).Add(float64(count))
}
