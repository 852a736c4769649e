package main

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const (
	grafanaAlertsPath    = "/webhook/grafana-alerts"
	prometheusAlertsPath = "/webhook/prometheus-alerts"

	sourceGrafana    = "grafana"
	sourcePrometheus = "prometheus"
)

var receivedResponse = []byte(`{"status": "received"}`)

type App struct {
	console *Console
	metrics *Metrics
}

func NewApp(console *Console, metrics *Metrics) *App {
	return &App{console: console, metrics: metrics}
}

// Router dispatches on path prefix, POST only. Every other request, including a
// different method on a webhook path, gets an empty 404.
func (a *App) Router() *mux.Router {
	// Match on the raw path; mux would otherwise redirect unclean paths with a 301.
	router := mux.NewRouter().SkipClean(true)
	router.PathPrefix(grafanaAlertsPath).Methods(http.MethodPost).
		Handler(a.webhookHandler(sourceGrafana, printGrafanaAlert))
	router.PathPrefix(prometheusAlertsPath).Methods(http.MethodPost).
		Handler(a.webhookHandler(sourcePrometheus, printPrometheusAlert))
	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(notFoundHandler)
	return router
}

func (a *App) webhookHandler(source string, format Formatter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Warnf("Failed to read %s webhook body: %v", source, err)
			a.reject(w, source, body)
			return
		}

		payload, err := DecodePayload(body)
		if err != nil {
			log.Debugf("Rejected %s webhook: %v", source, err)
			a.reject(w, source, body)
			return
		}

		alerts := payload.Alerts()
		a.console.Block(func(out io.Writer, now time.Time) {
			format(out, payload, now)
		})
		a.metrics.ObserveAlerts(source, len(alerts))
		log.Debugf("Received %s webhook: %d alerts from IP: %s", source, len(alerts), getClientIP(r))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(receivedResponse)
		a.metrics.ObserveRequest(source, http.StatusOK)
	}
}

func (a *App) reject(w http.ResponseWriter, source string, body []byte) {
	a.console.Printf("[ERROR] Invalid JSON received: %q\n", body)
	w.WriteHeader(http.StatusBadRequest)
	a.metrics.ObserveRequest(source, http.StatusBadRequest)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
