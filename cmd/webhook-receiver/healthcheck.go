package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newAdminRouter serves the endpoints of the optional metrics listener. They are
// kept off the webhook port, which answers 404 to everything but the two webhooks.
func newAdminRouter(metrics *Metrics) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", Healthcheck).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return router
}

func Healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
