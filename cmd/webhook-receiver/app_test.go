package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	router  http.Handler
	output  *bytes.Buffer
	metrics *Metrics
}

func newTestApp() *testApp {
	output := &bytes.Buffer{}
	console := NewConsole(output)
	console.now = func() time.Time { return fixedNow }
	metrics := NewMetrics()
	return &testApp{
		router:  NewApp(console, metrics).Router(),
		output:  output,
		metrics: metrics,
	}
}

func (a *testApp) do(method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestWebhookAcceptsAnyValidJSON(t *testing.T) {
	bodies := []string{`{}`, `[]`, `null`, `"text"`, `42`, `{"alerts": "nope"}`, ` {"status": "firing"} `}

	for _, path := range []string{grafanaAlertsPath, prometheusAlertsPath} {
		for _, body := range bodies {
			t.Run(path+" "+body, func(t *testing.T) {
				app := newTestApp()
				rr := app.do(http.MethodPost, path, body)

				assert.Equal(t, http.StatusOK, rr.Code)
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
				assert.Equal(t, `{"status": "received"}`, rr.Body.String())
				assert.Contains(t, app.output.String(), "ALERT RECEIVED - 2024-01-02 03:04:05")
			})
		}
	}
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	bodies := []string{"", "not json", `{"status": "firing"`, `{} {}`, "{\"title\": \"\xff\"}"}

	for _, path := range []string{grafanaAlertsPath, prometheusAlertsPath} {
		for _, body := range bodies {
			t.Run(fmt.Sprintf("%s %q", path, body), func(t *testing.T) {
				app := newTestApp()
				rr := app.do(http.MethodPost, path, body)

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Empty(t, rr.Body.String())
				assert.True(t, strings.HasPrefix(app.output.String(), "[ERROR] Invalid JSON received: "))
				assert.NotContains(t, app.output.String(), "ALERT RECEIVED")
			})
		}
	}
}

func TestWebhookErrorLineQuotesRawBody(t *testing.T) {
	app := newTestApp()
	app.do(http.MethodPost, grafanaAlertsPath, "not json")

	assert.Equal(t, "[ERROR] Invalid JSON received: \"not json\"\n", app.output.String())
}

func TestWebhookRouting(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		code   int
		marker string
	}{
		{name: "grafana", method: http.MethodPost, path: grafanaAlertsPath, code: http.StatusOK, marker: "🚨 GRAFANA"},
		{name: "prometheus", method: http.MethodPost, path: prometheusAlertsPath, code: http.StatusOK, marker: "⚡ PROMETHEUS"},
		{name: "prefix match", method: http.MethodPost, path: grafanaAlertsPath + "/extra", code: http.StatusOK, marker: "🚨 GRAFANA"},
		{name: "query string", method: http.MethodPost, path: prometheusAlertsPath + "?receiver=x", code: http.StatusOK, marker: "⚡ PROMETHEUS"},
		{name: "unknown path", method: http.MethodPost, path: "/webhook/other", code: http.StatusNotFound},
		{name: "root", method: http.MethodPost, path: "/", code: http.StatusNotFound},
		{name: "get on webhook", method: http.MethodGet, path: grafanaAlertsPath, code: http.StatusNotFound},
		{name: "put on webhook", method: http.MethodPut, path: prometheusAlertsPath, code: http.StatusNotFound},
		{name: "get unknown", method: http.MethodGet, path: "/metrics", code: http.StatusNotFound},
		{name: "doubled slash inside path", method: http.MethodPost, path: "/webhook//grafana-alerts", code: http.StatusNotFound},
		{name: "doubled leading slash", method: http.MethodPost, path: "//webhook/prometheus-alerts", code: http.StatusNotFound},
		{name: "dot segment after prefix", method: http.MethodPost, path: grafanaAlertsPath + "/../x", code: http.StatusOK, marker: "🚨 GRAFANA"},
		{name: "dot segment before prefix", method: http.MethodPost, path: "/webhook/x/.." + prometheusAlertsPath[len("/webhook"):], code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			rr := app.do(tt.method, tt.path, `{}`)

			require.Equal(t, tt.code, rr.Code)
			assert.Empty(t, rr.Header().Get("Location"))
			if tt.code == http.StatusNotFound {
				assert.Empty(t, rr.Body.String())
				assert.Empty(t, app.output.String())
				return
			}
			assert.Contains(t, app.output.String(), tt.marker)
		})
	}
}

func TestWebhookPrintsGrafanaExample(t *testing.T) {
	app := newTestApp()
	rr := app.do(http.MethodPost, grafanaAlertsPath,
		`{"status":"firing","title":"T","message":"M","alerts":[{"labels":{"alertname":"A1","severity":"critical","instance":"i1","job":"j1"},"annotations":{"summary":"s1"}}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	out := app.output.String()
	for _, want := range []string{"FIRING", "Title: T", "Message: M", "1. A1", "critical", "i1", "j1", "Summary: s1"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Description")
}

func TestWebhookCountsRequests(t *testing.T) {
	app := newTestApp()
	app.do(http.MethodPost, prometheusAlertsPath, `{"alerts": [{}, {}]}`)
	app.do(http.MethodPost, prometheusAlertsPath, "not json")

	rr := httptest.NewRecorder()
	newAdminRouter(app.metrics).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `webhook_receiver_requests_total{code="200",source="prometheus"} 1`)
	assert.Contains(t, body, `webhook_receiver_requests_total{code="400",source="prometheus"} 1`)
	assert.Contains(t, body, `webhook_receiver_alerts_total{source="prometheus"} 2`)
}

func TestWebhookConcurrentBlocksDoNotInterleave(t *testing.T) {
	const requests = 32
	app := newTestApp()

	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"title": "T%d", "alerts": [{"labels": {"alertname": "A%d"}}]}`, i, i)
			rr := httptest.NewRecorder()
			app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, grafanaAlertsPath, strings.NewReader(body)))
			assert.Equal(t, http.StatusOK, rr.Code)
		}(i)
	}
	wg.Wait()

	out := app.output.String()
	assert.Equal(t, requests, strings.Count(out, "🚨 GRAFANA ALERT RECEIVED"))
	for i := 0; i < requests; i++ {
		body := fmt.Sprintf(`{"title": "T%d", "alerts": [{"labels": {"alertname": "A%d"}}]}`, i, i)
		assert.Contains(t, out, render(t, printGrafanaAlert, body), "block %d is not contiguous", i)
	}
}
