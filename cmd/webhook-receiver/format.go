package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

var banner = strings.Repeat("=", 60)

// Console serializes writes to the terminal so that the summary blocks of
// concurrent requests never interleave.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, now: time.Now}
}

// Printf writes a single formatted chunk.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Block renders a summary into a buffer and flushes it with one write.
func (c *Console) Block(render func(w io.Writer, now time.Time)) {
	var buf bytes.Buffer
	render(&buf, c.now())

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.out.Write(buf.Bytes()); err != nil {
		log.Errorf("Failed to write alert summary: %v", err)
	}
}

// Formatter prints the summary of one decoded webhook payload.
type Formatter func(w io.Writer, payload WebhookPayload, now time.Time)

func printGrafanaAlert(w io.Writer, payload WebhookPayload, now time.Time) {
	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintf(w, "🚨 GRAFANA ALERT RECEIVED - %s\n", now.Format(timestampLayout))
	fmt.Fprintln(w, banner)

	fmt.Fprintf(w, "📊 Status: %s\n", strings.ToUpper(payload.String("status", unknown)))
	fmt.Fprintf(w, "📝 Title: %s\n", payload.String("title", "No title"))
	fmt.Fprintf(w, "💬 Message: %s\n", payload.String("message", "No message"))

	if alerts := payload.Alerts(); len(alerts) > 0 {
		fmt.Fprintf(w, "\n🔔 Alerts (%d):\n", len(alerts))
		for i, alert := range alerts {
			fmt.Fprintf(w, "  %d. %s\n", i+1, alert.Name())
			fmt.Fprintf(w, "     Severity: %s\n", alert.Label("severity", unknown))
			fmt.Fprintf(w, "     Instance: %s\n", alert.Label("instance", unknown))
			fmt.Fprintf(w, "     Job: %s\n", alert.Label("job", unknown))
			printAnnotations(w, alert)
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "%s\n\n", banner)
}

func printPrometheusAlert(w io.Writer, payload WebhookPayload, now time.Time) {
	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintf(w, "⚡ PROMETHEUS ALERT RECEIVED - %s\n", now.Format(timestampLayout))
	fmt.Fprintln(w, banner)

	fmt.Fprintf(w, "📊 Status: %s\n", strings.ToUpper(payload.String("status", unknown)))
	fmt.Fprintf(w, "📡 Receiver: %s\n", payload.String("receiver", unknown))
	fmt.Fprintf(w, "🔗 External URL: %s\n", payload.String("externalURL", unknown))

	if alerts := payload.Alerts(); len(alerts) > 0 {
		fmt.Fprintf(w, "\n🔔 Alerts (%d):\n", len(alerts))
		for i, alert := range alerts {
			fmt.Fprintf(w, "  %d. %s\n", i+1, alert.Name())
			fmt.Fprintf(w, "     Status: %s\n", alert.Field("status"))
			fmt.Fprintf(w, "     Severity: %s\n", alert.Label("severity", unknown))
			fmt.Fprintf(w, "     Instance: %s\n", alert.Label("instance", unknown))
			fmt.Fprintf(w, "     Job: %s\n", alert.Label("job", unknown))
			fmt.Fprintf(w, "     Service: %s\n", alert.Label("service", unknown))
			fmt.Fprintf(w, "     Team: %s\n", alert.Label("team", unknown))
			fmt.Fprintf(w, "     Starts At: %s\n", alert.Field("startsAt"))
			if alert.HasEnded() {
				fmt.Fprintf(w, "     Ends At: %s\n", alert.Field("endsAt"))
			}
			printAnnotations(w, alert)
			fmt.Fprintf(w, "     Fingerprint: %s\n", alert.Field("fingerprint"))
			fmt.Fprintln(w)
		}
	}

	if labels := payload.Labels("groupLabels"); len(labels) > 0 {
		fmt.Fprintf(w, "🏷️  Group Labels: %s\n", labels)
	}
	if labels := payload.Labels("commonLabels"); len(labels) > 0 {
		fmt.Fprintf(w, "🏷️  Common Labels: %s\n", labels)
	}
	if annotations := payload.Labels("commonAnnotations"); len(annotations) > 0 {
		fmt.Fprintf(w, "📝 Common Annotations: %s\n", annotations)
	}

	fmt.Fprintf(w, "%s\n\n", banner)
}

func printAnnotations(w io.Writer, alert Alert) {
	if summary, ok := alert.Annotation("summary"); ok {
		fmt.Fprintf(w, "     Summary: %s\n", summary)
	}
	if description, ok := alert.Annotation("description"); ok {
		fmt.Fprintf(w, "     Description: %s\n", description)
	}
}
