package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Receiver serves the webhook endpoints, and the admin endpoints when an admin
// listener is given, until its context ends.
type Receiver struct {
	console       *Console
	metrics       *Metrics
	listener      net.Listener
	adminListener net.Listener
}

// NewReceiver takes ownership of the listeners. A nil adminListener disables
// the admin endpoints.
func NewReceiver(console *Console, metrics *Metrics, listener, adminListener net.Listener) *Receiver {
	return &Receiver{
		console:       console,
		metrics:       metrics,
		listener:      listener,
		adminListener: adminListener,
	}
}

// listenReceiver binds the ports named in config.
func listenReceiver(config *Config, console *Console) (*Receiver, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", config.ListenPort))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", config.ListenPort, err)
	}

	var adminListener net.Listener
	if config.MetricsPort != 0 {
		adminListener, err = net.Listen("tcp", fmt.Sprintf(":%d", config.MetricsPort))
		if err != nil {
			listener.Close()
			return nil, fmt.Errorf("listen on metrics port %d: %w", config.MetricsPort, err)
		}
	}
	return NewReceiver(console, NewMetrics(), listener, adminListener), nil
}

// Serve blocks until ctx is done, then shuts every server down and returns nil.
// A server failing before that is returned as is.
func (r *Receiver) Serve(ctx context.Context) error {
	servers := []*http.Server{{Handler: NewApp(r.console, r.metrics).Router()}}
	listeners := []net.Listener{r.listener}
	if r.adminListener != nil {
		servers = append(servers, &http.Server{Handler: newAdminRouter(r.metrics)})
		listeners = append(listeners, r.adminListener)
		log.Infof("Serving metrics on %s", r.adminListener.Addr())
	}

	printStartup(r.console, listenerPort(r.listener))

	serverErr := make(chan error, len(servers))
	for i := range servers {
		go serve(servers[i], listeners[i], serverErr)
	}

	var err error
	select {
	case err = <-serverErr:
	case <-ctx.Done():
		r.console.Printf("\n🛑 Shutting down webhook server...\n")
	}

	for _, server := range servers {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			log.Errorf("Failed to shut down server: %v", shutdownErr)
		}
	}
	return err
}

func serve(server *http.Server, listener net.Listener, serverErr chan<- error) {
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		serverErr <- fmt.Errorf("serve on %s: %w", listener.Addr(), err)
	}
}

func listenerPort(listener net.Listener) int {
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

func printStartup(console *Console, port int) {
	console.Printf("🌐 Webhook server starting on port %d\n", port)
	console.Printf("📡 Listening for Grafana alerts at: http://localhost:%d%s\n", port, grafanaAlertsPath)
	console.Printf("⚡ Listening for Prometheus alerts at: http://localhost:%d%s\n", port, prometheusAlertsPath)
	console.Printf("Press Ctrl+C to stop\n\n")
}
