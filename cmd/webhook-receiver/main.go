package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

const (
	flagPort        = "port"
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagMetricsPort = "metrics-port"
)

var Version = "dev"

// newFlags returns fresh flag definitions. cli flags keep parse state, so a set
// can only back a single App run.
func newFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    flagPort,
			Usage:   "Port the webhook endpoints listen on.",
			Value:   defaultListenPort,
			EnvVars: []string{"WEBHOOK_PORT"},
		},
		&cli.StringFlag{
			Name:  flagConfig,
			Usage: "Optional path to config.yaml. Flags set explicitly take precedence over it.",
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "Level to log at.",
			Value:   defaultLogLevel,
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.IntFlag{
			Name:    flagMetricsPort,
			Usage:   "Port serving /metrics and /healthz. 0 disables it.",
			EnvVars: []string{"METRICS_PORT"},
		},
	}
}

func main() {
	app := &cli.App{
		Name:    "webhook-receiver",
		Usage:   "Print Grafana and Alertmanager webhook notifications to the console",
		Version: Version,
		Flags:   newFlags(),
		Action:  run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("Failed to run webhook receiver: %v", err)
		os.Exit(1)
	}
}

func run(cliCtx *cli.Context) error {
	config, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}

	InitLogger(config.LogLevel)
	log.Debugf("Parsed config: %+v", config)

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	receiver, err := listenReceiver(config, NewConsole(cliCtx.App.Writer))
	if err != nil {
		return err
	}

	if path := cliCtx.String(flagConfig); path != "" {
		go func() {
			overlay := func(c *Config) { overlayFlags(cliCtx, c) }
			if err := WatchConfig(ctx, path, applyReload(config, overlay)); err != nil {
				log.Warnf("Not watching config file '%s': %v", path, err)
			}
		}()
	}

	return receiver.Serve(ctx)
}

// loadConfig merges defaults, the optional config file and the command line.
func loadConfig(cliCtx *cli.Context) (*Config, error) {
	config := DefaultConfig()
	if path := cliCtx.String(flagConfig); path != "" {
		var err error
		if config, err = ParseConfig(path); err != nil {
			return nil, err
		}
	}
	overlayFlags(cliCtx, config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// overlayFlags copies flags that were set on the command line or through the
// environment. Unset flags leave the file values alone.
func overlayFlags(cliCtx *cli.Context, config *Config) {
	if cliCtx.IsSet(flagPort) {
		config.ListenPort = cliCtx.Int(flagPort)
	}
	if cliCtx.IsSet(flagLogLevel) {
		config.LogLevel = cliCtx.String(flagLogLevel)
	}
	if cliCtx.IsSet(flagMetricsPort) {
		config.MetricsPort = cliCtx.Int(flagMetricsPort)
	}
}
