package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anandgupta07/coach-sub000/adapter/cli"
	"github.com/anandgupta07/coach-sub000/adapter/cli/promo"
	"github.com/anandgupta07/coach-sub000/adapter/cli/subscription"
	"github.com/anandgupta07/coach-sub000/internal/app"
	"github.com/anandgupta07/coach-sub000/pkg/config"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetLogger(observability.LoggerFromEnv())
	cli.AddCommand(subscription.Cmd)
	cli.AddCommand(promo.Cmd)
	cli.SetBootstrap(bootstrap)

	cli.Execute(ctx)
}

// bootstrap loads configuration and builds the container behind every command.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.App, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.ServiceVersion = cli.Version
	if opts.Verbose {
		logCfg.Level = "debug"
	}
	if cfg.IsProduction() {
		logCfg.Format = observability.LogFormatJSON
		logCfg.Output = os.Stdout
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize container: %w", err)
	}

	cliApp := &cli.App{
		Subscriptions: container.Subscriptions,
		Promotions:    container.Promotions,
		Checkout:      container.Checkout,
		Gate:          container.Gate,
		Tokens:        container.Tokens,
		HTTPAddr:      cfg.HTTPAddr,
		Health:        container.Health,
		Metrics:       container.Metrics,
		Migrate:       container.Migrate,
	}
	if container.Prometheus != nil {
		cliApp.MetricsHandler = container.Prometheus.Handler()
	}
	return cliApp, container.Close, nil
}
