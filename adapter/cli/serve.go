package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/anandgupta07/coach-sub000/adapter/api"
)

var (
	serveAddr            string
	serveShutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP API",
	Long: `Run the portal HTTP API until interrupted.

Examples:
  portal serve
  portal serve --addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Subscriptions == nil || app.Checkout == nil || app.Gate == nil {
			return errors.New("serve requires database connection")
		}

		addr := serveAddr
		if addr == "" {
			addr = app.HTTPAddr
		}
		server := NewAPIServer(app, addr)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			ctx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		}
	},
}

// NewAPIServer builds the HTTP server over app's services.
func NewAPIServer(app *App, addr string) *api.Server {
	cfg := api.DefaultServerConfig()
	if addr != "" {
		cfg.Addr = addr
	}

	handler := api.NewHandler(api.HandlerConfig{
		Subscriptions: app.Subscriptions,
		Promos:        app.Promotions,
		Checkout:      app.Checkout,
		Gate:          app.Gate.Middleware,
		Logger:        logger,
	})
	return api.NewServer(cfg, api.ServerDeps{
		Handler: handler,
		Auth:    api.NewAuthenticator(app.Tokens, logger),
		Health:  app.Health,
		Metrics: app.MetricsHandler,
		Timings: app.Metrics,
	}, logger)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	rootCmd.AddCommand(serveCmd)
}
