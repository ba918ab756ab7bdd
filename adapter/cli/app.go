package cli

import (
	"context"
	"net/http"

	"github.com/anandgupta07/coach-sub000/internal/access"
	checkoutApp "github.com/anandgupta07/coach-sub000/internal/checkout/application"
	identityInfra "github.com/anandgupta07/coach-sub000/internal/identity/infrastructure"
	promoApp "github.com/anandgupta07/coach-sub000/internal/promotions/application"
	subscriptionsApp "github.com/anandgupta07/coach-sub000/internal/subscriptions/application"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	Subscriptions *subscriptionsApp.Service
	Promotions    *promoApp.Service
	Checkout      *checkoutApp.Service
	Gate          *access.Gate
	Tokens        *identityInfra.JWTVerifier

	// Serving
	HTTPAddr       string
	Health         *observability.HealthRegistry
	Metrics        observability.Metrics
	MetricsHandler http.Handler

	// Migrate applies pending schema migrations.
	Migrate func(ctx context.Context) error
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
