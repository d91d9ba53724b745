package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/config"
	"github.com/mockmart/techstore/internal/notification/notificationsvc"
	httptransport "github.com/mockmart/techstore/internal/notification/transport/http"
	"github.com/mockmart/techstore/internal/observability"
)

// App represents the notification application.
type App struct {
	service   *notificationsvc.Service
	transport *httptransport.HTTPTransport
	tracing   *observability.Controller
}

// MustNewApp wires the notification service.
func MustNewApp() *App {
	tracing := observability.MustInitTracing("notification")

	service := notificationsvc.New()
	verifier := auth.NewVerifier(config.JWKSURL(), config.Issuer())

	expectedCaller := viper.GetString("services.notification.expected_caller")
	if expectedCaller == "" {
		expectedCaller = "shop-api"
	}

	transport := httptransport.NewHTTPTransport(service, verifier, expectedCaller)
	transport.RegisterRoutes()

	return &App{
		service:   service,
		transport: transport,
		tracing:   tracing,
	}
}

// Run starts the application and blocks until an interrupt arrives.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.tracing.Shutdown(ctx); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
