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
	"github.com/mockmart/techstore/internal/m2m"
	"github.com/mockmart/techstore/internal/observability"
	"github.com/mockmart/techstore/internal/shopapi/cart"
	"github.com/mockmart/techstore/internal/shopapi/catalog"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iuow"
	"github.com/mockmart/techstore/internal/shopapi/dal/postgres"
	"github.com/mockmart/techstore/internal/shopapi/dal/rabbitmq"
	"github.com/mockmart/techstore/internal/shopapi/dal/uow"
	"github.com/mockmart/techstore/internal/shopapi/models/outbox"
	"github.com/mockmart/techstore/internal/shopapi/notifier"
	"github.com/mockmart/techstore/internal/shopapi/ordersvc"
	httptransport "github.com/mockmart/techstore/internal/shopapi/transport/http"
	outboxworker "github.com/mockmart/techstore/internal/shopapi/worker/outbox"
)

// App represents the shop-api application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	tracing        *observability.Controller
}

// MustNewApp wires the shop-api service.
func MustNewApp() *App {
	tracing := observability.MustInitTracing("shop-api")

	postgresClient := postgres.MustNewClient()

	seedPath := viper.GetString("catalog.seed_path")
	if seedPath == "" {
		seedPath = "data/products.json"
	}
	catalogStore := catalog.MustNewStoreFromFile(seedPath)
	carts := cart.NewStore()

	verifier := auth.NewVerifier(config.JWKSURL(), config.Issuer())
	tokens := m2m.NewClient(
		config.TokenURL(),
		os.Getenv("M2M_CLIENT_ID"),
		os.Getenv("M2M_CLIENT_SECRET"),
	)
	orderNotifier := notifier.NewHTTPNotifier(viper.GetString("services.notification.url"), tokens)

	uowFactory := iuow.Factory(func() iuow.IUnitOfWork {
		return uow.NewUnitOfWork(postgresClient)
	})

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithUnitOfWorkFactory(uowFactory),
		ordersvc.WithNotifier(orderNotifier),
	)

	transport := httptransport.NewHTTPTransport(catalogStore, carts, orderSvc, verifier)
	transport.RegisterRoutes()

	app := &App{
		orderSvc:       orderSvc,
		transport:      transport,
		postgresClient: postgresClient,
		tracing:        tracing,
	}

	if viper.GetBool("rabbitmq.enabled") {
		app.rabbitClient = rabbitmq.MustNewClient()
		if _, err := app.rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:    outbox.QueueOrderEvents,
			Durable: true,
		}); err != nil {
			panic(err)
		}
		app.outboxWorker = outboxworker.NewWorker(
			uowFactory().OutboxRepository(),
			&outboxworker.AMQPPublisher{Channel: app.rabbitClient.Channel()},
		)
	}

	return app
}

// Run starts the application and blocks until an interrupt arrives.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	if a.outboxWorker != nil {
		go a.outboxWorker.Start(workerCtx)
	}

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

	cancelWorker()

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracing.Shutdown(ctx); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
