package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/cpay-backend/internal/adapter/events/kafka"
	grpcadapter "github.com/simaogato/cpay-backend/internal/adapter/grpc"
	"github.com/simaogato/cpay-backend/internal/adapter/httpapi"
	"github.com/simaogato/cpay-backend/internal/adapter/repository/memory"
	"github.com/simaogato/cpay-backend/internal/config"
	"github.com/simaogato/cpay-backend/internal/logger"
	"github.com/simaogato/cpay-backend/internal/metrics"
	"github.com/simaogato/cpay-backend/internal/usecase/feedrelay"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
	"github.com/simaogato/cpay-backend/internal/usecase/seeder"
	"github.com/simaogato/cpay-backend/internal/usecase/wallet"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		log := logger.New(logger.Options{ServiceName: "cpay-backend"})
		log.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "cpay-backend",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := log.WithField(context.Background(), "app_env", cfg.AppEnv)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	// 2. Initialize Repositories (in memory, lost on restart)
	store := memory.NewStore()

	// 3. Initialize Services (Use Cases)
	ledgerService := ledger.NewLedgerService(
		store.Balances,
		store.Transactions,
		store.Invoices,
		store.PaymentRequests,
		store.Feed,
		store.Users,
		ledger.WithLatency(ledger.FixedLatency(cfg.Delays())),
	)
	ledgerService.Subscribe(ledgerMetrics.LedgerChanged)

	if cfg.IsProd() && cfg.MockMode {
		log.Warn(ctx, "mock mode is enabled in production: wallets are simulated", nil)
	}
	sessionService := wallet.NewSessionService(cfg.MockMode, cfg.DemoAddress, cfg.ChainID)

	if cfg.MockMode && cfg.SeedDemo {
		demoSeeder := seeder.NewDemoSeeder(store.Balances, store.Transactions, store.Invoices, store.Feed, store.Users, nil)
		if err := demoSeeder.Seed(ctx); err != nil {
			log.Error(ctx, "failed to seed demo ledger", err)
			os.Exit(1)
		}
		log.Info(ctx, "demo ledger seeded")
	}

	runCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	var publisher *kafka.Publisher
	if cfg.KafkaEnabled() {
		publisher = kafka.NewPublisher(cfg.Brokers, cfg.Topic)
		relay := feedrelay.NewRelayService(ledgerService, publisher, log, ledgerMetrics)
		go func() {
			if err := relay.Run(runCtx); err != nil {
				log.Error(runCtx, "feed relay stopped", err)
			}
		}()
		log.Info(log.WithField(ctx, "topic", cfg.Topic), "feed relay started")
	}

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log, ledgerMetrics),
			grpcadapter.WalletInterceptor(),
		),
		grpclib.ChainStreamInterceptor(
			grpcadapter.LoggingStreamInterceptor(log, ledgerMetrics),
		),
	)

	grpcAdapter := grpcadapter.NewServer(ledgerService, sessionService, cfg.AppConfig(), ledgerMetrics)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcAdapter)

	if cfg.IsDev() {
		reflection.Register(grpcServer)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen on "+cfg.GRPCAddr, err)
		os.Exit(1)
	}

	go func() {
		log.Info(ctx, "gRPC server listening on "+cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error(ctx, "gRPC server failed", err)
			os.Exit(1)
		}
	}()

	// 5. Start HTTP Server (health, metrics, websocket change stream)
	broadcaster := httpapi.NewBroadcaster(log, ledgerMetrics)
	broadcaster.Attach(ledgerService)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(log, registry, broadcaster, cfg.AppConfig()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(ctx, "HTTP server listening on "+cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	waitForShutdown(ctx, log)

	stopBackground()
	if err := shutdown(grpcServer, httpServer, broadcaster, publisher); err != nil {
		log.Error(ctx, "shutdown finished with errors", err)
		os.Exit(1)
	}
	log.Info(ctx, "servers stopped")
}

// waitForShutdown waits for SIGTERM or SIGINT
func waitForShutdown(ctx context.Context, log *logger.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info(ctx, "received signal "+sig.String()+", shutting down gracefully")
}

// shutdown stops the transports, then flushes the feed publisher
func shutdown(grpcServer *grpclib.Server, httpServer *http.Server, broadcaster *httpapi.Broadcaster, publisher *kafka.Publisher) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// open Watch streams would block GracefulStop forever
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		grpcServer.Stop()
	}

	broadcaster.Close()
	err := httpServer.Shutdown(ctx)

	if publisher != nil {
		err = multierr.Append(err, publisher.Close())
	}
	return err
}
