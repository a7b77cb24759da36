package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmcorrales/brandpulse-backend/internal/connections"
	"github.com/dmcorrales/brandpulse-backend/internal/publisher"
	"github.com/dmcorrales/brandpulse-backend/pkg/config"
	"github.com/dmcorrales/brandpulse-backend/pkg/db"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/metrics"
	"github.com/dmcorrales/brandpulse-backend/pkg/migrate"
	"github.com/dmcorrales/brandpulse-backend/pkg/socialpub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "publish-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "publish-worker"

	logg = logger.New(logger.Options{
		ServiceName: "publish-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	publishClient, err := socialpub.NewClient(context.Background(), cfg.SocialPublish, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create publish client", err)
		os.Exit(1)
	}

	publisherMetrics := metrics.NewPublisherMetrics(prometheus.DefaultRegisterer)
	startMetricsListener(logg, cfg.Publisher.MetricsPort)

	repo := publisher.NewRepository(dbClient.DB())
	processor, err := publisher.NewProcessor(publisher.ProcessorParams{
		Logger:      logg,
		Repository:  repo,
		Connections: connections.NewRepository(dbClient.DB()),
		Publisher:   publishClient,
		Metrics:     publisherMetrics,
		MaxRetries:  cfg.Publisher.MaxRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create job processor", err)
		os.Exit(1)
	}

	poller, err := publisher.NewPoller(publisher.PollerParams{
		Logger:         logg,
		Repository:     repo,
		Processor:      processor,
		Metrics:        publisherMetrics,
		Interval:       cfg.Publisher.PollInterval,
		BatchSize:      cfg.Publisher.BatchSize,
		MaxRetries:     cfg.Publisher.MaxRetries,
		RetryBaseDelay: cfg.Publisher.RetryBaseDelay,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  cfg.Service.Kind,
		"pollInterval": cfg.Publisher.PollInterval.String(),
	})
	logg.Info(ctx, "starting publish worker")

	poller.Start(ctx)

	<-ctx.Done()
	poller.Stop()

	logg.Info(ctx, "publish worker shutting down gracefully")
}

func startMetricsListener(logg *logger.Logger, port string) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil && err != http.ErrServerClosed {
			logg.Error(context.Background(), "metrics listener stopped unexpectedly", err)
		}
	}()
}
