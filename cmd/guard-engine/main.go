package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marinerstack/mariner-guard/internal/anchor"
	"github.com/marinerstack/mariner-guard/internal/api"
	"github.com/marinerstack/mariner-guard/internal/cache"
	"github.com/marinerstack/mariner-guard/internal/config"
	"github.com/marinerstack/mariner-guard/internal/engine"
	"github.com/marinerstack/mariner-guard/internal/metrics"
	"github.com/marinerstack/mariner-guard/internal/notify"
	"github.com/marinerstack/mariner-guard/internal/services"
	"github.com/marinerstack/mariner-guard/internal/telemetry"
	"github.com/marinerstack/mariner-guard/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON, utils.LogFileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	logger.Info("starting mariner-guard", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	busClient := telemetry.NewBusClient(
		cfg.Telemetry.BaseURL,
		cfg.Telemetry.OwnVesselPath,
		cfg.Telemetry.TargetsPath,
		cfg.Telemetry.Timeout,
		cache.NewMemoryProvider(),
		cfg.Telemetry.TargetsTTL,
	)

	var sink notify.Sink = notify.NewLogSink(logger)
	if cfg.Notify.BaseURL != "" {
		sink = notify.NewHubClient(cfg.Notify.BaseURL, cfg.Notify.Path, cfg.Notify.Timeout)
		logger.Info("publishing notifications to hub", slog.String("url", cfg.Notify.BaseURL))
	}

	store := anchor.NewFileStore(cfg.Anchor.StatePath, cfg.Anchor.DefaultRadius, logger)
	watch, err := anchor.NewWatch(store, logger)
	if err != nil {
		logger.Error("failed to initialise anchor watch", slog.Any("error", err))
		os.Exit(1)
	}
	alarm := anchor.NewAlarm(watch, sink, logger)
	// The actual transition comes back through POST /api/v1/mode once the
	// mode controller applies it.
	watch.SetModeRequester(func(_ context.Context, mode string) {
		logger.Info("requesting operating mode", slog.String("mode", mode))
	})

	riskEngine := engine.NewEngine(cfg.Collision, logger)

	guardService := services.NewGuardService(
		logger,
		busClient,
		riskEngine,
		watch,
		alarm,
		sink,
		cfg.Collision,
		cfg.Telemetry.PollInterval,
	)

	server, err := api.NewServer(cfg.Server, guardService)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	done := make(chan struct{})
	go func() {
		guardService.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Wait for the evaluator loops to clear notifications and finish.
	select {
	case <-done:
	case <-time.After(cfg.Server.GracefulTimeout):
		logger.Warn("subsystems did not stop within graceful timeout")
	}
	logger.Info("mariner-guard stopped")
}
