package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/app"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/clock"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/config"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/metrics"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/scheduler"
	grpcPresentation "github.com/garciaurbina83/Rental-Properties-New-sub000/internal/presentation/grpc"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/presentation/rest"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/observability"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/tlsutil"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	logger.Info("starting loand",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"database", cfg.Database.Driver,
		"reports", cfg.Reports.Backend,
	)

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Insecure:    true,
			SampleRate:  cfg.Telemetry.SampleRate,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	loanMetrics, err := metrics.NewLoanMetrics(meterProvider)
	if err != nil {
		logger.Error("failed to register loan metrics", "error", err)
		os.Exit(1)
	}

	// Storage.
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.close()

	reports, closeReports, err := openReportStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open report store", "error", err)
		os.Exit(1)
	}
	defer closeReports()

	// Side channels.
	outlets, err := openSinks(cfg, logger)
	if err != nil {
		logger.Error("failed to open event sinks", "error", err)
		os.Exit(1)
	}
	defer outlets.close()

	effects := usecase.NewSideEffects(outlets.audit, outlets.notifier, outlets.publisher, loanMetrics, logger)
	ports := store.ports
	ports.Reports = reports
	ports.Clock = clock.System{}
	ports.Effects = effects
	useCases := app.NewUseCases(ports, app.Settings{
		LateFees:            cfg.LateFees.Policy(),
		TopDefaulters:       cfg.Reports.TopDefaulters,
		ReminderLeadDays:    cfg.Scheduler.ReminderLeadDays,
		OverdueReminderDays: cfg.Scheduler.OverdueReminderDays,
	})

	// gRPC server.
	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}
	creds, err := tlsutil.ServerTLSConfig(tlsutil.ServerFiles{
		CertFile:     cfg.Server.TLSCertFile,
		KeyFile:      cfg.Server.TLSKeyFile,
		ClientCAFile: cfg.Server.TLSClientCAFile,
	})
	if err != nil {
		logger.Error("failed to load TLS credentials", "error", err)
		os.Exit(1)
	}
	handler := grpcPresentation.NewLoanHandler(useCases, logger)
	grpcServer := grpcPresentation.NewServer(handler, logger, grpcPresentation.ServerOptions{
		JWT:        jwtSvc,
		Creds:      creds,
		Reflection: cfg.Server.Reflection,
	})

	// HTTP server (health checks, metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, store.checks, logger).RegisterRoutes(mux, metricsHandler)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(scheduler.Config{
			Interval: cfg.Scheduler.Interval,
			DailyAt:  cfg.Scheduler.DailyAt,
			Actor:    cfg.Scheduler.Actor,
		}, app.SchedulerJobs(useCases), clock.System{}, logger)
		if err != nil {
			logger.Error("failed to build scheduler", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("scheduler error: %w", err)
			}
		}()
	}

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}
	cancel()

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loand stopped")
}
