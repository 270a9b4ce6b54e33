package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"libracatalog/internal/catalog"
	"libracatalog/internal/config"
	"libracatalog/internal/httpx"
	"libracatalog/internal/store"
	"libracatalog/pkg/eventstore"
	"libracatalog/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// setupTracing installs an OTLP/HTTP trace exporter when an endpoint is
// configured. The returned function flushes and stops it.
func setupTracing(ctx context.Context, cfg *config.Config) func(context.Context) {
	if cfg.Telemetry.OTLPEndpoint == "" {
		logger.Info(ctx, "no OTLP endpoint configured, tracing disabled")
		return func(context.Context) {}
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Fatal(ctx, "could not create trace exporter", zap.Error(err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.Telemetry.ServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) {
		logger.Info(ctx, "flushing traces...")
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not shut down tracer provider", zap.Error(err))
		}
	}
}

// setupMetrics exports otel metrics through the Prometheus default registry.
func setupMetrics(ctx context.Context) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		logger.Fatal(ctx, "could not create metrics exporter", zap.Error(err))
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))
}

func newRouter(cfg *config.Config, svc catalog.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLog)
	r.Use(middleware.Recoverer)
	if cfg.HTTP.RateLimit > 0 {
		r.Use(httpx.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst).Middleware)
	}
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	r.Handle(cfg.HTTP.MetricsPath, promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	catalog.NewHandler(svc).Routes(r)
	return r
}

func setupServer(ctx context.Context, cfg *config.Config, handler http.Handler) func(ctx context.Context) {
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the catalog API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stopTracing := setupTracing(ctx, cfg)
			setupMetrics(ctx)

			db, closeDB := openDB(ctx, cfg)
			defer closeDB()

			events := eventstore.NewEventStore(db)
			books := store.NewBookRepository(db)
			if err := events.EnsureSchema(ctx); err != nil {
				logger.Fatal(ctx, "could not create event store schema", zap.Error(err))
			}
			if err := books.EnsureSchema(ctx); err != nil {
				logger.Fatal(ctx, "could not create read model schema", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, newRouter(cfg, catalog.NewService(events, books)))

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			stopTracing(shutdownCtx)
		},
	}
}
