package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AlifSrSE/css/internal/application/usecase"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/infrastructure/cache"
	"github.com/AlifSrSE/css/internal/infrastructure/config"
	"github.com/AlifSrSE/css/internal/infrastructure/kafka"
	"github.com/AlifSrSE/css/internal/infrastructure/metrics"
	"github.com/AlifSrSE/css/internal/infrastructure/ml"
	pgRepo "github.com/AlifSrSE/css/internal/infrastructure/postgres"
	"github.com/AlifSrSE/css/internal/infrastructure/schema"
	grpcPresentation "github.com/AlifSrSE/css/internal/presentation/grpc"
	"github.com/AlifSrSE/css/internal/presentation/rest"
	"github.com/AlifSrSE/css/pkg/auth"
	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
	"github.com/AlifSrSE/css/pkg/observability"
	pkgpostgres "github.com/AlifSrSE/css/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: "json",
	})
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting credit-scoring service",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
	)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("credit-scoring service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// Tracing is best effort.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.Environment == "development",
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	recorder, err := metrics.NewRecorder(meterProvider)
	if err != nil {
		return fmt.Errorf("init scoring metrics: %w", err)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(cfg.Database.DSN(), cfg.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire infrastructure adapters.
	appRepo := pgRepo.NewApplicationRepository(pool)
	scoreRepo := pgRepo.NewScoreRepository(pool)
	outboxRepo := pgRepo.NewOutboxRepository(pool)
	scoreCache := cache.NewScoreCache(redisClient, cfg.Redis.ScoreTTL)

	var predictor port.DefaultPredictor
	if cfg.Predictor.URL != "" {
		predictor = ml.NewHTTPPredictor(cfg.Predictor, logger)
		logger.Info("default predictor enabled", "url", cfg.Predictor.URL)
	} else {
		predictor = ml.NewStubPredictor(logger)
	}

	// Wire use cases.
	psychometric := service.NewPsychometricModel(func() time.Time { return time.Now().UTC() })
	policies, err := usecase.NewPolicyStore(cfg.Scoring.Policy, psychometric, logger)
	if err != nil {
		return fmt.Errorf("load scoring policy: %w", err)
	}
	calculateUC := usecase.NewCalculateScoreUseCase(
		appRepo, scoreRepo, scoreCache, predictor, policies, psychometric, recorder, logger)

	validator, err := schema.NewApplicationValidator()
	if err != nil {
		return fmt.Errorf("load application schema: %w", err)
	}

	handler := grpcPresentation.NewCreditScoringHandler(grpcPresentation.UseCases{
		Submit:       usecase.NewSubmitApplicationUseCase(appRepo, logger),
		Calculate:    calculateUC,
		Bulk:         usecase.NewBulkCalculateUseCase(calculateUC, cfg.Scoring.BulkParallelism, logger),
		GetScore:     usecase.NewGetScoreUseCase(scoreRepo, scoreCache, logger),
		Dashboard:    usecase.NewDashboardStatsUseCase(scoreRepo),
		Policies:     policies,
		Psychometric: usecase.NewPsychometricUseCase(psychometric),
	}, validator, cfg.Scoring.StrictPsychometric, logger)

	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	grpcServer, err := grpcPresentation.NewServer(handler, cfg.GRPCAddress(), jwtSvc, grpcPresentation.ServerOptions{
		CertFile:     cfg.TLS.CertFile,
		KeyFile:      cfg.TLS.KeyFile,
		ClientCAFile: cfg.TLS.ClientCAFile,
		Reflection:   cfg.Environment == "development",
	}, logger)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	// Messaging: the relay drains the outbox, the consumer scores submitted
	// applications.
	producer, err := pkgkafka.NewProducer(cfg.Kafka.Config)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer func() { _ = producer.Close() }()

	relay := kafka.NewOutboxRelay(outboxRepo, producer, kafka.Topics{
		Applications: cfg.Kafka.ApplicationsTopic,
		Scores:       cfg.Kafka.ScoresTopic,
	}, cfg.Kafka.RelayBatch, cfg.Kafka.RelayInterval, logger)

	consumer, err := pkgkafka.NewConsumer(cfg.Kafka.Config, cfg.Kafka.ApplicationsTopic,
		kafka.NewApplicationSubmittedHandler(calculateUC, logger), logger)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer func() { _ = consumer.Close() }()

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, map[string]rest.CheckFunc{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}, logger).RegisterRoutes(mux, metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddress())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddress(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcServer.Serve(grpcListener); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return relay.Run(gctx) })
	g.Go(func() error { return consumer.Start(gctx) })

	// Graceful shutdown once a signal arrives or any component fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down credit-scoring service")
		grpcServer.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// newJWTService builds a validation-only JWT service. JWT_PUBLIC_KEY may hold
// a PEM block or the path to one; JWT_SECRET is the fallback.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer, Audience: cfg.Audience}
	if cfg.JWTPublicKey != "" {
		key, err := auth.ReadKey(cfg.JWTPublicKey)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = key
	} else {
		jwtCfg.Secret = cfg.JWTSecret
	}
	return auth.NewJWTService(jwtCfg)
}
