package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"

	somase "github.com/mubas-somase/voting-backend"
	"github.com/mubas-somase/voting-backend/internal/adapters/repos/postgres"
	"github.com/mubas-somase/voting-backend/internal/adapters/services/activation"
	"github.com/mubas-somase/voting-backend/internal/adapters/services/s3"
	"github.com/mubas-somase/voting-backend/internal/adapters/services/smtp"
	auditapp "github.com/mubas-somase/voting-backend/internal/application/audit"
	candidateapp "github.com/mubas-somase/voting-backend/internal/application/candidate"
	mailapp "github.com/mubas-somase/voting-backend/internal/application/mail"
	registrationapp "github.com/mubas-somase/voting-backend/internal/application/registration"
	"github.com/mubas-somase/voting-backend/internal/config"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
	httpport "github.com/mubas-somase/voting-backend/internal/ports/http"
	"github.com/mubas-somase/voting-backend/internal/ports/http/middlewares"
	watermillport "github.com/mubas-somase/voting-backend/internal/ports/watermill"
	"github.com/mubas-somase/voting-backend/pkg/env"
	"github.com/mubas-somase/voting-backend/pkg/httpx"
	"github.com/mubas-somase/voting-backend/pkg/logging"
	pgpkg "github.com/mubas-somase/voting-backend/pkg/postgres"
	"github.com/mubas-somase/voting-backend/pkg/watermillx"
)

type Application struct {
	Registration *registrationapp.App
	Candidate    *candidateapp.App
	Mail         *mailapp.App
	Audit        *auditapp.App
}

type Repositories struct {
	Account     *postgres.AccountRepo
	Application *postgres.ApplicationRepo
	AuditLog    *postgres.AuditLogRepo
}

// candidateRepo serves the candidate app from the two tables it reads.
type candidateRepo struct {
	*postgres.AccountRepo
	*postgres.ApplicationRepo
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mode := cfg.EnvMode()
	env.SetMode(mode)
	logger, closeLog := logging.Setup(mode, cfg.LogPath)
	defer closeLog()
	slog.SetDefault(logger)

	shutdownOTel, err := setupOTelSDK(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry SDK: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			slog.Error("failed to shutdown OpenTelemetry SDK", slog.String("error", err.Error()))
		}
	}()

	slog.InfoContext(ctx, "starting MUBAS SOMASE voting backend",
		slog.String("mode", mode.String()),
		slog.String("address", cfg.HTTP.Address),
	)

	pool, err := setupDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	repos := &Repositories{
		Account:     postgres.NewAccountRepo(pool, nil, nil),
		Application: postgres.NewApplicationRepo(pool, nil, nil),
		AuditLog:    postgres.NewAuditLogRepo(pool, nil, nil),
	}

	storage, err := s3.NewClient(ctx, s3.Args{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket %s: %w", cfg.S3.Bucket, err)
	}

	sender := smtp.NewSender(smtp.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTPFrom(),
		UseTLS:   cfg.SMTP.UseTLS,
		Timeout:  cfg.SMTP.Timeout,
	})

	apps := setupApplications(cfg, repos, storage, sender)

	limiter, closeLimiter, err := setupLimiter(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeLimiter()

	eventRouter, err := setupEventProcessing(ctx, pool, apps)
	if err != nil {
		return err
	}
	go func() {
		if err := eventRouter.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "event router stopped", slog.String("error", err.Error()))
			stop()
		}
	}()
	defer func() {
		if err := eventRouter.Close(); err != nil {
			slog.Error("failed to close event router", slog.String("error", err.Error()))
		}
	}()

	server := setupHTTPServer(cfg, apps, limiter)
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", slog.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited")
	return nil
}

func setupDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgpkg.NewPgxPool(ctx, cfg.Postgres.DSN, cfg.EnvMode())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	migrateDSN := cfg.Postgres.DSN
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(migrateDSN, scheme) {
			migrateDSN = "pgx5://" + strings.TrimPrefix(migrateDSN, scheme)
			break
		}
	}
	if err := pgpkg.Migrate(migrateDSN, somase.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pool, nil
}

func setupApplications(cfg *config.Config, repos *Repositories, storage *s3.Client, sender *smtp.Sender) *Application {
	photos := photo.NewService(cfg.PhotoBaseURL())

	return &Application{
		Registration: registrationapp.NewApp(registrationapp.Args{
			Repo:         repos.Account,
			Storage:      storage,
			PhotoService: photos,
			Issuer:       activation.NewIssuer([]byte(cfg.Activation.Secret), cfg.Activation.TTL),
			Sender:       sender,
			FrontendURL:  cfg.FrontendURL(),
			LinkTTL:      cfg.Activation.TTL,
		}),
		Candidate: candidateapp.NewApp(candidateapp.Args{
			Repo:         candidateRepo{AccountRepo: repos.Account, ApplicationRepo: repos.Application},
			Storage:      storage,
			PhotoService: photos,
		}),
		Mail:  mailapp.NewApp(mailapp.Args{Diagnoser: sender}),
		Audit: auditapp.NewApp(auditapp.Args{Repo: repos.AuditLog}),
	}
}

// setupLimiter shares rate limit counters through Redis when configured and
// falls back to per process counters otherwise.
func setupLimiter(ctx context.Context, cfg config.Redis) (middlewares.Limiter, func(), error) {
	if cfg.URL == "" {
		slog.WarnContext(ctx, "REDIS_URL not set, rate limits are tracked per process")
		return middlewares.NewMemoryLimiter(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return middlewares.NewRedisLimiter(client), func() { _ = client.Close() }, nil
}

func setupEventProcessing(ctx context.Context, pool *pgxpool.Pool, apps *Application) (*message.Router, error) {
	wmlogger := watermillx.NewOTelFilteredSlogLogger(slog.Default(), slog.LevelInfo)

	router, err := message.NewRouter(message.RouterConfig{}, wmlogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	if err := watermillx.InitializeEventSchema(ctx, pool, wmlogger, watermillport.Streams...); err != nil {
		return nil, fmt.Errorf("failed to initialize event schema: %w", err)
	}

	wmport, err := watermillport.NewPort(router, pool, wmlogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill port: %w", err)
	}
	if err := wmport.Run(ctx, watermillport.AppEventHandlers{Audit: apps.Audit}); err != nil {
		return nil, fmt.Errorf("failed to run watermill port: %w", err)
	}

	return router, nil
}

func setupHTTPServer(cfg *config.Config, apps *Application, limiter middlewares.Limiter) *http.Server {
	errhandler := httpx.NewErrorHandler()
	// Load has already validated the list.
	proxies, _ := cfg.TrustedProxies()

	port := httpport.NewPort(httpport.Args{
		RegistrationApp: apps.Registration,
		CandidateApp:    apps.Candidate,
		MailApp:         apps.Mail,
		Middleware: middlewares.NewMiddleware(middlewares.Args{
			Secret:         []byte(cfg.Auth.SessionSecret),
			Limiter:        limiter,
			Errhandler:     errhandler,
			TrustedProxies: proxies,
		}),
		Errhandler:     errhandler,
		AllowedOrigins: cfg.Origins(),
		FrontendURL:    cfg.FrontendURL(),
		RegisterLimit:  cfg.Redis.RegisterLimit,
		ApplyLimit:     cfg.Redis.ApplyLimit,
		RateWindow:     cfg.Redis.Window,
	})

	return &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      port.Route(chi.NewRouter()),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
}

// setupOTelSDK bootstraps the OpenTelemetry pipeline. With an OTLP endpoint
// traces, metrics and logs are exported over gRPC. Without one only logs are
// kept, written to stdout.
func setupOTelSDK(ctx context.Context, cfg config.OTel) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Endpoint == "" {
		loggerProvider, err := newStdoutLoggerProvider()
		if err != nil {
			handleErr(err)
			return shutdown, err
		}
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)
		return shutdown, nil
	}

	tracerProvider, err := newTracerProvider(ctx)
	if err != nil {
		handleErr(err)
		return shutdown, err
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMeterProvider(ctx)
	if err != nil {
		handleErr(err)
		return shutdown, err
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider(ctx)
	if err != nil {
		handleErr(err)
		return shutdown, err
	}
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return shutdown, nil
}

func newTracerProvider(ctx context.Context) (*trace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(trace.WithBatcher(exporter)), nil
}

func newMeterProvider(ctx context.Context) (*metric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Minute))),
	), nil
}

func newLoggerProvider(ctx context.Context) (*log.LoggerProvider, error) {
	exporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	return log.NewLoggerProvider(log.WithProcessor(log.NewBatchProcessor(exporter))), nil
}

func newStdoutLoggerProvider() (*log.LoggerProvider, error) {
	exporter, err := stdoutlog.New()
	if err != nil {
		return nil, err
	}
	return log.NewLoggerProvider(log.WithProcessor(log.NewBatchProcessor(exporter))), nil
}
