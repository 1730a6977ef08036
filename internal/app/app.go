// Package app wires the admin console together: backend client, cache,
// services, the optional Kafka listener and the local panel server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mousaahmad63636/spotlymobile/internal/api"
	"github.com/Mousaahmad63636/spotlymobile/internal/config"
	"github.com/Mousaahmad63636/spotlymobile/internal/event"
	handler "github.com/Mousaahmad63636/spotlymobile/internal/handler/http"
	"github.com/Mousaahmad63636/spotlymobile/internal/repository/memory"
	"github.com/Mousaahmad63636/spotlymobile/internal/service"
	"github.com/Mousaahmad63636/spotlymobile/internal/session"
	"github.com/Mousaahmad63636/spotlymobile/pkg/health"
	"github.com/Mousaahmad63636/spotlymobile/pkg/httpclient"
	pkgkafka "github.com/Mousaahmad63636/spotlymobile/pkg/kafka"
	"github.com/Mousaahmad63636/spotlymobile/pkg/tracing"
)

// App holds the wired dependency graph.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	consumer       *pkgkafka.Consumer
	tracerShutdown func(context.Context) error
}

// NewApp creates the application with all dependencies wired.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    "spotly-admin",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Backend HTTP client with retries and a circuit breaker.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryWaitMin:    time.Second,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 10,
	})
	breakerCfg := httpclient.DefaultBreakerConfig("spotly-backend")
	breakerCfg.FailureRatio = cfg.CBFailureRatio
	breakerCfg.MinRequests = cfg.CBMinRequests
	breakerCfg.Timeout = time.Duration(cfg.CBTimeout) * time.Second
	breakerClient := httpclient.NewBreakerClient(baseClient, breakerCfg, logger)
	logger.Info("backend client initialized",
		slog.String("base_url", cfg.APIBaseURL),
		slog.Float64("cb_failure_ratio", cfg.CBFailureRatio),
	)

	// Dependency graph.
	sessions := session.NewStore()
	backend := api.New(cfg.APIBaseURL, breakerClient, sessions, logger)
	cache := memory.New()
	orders := service.NewOrders(backend, cache, logger)
	auth := service.NewAuth(backend, sessions, logger)

	// Health checks. The backend is reachable when any HTTP response comes
	// back; its status code is the backend's business.
	healthHandler := health.NewHandler()
	healthHandler.Register("backend", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, cfg.APIBaseURL, nil)
		if err != nil {
			return err
		}
		resp, err := baseClient.Do(ctx, req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	})

	// Optional order event listener.
	var consumer *pkgkafka.Consumer
	if cfg.KafkaEnabled() {
		listener := event.NewListener(orders, logger)
		consumerCfg := pkgkafka.DefaultConsumerConfig(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic)
		consumer = pkgkafka.NewConsumer(consumerCfg, listener.Handle, logger)
		logger.Info("order event listener initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	} else {
		logger.Info("kafka disabled, running in pull-only mode")
	}

	router := handler.NewRouter(auth, orders, sessions, healthHandler, cfg.UploadsURL, logger)

	httpServer := &http.Server{
		Addr:              cfg.PanelAddr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      65 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		consumer:       consumer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the panel server and the event listener, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting admin panel", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("panel server: %w", err)
		}
	}()

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("event consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown drains the panel server, stops the consumer and flushes spans.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("panel server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
