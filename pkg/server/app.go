package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"FuelPilot/internal/usecase"
	"FuelPilot/pkg/cache"
	pkgch "FuelPilot/pkg/clickhouse"
	"FuelPilot/pkg/config"
	xhttp "FuelPilot/pkg/http"
	pkgkafka "FuelPilot/pkg/kafka"
	applogger "FuelPilot/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.QuoteCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	scheduler   *usecase.DailyScheduler
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	cacheSvc    cache.Service
	QuoteProc   *usecase.QuoteProcessor

	collectorStarted bool
	schedulerStarted bool
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	scheduler *usecase.DailyScheduler,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		scheduler: scheduler,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetCache allows DI to inject the cache for health reporting.
func (a *App) SetCache(c cache.Service) { a.cacheSvc = c }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.httpServer.Echo().GET("/health", a.healthHandler)

	// Start the quote collector when a live feed is configured
	if a.cfg.QuoteFeed.Enabled && a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("quote collector start error", applogger.Error(err))
			return err
		}
		a.collectorStarted = true
		l.Info("quote collector started", applogger.Strings("products", a.cfg.QuoteFeed.Products))
	}

	// Start consumer when quotes flow through Kafka
	if a.cfg.Backend.Type == "kafka" && a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start the daily pricing scheduler
	if a.cfg.Scheduler.Enabled && a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			l.Error("scheduler start error", applogger.Error(err))
			return err
		}
		a.schedulerStarted = true
		l.Info("daily pricing scheduler started", applogger.String("run_at", a.cfg.Scheduler.RunAt))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop scheduler first so no new pricing batch starts mid-shutdown
	if a.schedulerStarted {
		a.scheduler.Stop()
	}

	// Stop collector (pipeline + stream)
	if a.collectorStarted {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("quote collector stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close quote processor resources (publisher/storage)
	if a.QuoteProc != nil {
		a.QuoteProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}

// healthHandler checks infrastructure dependencies.
func (a *App) healthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true

	if a.chClient != nil {
		if err := a.chClient.Health(ctx); err != nil {
			status["clickhouse"] = err.Error()
			healthy = false
		} else {
			status["clickhouse"] = "ok"
		}
	}
	if a.cacheSvc != nil {
		if _, err := a.cacheSvc.Exists(ctx, "health"); err != nil {
			status["cache"] = err.Error()
			healthy = false
		} else {
			status["cache"] = "ok"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}
