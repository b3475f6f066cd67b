package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/config"
	"github.com/Skotchmaster/storefront_gateway/internal/events"
	"github.com/Skotchmaster/storefront_gateway/internal/httpserver"
	"github.com/Skotchmaster/storefront_gateway/internal/logging"
	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	bus := session.NewBus()

	sessions, err := session.Open(cfg.SessionDBPath, bus)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	client := backend.NewClient(cfg.BackendURL)

	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		producer.Attach(bus, logger)
		logger.Info("event mirror enabled", "brokers", cfg.KafkaBrokers)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		Log:      logger,
		Backend:  client,
		Sessions: sessions,
		Bus:      bus,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Sweep(sweepCtx, time.Minute, logger)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
