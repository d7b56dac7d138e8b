package main

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/auth"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/controller"
	apirepository "ctchen222/Tic-Tac-Toe-Solo/internal/api/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/service"
	"ctchen222/Tic-Tac-Toe-Solo/internal/bot"
	"ctchen222/Tic-Tac-Toe-Solo/internal/config"
	"ctchen222/Tic-Tac-Toe-Solo/internal/db"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/internal/logger"
	"ctchen222/Tic-Tac-Toe-Solo/internal/server"
	"ctchen222/Tic-Tac-Toe-Solo/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(otel.Meter("tic-tac-toe-solo"))
	if err != nil {
		log.Fatalf("failed to create metrics: %v", err)
	}

	// Redis is optional; without it the bus stays in process.
	var bus events.Bus = events.NewMemoryBus()
	if cfg.RedisEnabled() {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		bus = events.NewRedisBus(rdb)
		slog.Info("Using Redis event bus", "redis.addr", cfg.Redis.Addr)
	}

	// Initialize SQLite DB
	DB, err := db.Open(ctx, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}
	defer DB.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Create hub
	h := hub.NewHub(bus, metrics, bot.Selector{}, hub.Options{
		ComputerDelay: cfg.Game.ComputerDelay,
		IdleTTL:       cfg.Game.SessionIdleTTL,
	})
	hubDone := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(hubDone)
	}()

	// Create services and controllers
	userService := service.NewUserService(apirepository.NewUserRepository(DB), tokens)
	sessionService := service.NewSessionService(h, metrics)
	srv := server.NewServer(h, tokens,
		controller.NewUserController(userService),
		controller.NewSessionController(sessionService),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	<-hubDone

	slog.Info("Server exiting")
}
