package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/db"
	"github.com/danielhkuo/pollroom/live"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/router"
	"github.com/danielhkuo/pollroom/store"
)

func main() {
	var err error

	// Local .env is optional; real environment wins over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect, retrying while the database comes up
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.DBConnectAttempts, cfg.DBConnectDelay)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	hub := live.NewHub(cfg.LiveSendBuffer)
	mux := router.NewRouter(store.New(dbConn, cfg.DatabaseType), hub, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		// Wait for Ctrl-C signal
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Hijacked live connections are not tracked by Shutdown
		hub.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown incomplete", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "database", cfg.DatabaseType)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	<-shutdownDone
	slog.Info("Server closed")
}
