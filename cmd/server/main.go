package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/program-builder/internal/api"
	"alcyxob/program-builder/internal/app"
	"alcyxob/program-builder/internal/config"
	"alcyxob/program-builder/internal/logger"

	"github.com/gin-gonic/gin"
)

// @title Program Builder API
// @version 1.0
// @description Compose phase/block/exercise/set programs and assign them to patient teams.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("server failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run serves until ctx is done or the listener fails. Every resource it opens
// is released before it returns.
func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set (JWT_SECRET)")
	}
	log.Info("starting program builder server", "address", cfg.Server.Address, "backend", cfg.Database.Backend)

	// --- Repositories ---
	repos, closeRepos, err := app.OpenRepositories(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("could not open repositories: %w", err)
	}
	defer closeRepos()

	go func() {
		if err := repos.EnsureIndexes(context.Background()); err != nil {
			log.Error("index creation failed", "error", err)
			return
		}
		log.Info("index creation completed")
	}()

	// --- Storage ---
	files, err := app.OpenFileStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize s3 storage: %w", err)
	}

	// --- Services and routes ---
	services := app.NewServices(cfg, repos, files, log)

	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log.With("component", "http")))
	api.SetupRoutes(router, cfg.JWT.Secret, services)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exiting")
	return nil
}
