package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"todoapp/backend/internal/config"
	"todoapp/backend/internal/database"
	"todoapp/backend/internal/logger"
	"todoapp/backend/internal/routes"
)

var (
	envFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:          "todo-api",
	Short:        "Todo REST API server",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a .env file (ignored if missing)")
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides APP_PORT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.AppPort = port
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.DBDriver, "error", err)
		return err
	}
	defer closeStore()

	redisClient := database.OpenRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter := routes.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           routes.SetupRouter(store, cfg, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.AppPort, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}
	logger.Info("server exited")
	return nil
}
