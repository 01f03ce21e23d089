package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/taskapi/internal/db/bunx"
	"github.com/terraconstructs/taskapi/internal/logging"
	"github.com/terraconstructs/taskapi/internal/repository"
	"github.com/terraconstructs/taskapi/internal/server"
	"github.com/terraconstructs/taskapi/internal/services/iam"
	"github.com/terraconstructs/taskapi/internal/services/task"
	"github.com/terraconstructs/taskapi/internal/services/user"
	"github.com/terraconstructs/taskapi/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the taskapi server",
	Long:  `Starts the HTTP server exposing the task and user REST API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.Logger()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability, cfg.Environment, logging.Component("telemetry"))
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(sctx); err != nil {
				logger.Warn().Err(err).Msg("telemetry shutdown")
			}
		}()

		db, err := bunx.Open(ctx, cfg.DatabaseURL, bunx.Options{MaxOpenConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		logger.Info().Str("type", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Msg("connected to database")

		userRepo := repository.NewBunUserRepository(db)
		taskRepo := repository.NewBunTaskRepository(db)

		authLogger := logging.Component("auth")
		verifier, err := iam.NewTokenVerifier(cfg.Auth, authLogger)
		if err != nil {
			return err
		}

		checker := iam.NewChecker(iam.CheckerDependencies{
			Validator: iam.NewCredentialValidator(userRepo),
			Verifier:  verifier,
			Logger:    authLogger,
		})
		resolver := iam.NewResolver(userRepo, authLogger)

		metrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("failed to create server metrics: %w", err)
		}

		corsOpts := server.DefaultCORSOptions(cfg.CORSAllowedOrigins)

		r := server.NewRouter(server.RouterOptions{
			Checker:                checker,
			Resolver:               resolver,
			Tasks:                  task.NewService(taskRepo, logging.Component("tasks")),
			Users:                  user.NewService(userRepo, logging.Component("users")),
			Logger:                 logging.Component("http"),
			Metrics:                metrics,
			CORSOptions:            &corsOpts,
			LoginRequestsPerMinute: cfg.Auth.LoginRequestsPerMinute,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.ServerAddr).Str("environment", cfg.Environment).Msg("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(sctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info().Msg("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
