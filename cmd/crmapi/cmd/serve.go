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

	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/hearthstone-labs/crm/internal/config"
	"github.com/hearthstone-labs/crm/internal/db/bunx"
	"github.com/hearthstone-labs/crm/internal/logging"
	"github.com/hearthstone-labs/crm/internal/repository"
	"github.com/hearthstone-labs/crm/internal/schema"
	"github.com/hearthstone-labs/crm/internal/server"
	"github.com/hearthstone-labs/crm/internal/services/crm"
	"github.com/hearthstone-labs/crm/internal/telemetry"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CRM API server",
	Long:  `Starts the HTTP server exposing the /api/v1 REST endpoints, health and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(cfg.LogFormat, cfg.Debug)

		db, err := bunx.NewDB(cmd.Context(), cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		logger.WithField("driver", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Info("connected to database")

		metrics := telemetry.New()
		db.AddQueryHook(metrics.QueryHook())

		validator, err := schema.NewValidator(cfg.SchemaCacheSize)
		if err != nil {
			return fmt.Errorf("create validator: %w", err)
		}

		authn, err := auth.NewAuthenticator(cfg.Auth)
		if err != nil {
			return fmt.Errorf("configure authentication: %w", err)
		}
		if cfg.Auth.Mode == config.AuthModeDev {
			logger.WithField("subject", cfg.Auth.DevSubject).Warn("dev auth mode: every request is authenticated without a credential")
		}

		clientRepo := repository.NewBunClientRepository(db)
		transactionRepo := repository.NewBunTransactionRepository(db)

		corsOpts := server.CORSOptionsFor(cfg.CORS.AllowedOrigins)
		router := server.NewRouter(server.RouterOptions{
			Clients:       crm.NewClientService(clientRepo, cfg.DefaultPageLimit),
			Transactions:  crm.NewTransactionService(transactionRepo, cfg.DefaultPageLimit),
			Authenticator: metrics.InstrumentAuthenticator(authn, cfg.Auth.Mode),
			Validator:     validator,
			Logger:        logger,
			Metrics:       metrics,
			CORSOptions:   &corsOpts,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.WithField("addr", cfg.ServerAddr).Info("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.WithField("signal", sig.String()).Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
