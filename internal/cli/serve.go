package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/api"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port int
}

func newServeCommand(globals *GlobalFlags) *cobra.Command {
	flags := &ServeFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(cmd, globals, flags)
		},
	}
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(cmd *cobra.Command, globals *GlobalFlags, flags *ServeFlags) error {
	app, err := openApp(cmd, globals, func(cfg *config.Config) {
		if flags.Port > 0 {
			cfg.API.Port = flags.Port
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	logger := app.Logger.With(logging.SystemKey, "api")
	if !globals.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	apiCfg := api.Config{
		Port:           app.Config.API.Port,
		AllowedOrigins: app.Config.API.AllowedOrigins,
	}
	server := api.NewServer(apiCfg, app.Store, app.Ingest, app.Reconcile, logger)

	// Handle graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
