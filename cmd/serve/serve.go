// Package serve implements the command that runs the Handoff web server.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/handoff-dev/handoff/app"
	"github.com/handoff-dev/handoff/config"
	"github.com/handoff-dev/handoff/logging"
	"github.com/handoff-dev/handoff/notify"
	"github.com/handoff-dev/handoff/web/handlers"
	"github.com/handoff-dev/handoff/web/routes"
	"github.com/handoff-dev/handoff/web/ws"
	"github.com/spf13/cobra"
)

// NewCmdServe creates the command that runs the portal web server
func NewCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Handoff portal server",
		Long:  "Starts the HTTP API, the uploads file server and the notification websocket in a single process",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runServer(configPath)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func runServer(configPath string) error {
	cfg, err := config.NewConfigFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	logging.InitLogging(cfg.LogLevel)

	slog.Info("Starting Handoff server")

	hub := ws.NewHub()
	var notifier notify.Notifier
	if cfg.NotificationsEnabled {
		notifier = hub
	}

	if err := app.InitializeWithConfig(cfg, notifier); err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel)

	go hub.Run()
	defer hub.Stop()

	return startWebServer(ctx, cfg, hub)
}

func startWebServer(ctx context.Context, cfg *config.Config, hub *ws.Hub) error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	projectHandlers := handlers.NewProjectHandlers(
		app.GetProjectService(),
		app.GetVersionService(),
		app.GetSharedFileService(),
	)
	versionHandlers := handlers.NewVersionHandlers(
		app.GetVersionService(),
		app.GetApprovalService(),
		app.GetCommentService(),
	)

	routes.RegisterAPIRoutes(r, projectHandlers, versionHandlers)
	routes.RegisterWSRoutes(r, hub)
	routes.RegisterFileRoutes(r, app.GetBlobStore().Root())
	routes.RegisterHealthRoutes(r)

	address := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:    address,
		Handler: r,
	}

	go func() {
		slog.Info("Web server starting", "address", fmt.Sprintf("http://%s", address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Web server failed", "error", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down web server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown failed: %w", err)
	}

	slog.Info("Web server stopped")
	return nil
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutdown signal received")
	cancel()
}
