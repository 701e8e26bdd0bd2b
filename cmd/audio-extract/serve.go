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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yourusername/audio-extract-go/api"
	"github.com/yourusername/audio-extract-go/api/handlers"
	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(env *cliEnv) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for submitting extraction jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := env.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				config.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				config.Server.Port = port
			}

			log, events, err := newLoggers(config)
			if err != nil {
				return err
			}
			defer log.Sync()
			if events != nil {
				defer events.Close()
			}

			log.Info("Starting audio-extract server",
				zap.String("version", handlers.Version),
				zap.String("host", config.Server.Host),
				zap.Int("port", config.Server.Port),
				zap.String("download_dir", config.Download.Dir),
				zap.Int("concurrent_limit", config.Download.ConcurrentLimit))

			if err := os.MkdirAll(config.Download.Dir, 0755); err != nil {
				return fmt.Errorf("failed to create download directory: %w", err)
			}

			runner := newJobRunner(config, log, events)
			opts := api.RouterOptions{
				Searcher: infrastructure.NewYTDLPExtractor(&config.Extractor, config.Logging.LogsDir, log),
				LogsDir:  config.Logging.LogsDir,
				Events:   events,
			}
			if config.History.Enabled {
				repo, err := infrastructure.NewSQLiteJobRepository(config.History.DatabasePath)
				if err != nil {
					return fmt.Errorf("failed to open history database: %w", err)
				}
				defer repo.Close()
				runner.AddObserver(app.NewHistoryRecorder(repo, log))
				opts.History = repo
			}
			if config.Notification.Enabled {
				runner.AddObserver(infrastructure.NewNotificationService(&config.Notification, log))
			}
			manager := app.NewJobManager(runner, config, log, events)

			gin.SetMode(gin.ReleaseMode)
			addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
			server := &http.Server{
				Addr:    addr,
				Handler: api.SetupRouter(manager, log, opts),
			}

			serveErr := make(chan error, 1)
			go func() {
				log.Info("HTTP server listening", zap.String("addr", addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case sig := <-quit:
				log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			case err, ok := <-serveErr:
				if ok {
					return fmt.Errorf("failed to start server: %w", err)
				}
			}

			log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := manager.Shutdown(shutdownCtx); err != nil {
				log.Error("Jobs did not finish before shutdown", zap.Error(err))
			}
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Server forced to shutdown", zap.Error(err))
			}

			log.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")
	return cmd
}
