package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/martinsuchenak/invd/internal/api"
	"github.com/martinsuchenak/invd/internal/config"
	"github.com/martinsuchenak/invd/internal/log"
	"github.com/martinsuchenak/invd/internal/probe"
	"github.com/martinsuchenak/invd/internal/storage"
	"github.com/paularlott/cli"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the invd server",
		Description: "Start the HTTP server for the device inventory API",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			log.Configure(cfg.LogLevel, cfg.LogFormat)

			log.Info("Configuration loaded", "data_dir", cfg.DataDir, "listen_addr", cfg.ListenAddr, "ping_timeout", cfg.PingTimeout)

			// Initialize storage; a missing or broken store is fatal
			store, err := storage.NewStorage(cfg.DataDir)
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			log.Info("Storage initialized", "backend", "SQLite", "path", cfg.DataDir)

			// Create API handler
			prober := probe.NewICMPProber(cfg.PingTimeout)
			apiHandler := api.NewHandler(store, prober)

			// Setup HTTP routes
			mux := http.NewServeMux()
			apiHandler.RegisterRoutes(mux)

			// Apply middleware
			var handler http.Handler = mux
			if cfg.IsAPIAuthEnabled() {
				handler = api.AuthMiddleware(cfg.APIAuthToken, handler)
			}
			handler = api.SecurityHeadersMiddleware(handler)

			// Start server
			server := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: handler,
			}

			// Handle shutdown gracefully
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan
				log.Info("Shutting down server...")
				server.Close()
			}()

			log.Info("Starting invd server", "addr", cfg.ListenAddr)
			log.Info("API available", "url", "http://localhost"+cfg.ListenAddr+"/api/")
			if cfg.IsAPIAuthEnabled() {
				log.Info("API authentication enabled")
			}

			// Start serving
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Server error", "error", err)
				return err
			}

			log.Info("Server stopped")
			return nil
		},
	}
}
