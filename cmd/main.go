/*
Package main is the entry point for the chirpd chat server.

It is responsible for loading configuration, initializing the global logging system,
loading the user directory, starting the chat TCP listener and the admin HTTP server,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth shutdown.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chirpd/internal/app/directory"
	"chirpd/internal/app/registry"
	"chirpd/internal/app/server"
	"chirpd/internal/configs"
	"chirpd/internal/handler"
	"chirpd/internal/pkg/logx"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logx.InitGlobalLogger(cfg.Log.Development, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logx.Logger().Info().
		Str("listen_addr", cfg.ListenAddr()).
		Str("admin_addr", cfg.Admin.Addr).
		Str("directory_path", cfg.DirectoryPath).
		Str("log_file", cfg.Log.File).
		Msg("Configuration loaded successfully")

	dir, err := directory.Load(cfg.DirectoryPath)
	if err != nil {
		logx.Fatal(err, "Failed to load user directory")
	}
	logx.Info("User directory loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New()

	chatServer := server.New(cfg, reg, dir)
	go func() {
		if err := chatServer.ListenAndServe(ctx); err != nil {
			logx.Fatal(err, "Chat server failed")
		}
	}()

	var adminServer *http.Server
	if cfg.Admin.Start {
		deps := &handler.AppDeps{
			Config:    cfg,
			Registry:  reg,
			Directory: dir,
			StartedAt: time.Now(),
		}

		adminServer = &http.Server{
			Addr:         cfg.Admin.Addr,
			Handler:      handler.Router(deps),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		go func() {
			logx.Info(fmt.Sprintf("Admin server starting on http://%s", cfg.Admin.Addr))
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Fatal(err, "Admin server failed to start")
			}
		}()
	}

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	if adminServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()

		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logx.Error(err, "Admin server forced to shutdown")
		}
	}

	logx.Info("Server gracefully stopped.")
}
