package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/config"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/logging"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/server"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFmt)

	st, err := store.Open(cfg.DataPath, store.SeedConfig{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, logger.With("component", "store"))
	if err != nil {
		logger.Error("open store", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backups := srv.Backups()
	backups.Start(ctx)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.Limiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "env", cfg.Env, "data", cfg.DataPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}

	backups.Stop()
	st.Close()
	logger.Info("bye")
}
