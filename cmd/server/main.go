package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mkessler-dev/cardtable-backend/internal/config"
	"github.com/mkessler-dev/cardtable-backend/internal/httpapi"
	"github.com/mkessler-dev/cardtable-backend/internal/hub"
	"github.com/mkessler-dev/cardtable-backend/internal/room"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sug := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, hub.Options{
		Mode:         room.Mode(cfg.Mode),
		SpectatorMax: cfg.SpectatorMax,
		DefaultRoom:  cfg.DefaultRoom,
		Log:          sug,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: httpapi.SetupRoutes(h, cfg.StaticDir, sug),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sug.Warnw("http shutdown", "err", err)
		}
		h.Inbox() <- hub.ShutdownHub{}
	}()

	sug.Infow("listening", "port", cfg.Port, "mode", cfg.Mode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sug.Fatalw("http server", "err", err)
	}
}
