package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/subtext-live/subtext/internal/adapters/http"
	"github.com/subtext-live/subtext/internal/app"
	"github.com/subtext-live/subtext/internal/asr"
	"github.com/subtext-live/subtext/internal/config"
	"github.com/subtext-live/subtext/internal/translate"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	registry := app.NewRegistry()
	msgRouter := &app.Router{
		Registry:    registry,
		Translator:  translate.FromConfig(cfg.DeepLAPIURL, cfg.DeepLAPIKey),
		Transcriber: asr.FromConfig(cfg.WhisperBinary, cfg.WhisperModel),
	}

	heartbeat := &app.Heartbeat{
		Registry: registry,
		Interval: cfg.HeartbeatInterval,
		Backoff:  cfg.HeartbeatBackoff,
	}
	go heartbeat.Run(ctx)

	r := router.SetupRouter(ctx, cfg, registry, msgRouter)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("subtext server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
