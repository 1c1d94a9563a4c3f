package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meltforce/voicecoach/internal/audioseg"
	"github.com/meltforce/voicecoach/internal/config"
	"github.com/meltforce/voicecoach/internal/generator"
	"github.com/meltforce/voicecoach/internal/script"
	"github.com/meltforce/voicecoach/internal/server"
	"github.com/meltforce/voicecoach/internal/session"
	"github.com/meltforce/voicecoach/internal/speech"
	"github.com/meltforce/voicecoach/internal/storage"
	"github.com/meltforce/voicecoach/internal/userconfig"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("VoiceCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Create providers — fail fast on misconfiguration
	scripts, err := script.NewProvider(script.Config{
		Provider: cfg.LLM.Provider,
		OpenAI: script.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
		},
		Gemini: script.GeminiConfig{
			APIKey:  cfg.LLM.Gemini.APIKey,
			Model:   cfg.LLM.Gemini.Model,
			BaseURL: cfg.LLM.Gemini.BaseURL,
		},
	})
	if err != nil {
		log.Error("failed to create script provider", "error", err)
		os.Exit(1)
	}

	synth, err := speech.NewSynthesizer(speech.Config{
		Provider: cfg.TTS.Provider,
		ElevenLabs: speech.ElevenLabsConfig{
			APIKey:  cfg.TTS.ElevenLabs.APIKey,
			VoiceID: cfg.TTS.ElevenLabs.VoiceID,
			ModelID: cfg.TTS.ElevenLabs.ModelID,
			BaseURL: cfg.TTS.ElevenLabs.BaseURL,
		},
	})
	if err != nil {
		log.Error("failed to create speech synthesizer", "error", err)
		os.Exit(1)
	}

	// Assemble the pipeline
	users := userconfig.NewService(db)
	gen := generator.New(db, users, scripts, synth, generator.Options{
		Workers:         cfg.Generate.Workers,
		IncludeBriefing: cfg.Generate.IncludeBriefing,
		Segmenter:       segmenterOptions(cfg.TTS.Segmenter),
	}, log)
	sessions := session.NewService(db)

	srv := server.New(db, gen, sessions, synth, cfg.Auth.APIKey, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("server starting", "addr", addr,
		"llm", cfg.LLM.Provider, "tts", cfg.TTS.Provider)

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func segmenterOptions(sc config.SegmenterConfig) audioseg.Options {
	opts := audioseg.DefaultOptions()
	if sc.MinSilenceMs > 0 {
		opts.MinSilence = time.Duration(sc.MinSilenceMs) * time.Millisecond
	}
	if sc.SilenceThresholdDB != 0 {
		opts.SilenceThresholdDB = sc.SilenceThresholdDB
	}
	if sc.KeepSilenceMs > 0 {
		opts.KeepSilence = time.Duration(sc.KeepSilenceMs) * time.Millisecond
	}
	return opts
}
