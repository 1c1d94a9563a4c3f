package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/voicecoach/internal/config"
	"github.com/meltforce/voicecoach/internal/mcp"
	"github.com/meltforce/voicecoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "base URL of a running VoiceCoach server (remote mode)")
	apiKey := flag.String("api-key", "", "API key for remote mode (defaults to VOICECOACH_AUTH_API_KEY)")
	userStr := flag.String("user", "", "user ID (UUID) to serve (required)")
	flag.Parse()

	// MCP speaks JSON-RPC on stdout; logs must go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	userID, err := uuid.Parse(*userStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usage: voicecoach-mcp -user <uuid> [-config config.yaml | -url https://server -api-key key]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds mcp.DataSource

	if *remoteURL != "" {
		key := *apiKey
		if key == "" {
			key = os.Getenv("VOICECOACH_AUTH_API_KEY")
		}
		if key == "" {
			log.Error("remote mode requires -api-key or VOICECOACH_AUTH_API_KEY")
			os.Exit(1)
		}
		ds = mcp.NewHTTPClient(*remoteURL, key, userID)
		log.Info("MCP server starting", "mode", "remote", "url", *remoteURL, "version", Version)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("MCP server starting", "mode", "local", "version", Version)
	}

	s := mcp.New(ds, Version, log)

	err = server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, userID)
	}))
	if err != nil {
		log.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}
