package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dat2003as/ragAIFullStack/internal/adapter/llm"
	"github.com/dat2003as/ragAIFullStack/internal/config"
	"github.com/dat2003as/ragAIFullStack/internal/fileparse"
	"github.com/dat2003as/ragAIFullStack/internal/prompt"
	"github.com/dat2003as/ragAIFullStack/internal/ratelimit"
	"github.com/dat2003as/ragAIFullStack/internal/service"
	"github.com/dat2003as/ragAIFullStack/internal/store"
	transport "github.com/dat2003as/ragAIFullStack/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	log.Info("starting context engine",
		"app", cfg.AppName, "version", cfg.AppVersion,
		"port", cfg.Port, "upload_dir", cfg.UploadDir, "model", cfg.LLMModel)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("failed to create upload dir", "error", err)
		os.Exit(1)
	}

	// Stores
	sessions := store.NewSessionStore(cfg.UploadDir)
	history := store.NewHistoryStore()

	// Parsers
	images := fileparse.NewImageParser(cfg.MaxUploadSizeMB, cfg.MaxImageDimension, cfg.ImageQuality)
	csvs := fileparse.NewCSVParser(cfg.MaxCSVRows, &http.Client{Timeout: 30 * time.Second})
	docs := fileparse.NewDocumentParser(cfg.MaxUploadSizeMB)

	// LLM client
	completer := llm.NewClient(llm.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})

	// Service
	svc := service.New(cfg, log, sessions, history, completer, prompt.New(), images, csvs, docs)

	// Rate limiter and background loops
	limiter := ratelimit.New(cfg.RateLimitPerMinute, ratelimit.DefaultWindow)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go limiter.Janitor(ctx, 5*time.Minute)
	go svc.SweepIdleSessions(ctx, cfg.SweepInterval)

	// HTTP server
	e := transport.NewServer(cfg, svc, limiter)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("api started", "port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown gracefully", "error", err)
	}

	log.Info("stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
