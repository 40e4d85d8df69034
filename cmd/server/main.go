package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RichardoC/padchat/internal/api"
	"github.com/RichardoC/padchat/internal/db"
	"github.com/RichardoC/padchat/internal/llm"
)

type config struct {
	Addr     string
	DBPath   string
	LLMURL   string
	LLMToken string
	Model    string
}

func loadConfig() config {
	// A missing .env is fine.
	_ = godotenv.Load()

	return config{
		Addr:     getEnvOrDefault("PADCHAT_ADDR", ":8100"),
		DBPath:   getEnvOrDefault("PADCHAT_DB", "padchat.db"),
		LLMURL:   getEnvOrDefault("PADCHAT_LLM_URL", "http://localhost:11434/v1/"),
		LLMToken: getEnvOrDefault("PADCHAT_LLM_TOKEN", os.Getenv("OPENAI_API_KEY")),
		Model:    getEnvOrDefault("PADCHAT_MODEL", "llama3.1:8b"),
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := loadConfig()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer database.Close()

	llmService, err := llm.New(cfg.LLMURL, cfg.LLMToken, cfg.Model, database, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}

	handler := api.NewHandler(database, llmService, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("Starting server",
			zap.String("addr", cfg.Addr),
			zap.String("model", cfg.Model))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
