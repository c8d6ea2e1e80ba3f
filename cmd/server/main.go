package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lingobuddy/internal/config"
	"lingobuddy/internal/db"
	"lingobuddy/internal/httpapi"
	"lingobuddy/internal/llm"
	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/observability"
	"lingobuddy/internal/session"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	observability.Setup(cfg.LogLevel)
	log := observability.WithFields("service", "lingobuddy")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DBPath, cfg.DBDSN)
	if err != nil {
		log.Error("open database", "error", err.Error())
		os.Exit(1)
	}

	store := mistakes.NewStore(gdb)
	if err := store.Init(ctx); err != nil {
		log.Error("init mistake store", "error", err.Error())
		os.Exit(1)
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		log.Error("build llm provider", "error", err.Error())
		os.Exit(1)
	}

	mgr := session.NewManager(provider, store, cfg.LLMTimeout)
	router := httpapi.NewRouter(cfg, mgr, store)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Info("server started", "addr", cfg.Addr, "provider", provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err.Error())
	}
}

// buildProvider wires the configured completion backend, wrapped with
// per-attempt logging and retry.
func buildProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	reg := llm.NewRegistry()

	reg.Register("groq", func(ctx context.Context, model string) (llm.Provider, error) {
		_ = ctx
		return llm.NewGroqProvider(llm.OpenAIConfig{
			APIKey:      cfg.GroqAPIKey,
			BaseURL:     cfg.GroqBaseURL,
			Model:       strings.TrimSpace(model),
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	})

	reg.Register("openai", func(ctx context.Context, model string) (llm.Provider, error) {
		_ = ctx
		return llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       strings.TrimSpace(model),
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	})

	reg.Register("openrouter", func(ctx context.Context, model string) (llm.Provider, error) {
		_ = ctx
		return llm.NewOpenRouterProvider(llm.OpenAIConfig{
			APIKey:      cfg.OpenRouterAPIKey,
			BaseURL:     cfg.OpenRouterBaseURL,
			Model:       strings.TrimSpace(model),
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	})

	reg.Register("anthropic", func(ctx context.Context, model string) (llm.Provider, error) {
		_ = ctx
		return llm.NewAnthropicProvider(llm.AnthropicConfig{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       strings.TrimSpace(model),
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	})

	reg.Register("gemini", func(ctx context.Context, model string) (llm.Provider, error) {
		return llm.NewGeminiProvider(ctx, llm.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       strings.TrimSpace(model),
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	})

	reg.Register("ollama", func(ctx context.Context, model string) (llm.Provider, error) {
		_ = ctx
		return llm.NewOllamaProvider(llm.OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   strings.TrimSpace(model),
		}), nil
	})

	reg.Register("mock", func(ctx context.Context, model string) (llm.Provider, error) {
		_ = ctx
		_ = model
		return llm.NewMockProvider(), nil
	})

	base, err := reg.Get(ctx, cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(llm.WithLogging(base), llm.DefaultRetryConfig()), nil
}
