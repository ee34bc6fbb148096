package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/api"
	"mindfulmate-backend/internal/auth"
	"mindfulmate-backend/internal/config"
	"mindfulmate-backend/internal/llm"
	"mindfulmate-backend/internal/sentiment"
	"mindfulmate-backend/internal/store"
	"mindfulmate-backend/internal/store/badgerstore"
	"mindfulmate-backend/internal/store/postgres"
	"mindfulmate-backend/internal/store/sqlite"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	// Local fallback tiers are mandatory; the process cannot start
	// without them.
	localAuth, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Fatal("failed to open local auth store", zap.Error(err))
	}
	defer localAuth.Close()

	localMemory, err := badgerstore.Open(cfg.BadgerDir)
	if err != nil {
		logger.Fatal("failed to open local memory store", zap.Error(err))
	}
	defer localMemory.Close()

	// The primary tier is optional. Without a DSN every read and write
	// goes straight to the local tiers.
	var primary *postgres.Store
	if cfg.PostgresDSN != "" {
		primary, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Warn("primary tier unavailable at startup, running on local tiers", zap.Error(err))
			primary = nil
		} else {
			defer primary.Close()
		}
	}

	var primaryAuth store.AuthStore
	var primaryMemory store.MemoryStore
	if primary != nil {
		primaryAuth = primary
		primaryMemory = primary
	}

	authStore := store.NewFallbackAuthStore(primaryAuth, localAuth, cfg.PrimaryTimeout, logger)
	memoryStore := store.NewFallbackMemoryStore(primaryMemory, localMemory, cfg.PrimaryTimeout, logger)

	authSvc := auth.NewService(authStore, cfg.SessionTTL, logger)

	classifier := sentiment.NewHTTPClassifier(cfg.SentimentURL, cfg.SentimentAPIKey, 10*time.Second)
	scorer := sentiment.NewNormalizer(classifier, sentiment.DefaultPolicy(), logger)

	chain := buildProviderChain(ctx, cfg, logger)
	assembler := llm.NewContextAssembler(memoryStore, cfg.ContextWindow)
	orchestrator := llm.NewOrchestrator(chain, scorer, assembler, memoryStore, logger)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	handlers := api.NewHandlers(authSvc, orchestrator, memoryStore, logger)
	api.RegisterRoutes(e.Group("/api"), handlers)

	logger.Info("starting server", zap.String("port", cfg.Port))
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// buildProviderChain configures the ordered provider list from whatever
// API keys are present. An empty chain is allowed: every chat then gets
// the fixed fallback reply.
func buildProviderChain(ctx context.Context, cfg config.Config, logger *zap.Logger) []llm.ChainEntry {
	var chain []llm.ChainEntry

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini provider unavailable", zap.Error(err))
		} else {
			chain = append(chain, llm.ChainEntry{
				Provider: gemini,
				Timeout:  cfg.ProviderTimeout,
				Retries:  cfg.ProviderRetries,
			})
		}
	}

	if cfg.OpenAIAPIKey != "" {
		chain = append(chain, llm.ChainEntry{
			Provider: llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL),
			Timeout:  cfg.ProviderTimeout,
			Retries:  cfg.ProviderRetries,
		})
	}

	if len(chain) == 0 {
		logger.Warn("no LLM providers configured, chat will return the fallback reply")
	}

	return chain
}
