package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const app = "resume-analyzer"

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-analyzer scores a resume against a job description with embeddings and an LLM report",
		Run: func(cmd *cobra.Command, args []string) {
			serve(cmd)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// bootstrap loads and validates the configuration and builds the logger.
// A missing LLM key is fatal here, before anything is served.
func bootstrap() (*config.Config, *zap.Logger) {
	cfg := config.Load()

	zl, err := logger.New(cfg.Server.Env, debug, jsonLog || cfg.Server.LogJSON)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	if err := cfg.Validate(); err != nil {
		zl.Fatal("❌ "+err.Error(), zap.String(logger.FieldProvider, cfg.LLM.Provider))
	}
	zl.Info("✅ Config loaded successfully")

	return cfg, zl
}

// newAnalyzer wires extraction, similarity and report generation.
func newAnalyzer(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.AnalyzerService, error) {
	embedder, err := newEmbedder(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	provider, err := services.NewChatProvider(
		ctx,
		cfg.LLM.Provider,
		cfg.LLM.APIKey(),
		cfg.LLM.Model,
		cfg.LLM.BaseURL,
		cfg.LLM.MaxTokens,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Info("✅ LLM provider initialized", logger.CommonFields(provider.Name(), provider.Model())...)

	return services.NewAnalyzerService(
		services.NewPDFParserService(),
		services.NewSimilarityService(embedder),
		services.NewReportService(provider, cfg.LLM.Timeout, log),
		log,
	), nil
}

func newEmbedder(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.Embedder, error) {
	var embedder services.Embedder
	switch cfg.EmbeddingProvider() {
	case config.EmbeddingGemini:
		e, err := services.NewGeminiEmbedder(ctx, cfg.LLM.GeminiAPIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini embeddings: %w", err)
		}
		embedder = e
	default:
		embedder = services.NewLocalEmbedder()
	}
	log.Info("✅ Embedder initialized",
		append(logger.CommonFields(cfg.EmbeddingProvider(), embedder.Model()), zap.Int("dimensions", embedder.Dimensions()))...)

	if cfg.Qdrant.URL == "" {
		return embedder, nil
	}

	cache, err := services.NewQdrantEmbeddingCache(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, uint64(embedder.Dimensions()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	if err := cache.InitCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
	}
	log.Info("✅ Qdrant embedding cache initialized", zap.String("collection", cfg.Qdrant.Collection))

	return services.NewCachingEmbedder(embedder, cache, log), nil
}
