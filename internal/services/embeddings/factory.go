package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/interfaces"
)

// NewProvider creates an embedding provider based on config.
func NewProvider(ctx context.Context, logger arbor.ILogger, config *common.Config) (interfaces.EmbeddingProvider, error) {
	cfg := config.Embedding

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("dimensions", cfg.Dimensions).
		Msg("Creating embedding provider")

	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	case "gemini":
		return NewGeminiProvider(ctx, cfg)
	case "offline":
		return NewOfflineProvider(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: openai, gemini, offline)", cfg.Provider)
	}
}
