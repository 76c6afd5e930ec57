package embeddings

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/cdekimpe/kagent-memory/internal/common"
)

const defaultGeminiModel = "gemini-embedding-001"

// GeminiProvider generates embeddings through the Gemini API.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	dimensions int
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewGeminiProvider creates a Gemini embedding provider from configuration.
func NewGeminiProvider(ctx context.Context, cfg common.EmbeddingConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini embedding provider requires an API key")
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	dims := cfg.Dimensions
	if dims <= 0 {
		return nil, fmt.Errorf("gemini embedding provider requires a positive dimensions setting, got %d", dims)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		model:      model,
		dimensions: dims,
		limiter:    newRateLimiter(cfg.RateLimit),
		timeout:    parseTimeout(cfg.Timeout),
	}, nil
}

// Embed generates one embedding per input text in a single batched call.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(p.dimensions)
	result, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", got, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini returned empty embedding for input %d", i)
		}
		out[i] = emb.Values
	}

	return out, nil
}

// Dimension returns the configured vector dimensionality.
func (p *GeminiProvider) Dimension() int {
	return p.dimensions
}

// Close releases provider resources.
func (p *GeminiProvider) Close() error {
	return nil
}
