package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/cdekimpe/kagent-memory/internal/common"
)

// modelDimensions maps known OpenAI embedding models to their native
// vector dimensionality.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIProvider generates embeddings through the OpenAI embeddings API.
type OpenAIProvider struct {
	client     openai.Client
	model      string
	dimensions int
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewOpenAIProvider creates an OpenAI embedding provider from configuration.
// The API key is required; model and dimensions fall back to
// text-embedding-3-small defaults.
func NewOpenAIProvider(cfg common.EmbeddingConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedding provider requires an API key")
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	dims := cfg.Dimensions
	if dims <= 0 {
		known, ok := modelDimensions[model]
		if !ok {
			return nil, fmt.Errorf("unknown embedding model %q: dimensions must be configured", model)
		}
		dims = known
	}

	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))

	return &OpenAIProvider{
		client:     client,
		model:      model,
		dimensions: dims,
		limiter:    newRateLimiter(cfg.RateLimit),
		timeout:    parseTimeout(cfg.Timeout),
	}, nil
}

// Embed generates one embedding per input text in a single API call.
// Results are returned in input order.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	// Only third-generation models accept a dimensions override.
	if strings.HasPrefix(p.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	// The API does not guarantee response order; place each vector by index.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("openai returned embedding with out-of-range index %d", d.Index)
		}
		out[d.Index] = convertToFloat32(d.Embedding)
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("openai response missing embedding for input %d", i)
		}
	}

	return out, nil
}

// Dimension returns the configured vector dimensionality.
func (p *OpenAIProvider) Dimension() int {
	return p.dimensions
}

// Close releases provider resources. The OpenAI client holds no
// persistent connections that need explicit teardown.
func (p *OpenAIProvider) Close() error {
	return nil
}

func convertToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func newRateLimiter(interval string) *rate.Limiter {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		d = 100 * time.Millisecond
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

func parseTimeout(timeout string) time.Duration {
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		d = 30 * time.Second
	}
	return d
}
