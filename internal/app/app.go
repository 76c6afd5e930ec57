package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/handlers"
	"github.com/cdekimpe/kagent-memory/internal/interfaces"
	"github.com/cdekimpe/kagent-memory/internal/services/chunker"
	"github.com/cdekimpe/kagent-memory/internal/services/embeddings"
	"github.com/cdekimpe/kagent-memory/internal/services/memory"
	"github.com/cdekimpe/kagent-memory/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Core collaborators
	Chunker           interfaces.Chunker
	EmbeddingProvider interfaces.EmbeddingProvider
	VectorStore       interfaces.VectorStore
	MemoryService     interfaces.MemoryService

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	MemoryHandler *handlers.MemoryHandler
}

// New initializes the application with all dependencies. Construction order
// matters: the embedding provider determines the vector dimensionality the
// store is created with.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	textChunker, err := chunker.NewFixedSizeChunker(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}
	app.Chunker = textChunker

	provider, err := embeddings.NewProvider(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	app.EmbeddingProvider = provider

	store, err := storage.NewVectorStore(logger, cfg, provider.Dimension())
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	app.VectorStore = store

	service := memory.NewService(logger, textChunker, provider, store, cfg.Search)
	if err := service.Initialize(ctx); err != nil {
		service.Close()
		return nil, fmt.Errorf("failed to initialize memory service: %w", err)
	}
	app.MemoryService = service

	app.APIHandler = handlers.NewAPIHandler(service, logger)
	app.MemoryHandler = handlers.NewMemoryHandler(service, cfg, logger)

	logger.Info().
		Str("embedding_provider", cfg.Embedding.Provider).
		Str("storage", cfg.Storage.Type).
		Msg("Application initialization complete")

	return app, nil
}

// Close releases all application resources
func (a *App) Close() error {
	if a.MemoryService == nil {
		return nil
	}
	if err := a.MemoryService.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close memory service cleanly")
		return err
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
