package interfaces

import (
	"context"

	"github.com/cdekimpe/kagent-memory/internal/models"
)

// MemoryService orchestrates chunking, embedding and vector storage to
// provide long-term memory operations. This interface is the surface
// consumed by the HTTP and MCP adapters.
type MemoryService interface {
	// Initialize prepares the underlying vector store. Must complete before
	// any other call.
	Initialize(ctx context.Context) error

	// AddMemory chunks, embeds and stores content. Empty or whitespace-only
	// content is a valid zero-chunk outcome, not an error.
	AddMemory(ctx context.Context, content string, metadata map[string]interface{}, userID, sessionID, agentName string) (*models.AddMemoryResponse, error)

	// SearchMemory embeds the query and returns store-ranked results.
	SearchMemory(ctx context.Context, req *models.SearchMemoryRequest) (*models.SearchMemoryResponse, error)

	// AddSessionToMemory extracts text from session events and stores the
	// joined transcript as memory.
	AddSessionToMemory(ctx context.Context, sessionID, userID string, events []map[string]interface{}, appName string) (*models.AddMemoryResponse, error)

	// DeleteMemories removes memories for a user, optionally narrowed by
	// session and agent, returning the deleted count.
	DeleteMemories(ctx context.Context, userID, sessionID, agentName string) (int, error)

	// HealthCheck reports whether the service's collaborators are reachable.
	HealthCheck(ctx context.Context) bool

	// Close releases the embedding provider and vector store, in that order.
	Close() error
}
