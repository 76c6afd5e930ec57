package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/interfaces"
	"github.com/cdekimpe/kagent-memory/internal/storage/chromem"
	"github.com/cdekimpe/kagent-memory/internal/storage/qdrant"
)

// NewVectorStore creates a vector store based on config. The embedding
// dimensionality is needed up front because Qdrant collections are created
// with a fixed vector size.
func NewVectorStore(logger arbor.ILogger, config *common.Config, dimensions int) (interfaces.VectorStore, error) {
	switch config.Storage.Type {
	case "qdrant", "":
		return qdrant.NewStore(logger, config.Storage.Qdrant, dimensions), nil
	case "chromem":
		return chromem.NewStore(logger, config.Storage.Chromem)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: qdrant, chromem)", config.Storage.Type)
	}
}
