package models

// Chunk is a bounded substring of input content with position metadata.
// It is the unit handed to the embedding provider; chunks live only for the
// duration of a single add operation and are never persisted themselves.
//
// Start and End are byte offsets into the original text recorded before the
// chunk text is whitespace-trimmed, so End-Start may exceed len(Text). This
// matches the offsets downstream consumers already rely on.
type Chunk struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Index int    `json:"index"`
}

// SearchHit is a single result returned by a vector store, ordered by
// descending similarity score.
type SearchHit struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// AddMemoryRequest is the payload for storing new memory content.
type AddMemoryRequest struct {
	Content   string                 `json:"content" validate:"required"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	AgentName string                 `json:"agent_name,omitempty"`
}

// AddMemoryResponse reports the outcome of an add operation.
type AddMemoryResponse struct {
	MemoryIDs     []string `json:"memory_ids"`
	ChunksCreated int      `json:"chunks_created"`
}

// SearchMemoryRequest is the payload for a semantic similarity search.
type SearchMemoryRequest struct {
	Query          string                 `json:"query" validate:"required"`
	UserID         string                 `json:"user_id,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	AgentName      string                 `json:"agent_name,omitempty"`
	TopK           int                    `json:"top_k,omitempty" validate:"omitempty,gte=1,lte=100"`
	ScoreThreshold *float64               `json:"score_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

// SearchMemoryResult is a single ranked search result.
type SearchMemoryResult struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
	MemoryID string                 `json:"memory_id"`
}

// SearchMemoryResponse wraps ranked results with the original query echoed
// back to the caller.
type SearchMemoryResponse struct {
	Results []SearchMemoryResult `json:"results"`
	Query   string               `json:"query"`
}

// SessionMemoryRequest adds the transcript of a chat session to memory
// (ADK event compatibility).
type SessionMemoryRequest struct {
	SessionID string                   `json:"session_id" validate:"required"`
	UserID    string                   `json:"user_id" validate:"required"`
	Events    []map[string]interface{} `json:"events" validate:"required"`
	AppName   string                   `json:"app_name,omitempty"`
}

// DeleteMemoryResponse reports how many memory chunks a delete removed.
type DeleteMemoryResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	StoreConnected bool   `json:"store_connected"`
	Timestamp      string `json:"timestamp"`
}
