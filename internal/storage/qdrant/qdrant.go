package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/models"
)

// contentKey is the reserved payload key holding the chunk text. Everything
// else in the payload is record metadata.
const contentKey = "content"

// identityFields get keyword payload indexes at collection creation so
// filtered search and delete do not fall back to full payload scans.
var identityFields = []string{"user_id", "session_id", "agent_name"}

// Store persists memory records in a Qdrant collection over its HTTP API.
type Store struct {
	logger     arbor.ILogger
	baseURL    string
	collection string
	apiKey     string
	dimensions int
	httpClient *http.Client
}

// NewStore creates a Qdrant-backed vector store. Call Initialize before use
// to ensure the collection exists.
func NewStore(logger arbor.ILogger, cfg common.QdrantConfig, dimensions int) *Store {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Store{
		logger:     logger,
		baseURL:    cfg.URL,
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Initialize creates the collection if it does not exist. Safe to call more
// than once.
func (s *Store) Initialize(ctx context.Context) error {
	status, _, err := s.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", s.collection), nil)
	if err != nil {
		return fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     s.dimensions,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body)
	if err != nil {
		return fmt.Errorf("qdrant collection creation failed: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("qdrant collection creation returned status %d: %s", status, respBody)
	}

	for _, field := range identityFields {
		if err := s.createPayloadIndex(ctx, field); err != nil {
			return err
		}
	}

	s.logger.Info().
		Str("collection", s.collection).
		Int("dimensions", s.dimensions).
		Msg("Qdrant collection created")
	return nil
}

func (s *Store) createPayloadIndex(ctx context.Context, field string) error {
	body := map[string]interface{}{
		"field_name":   field,
		"field_schema": "keyword",
	}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/index?wait=true", s.collection), body)
	if err != nil {
		return fmt.Errorf("qdrant payload index creation for %s failed: %w", field, err)
	}
	if status >= 300 {
		return fmt.Errorf("qdrant payload index creation for %s returned status %d: %s", field, status, respBody)
	}
	return nil
}

// Add upserts one point per document and returns the assigned ids in input
// order. Missing ids are generated.
func (s *Store) Add(ctx context.Context, vectors [][]float32, documents []string, metadata []map[string]interface{}, ids []string) ([]string, error) {
	if len(vectors) != len(documents) || len(metadata) != len(documents) {
		return nil, fmt.Errorf("mismatched input lengths: %d vectors, %d documents, %d metadata", len(vectors), len(documents), len(metadata))
	}

	assigned := make([]string, len(documents))
	points := make([]map[string]interface{}, len(documents))
	for i := range documents {
		id := ""
		if i < len(ids) {
			id = ids[i]
		}
		if id == "" {
			id = uuid.NewString()
		}
		assigned[i] = id

		payload := make(map[string]interface{}, len(metadata[i])+1)
		for k, v := range metadata[i] {
			payload[k] = v
		}
		payload[contentKey] = documents[i]

		points[i] = map[string]interface{}{
			"id":      id,
			"vector":  vectors[i],
			"payload": payload,
		}
	}

	body := map[string]interface{}{"points": points}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", s.collection), body)
	if err != nil {
		return nil, fmt.Errorf("qdrant upsert failed: %w", err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant upsert returned status %d: %s", status, respBody)
	}

	return assigned, nil
}

// Search runs a vector similarity query and returns hits ranked by
// descending score.
func (s *Store) Search(ctx context.Context, vector []float32, topK int, filters map[string]interface{}, scoreThreshold *float64) ([]models.SearchHit, error) {
	body := map[string]interface{}{
		"query":        vector,
		"limit":        topK,
		"with_payload": true,
	}
	if f := buildFilter(filters); f != nil {
		body["filter"] = f
	}
	if scoreThreshold != nil {
		body["score_threshold"] = *scoreThreshold
	}

	status, respBody, err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/query", s.collection), body)
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant query returned status %d: %s", status, respBody)
	}

	var out struct {
		Result struct {
			Points []struct {
				ID      interface{}            `json:"id"`
				Score   float64                `json:"score"`
				Payload map[string]interface{} `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("qdrant query response decode failed: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(out.Result.Points))
	for _, p := range out.Result.Points {
		content, _ := p.Payload[contentKey].(string)
		meta := make(map[string]interface{}, len(p.Payload))
		for k, v := range p.Payload {
			if k == contentKey {
				continue
			}
			meta[k] = v
		}
		hits = append(hits, models.SearchHit{
			ID:       fmt.Sprintf("%v", p.ID),
			Score:    p.Score,
			Content:  content,
			Metadata: meta,
		})
	}

	return hits, nil
}

// Delete removes points by id or by equality filter and returns the number
// removed. A filter matching nothing yields zero.
func (s *Store) Delete(ctx context.Context, ids []string, filters map[string]interface{}) (int, error) {
	if len(ids) == 0 && len(filters) == 0 {
		return 0, fmt.Errorf("delete requires ids or filters")
	}

	var count int
	var body map[string]interface{}

	if len(ids) > 0 {
		count = len(ids)
		points := make([]interface{}, len(ids))
		for i, id := range ids {
			points[i] = id
		}
		body = map[string]interface{}{"points": points}
	} else {
		// Qdrant's delete endpoint does not report how many points matched,
		// so count them first with an exact count query.
		matched, err := s.count(ctx, filters)
		if err != nil {
			return 0, err
		}
		count = matched
		body = map[string]interface{}{"filter": buildFilter(filters)}
	}

	status, respBody, err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection), body)
	if err != nil {
		return 0, fmt.Errorf("qdrant delete failed: %w", err)
	}
	if status >= 300 {
		return 0, fmt.Errorf("qdrant delete returned status %d: %s", status, respBody)
	}

	return count, nil
}

// HealthCheck reports whether the Qdrant instance responds.
func (s *Store) HealthCheck(ctx context.Context) bool {
	status, _, err := s.do(ctx, http.MethodGet, "/healthz", nil)
	return err == nil && status == http.StatusOK
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *Store) count(ctx context.Context, filters map[string]interface{}) (int, error) {
	body := map[string]interface{}{"exact": true}
	if f := buildFilter(filters); f != nil {
		body["filter"] = f
	}

	status, respBody, err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", s.collection), body)
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	if status >= 300 {
		return 0, fmt.Errorf("qdrant count returned status %d: %s", status, respBody)
	}

	var out struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("qdrant count response decode failed: %w", err)
	}

	return out.Result.Count, nil
}

// buildFilter converts a flat equality map into a Qdrant must-match filter.
func buildFilter(filters map[string]interface{}) map[string]interface{} {
	if len(filters) == 0 {
		return nil
	}

	must := make([]map[string]interface{}, 0, len(filters))
	for key, value := range filters {
		must = append(must, map[string]interface{}{
			"key":   key,
			"match": map[string]interface{}{"value": value},
		})
	}
	return map[string]interface{}{"must": must}
}

func (s *Store) do(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("request encoding failed: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, respBody, nil
}
