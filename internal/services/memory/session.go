package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/cdekimpe/kagent-memory/internal/models"
)

// AddSessionToMemory converts conversation events into one text block and
// stores it as a memory tagged with source=session. Events that carry no
// extractable text are skipped silently; an empty session is a valid no-op.
func (s *Service) AddSessionToMemory(ctx context.Context, sessionID, userID string, events []map[string]interface{}, appName string) (*models.AddMemoryResponse, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	lines := extractSessionLines(events)
	if len(lines) == 0 {
		return &models.AddMemoryResponse{MemoryIDs: []string{}, ChunksCreated: 0}, nil
	}

	content := strings.Join(lines, "\n")
	metadata := map[string]interface{}{"source": "session"}

	return s.AddMemory(ctx, content, metadata, userID, sessionID, appName)
}

// extractSessionLines flattens events into "author: text" lines. An event's
// content may be a plain string or a structured map with a parts list, where
// each part is either a plain string or a map holding a text key.
func extractSessionLines(events []map[string]interface{}) []string {
	var lines []string
	for _, event := range events {
		author := "unknown"
		if a, ok := event["author"].(string); ok && a != "" {
			author = a
		}

		switch content := event["content"].(type) {
		case string:
			lines = append(lines, fmt.Sprintf("%s: %s", author, content))
		case map[string]interface{}:
			parts, ok := content["parts"].([]interface{})
			if !ok {
				continue
			}
			for _, part := range parts {
				switch p := part.(type) {
				case string:
					lines = append(lines, fmt.Sprintf("%s: %s", author, p))
				case map[string]interface{}:
					if text, ok := p["text"].(string); ok {
						lines = append(lines, fmt.Sprintf("%s: %s", author, text))
					}
				}
			}
		}
	}
	return lines
}
