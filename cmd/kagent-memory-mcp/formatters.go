package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cdekimpe/kagent-memory/internal/models"
)

// formatAddResult formats an add-memory outcome as a short status line
func formatAddResult(resp *models.AddMemoryResponse) string {
	if resp.ChunksCreated == 0 {
		return "Nothing to store: content was empty."
	}
	return fmt.Sprintf("Stored %d memory chunks (ids: %s)", resp.ChunksCreated, strings.Join(resp.MemoryIDs, ", "))
}

// formatSearchResults formats search results as markdown
func formatSearchResults(resp *models.SearchMemoryResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Memories matching \"%s\" (%d results)\n\n", resp.Query, len(resp.Results)))

	if len(resp.Results) == 0 {
		sb.WriteString("No matching memories found.\n")
		return sb.String()
	}

	for i, result := range resp.Results {
		sb.WriteString(fmt.Sprintf("### %d. Score %.3f\n", i+1, result.Score))
		sb.WriteString(result.Content)
		sb.WriteString("\n\n")

		if len(result.Metadata) > 0 {
			metadataJSON, _ := json.MarshalIndent(result.Metadata, "", "  ")
			sb.WriteString(fmt.Sprintf("**Metadata:** %s\n", string(metadataJSON)))
		}
		sb.WriteString("\n---\n\n")
	}

	return sb.String()
}
