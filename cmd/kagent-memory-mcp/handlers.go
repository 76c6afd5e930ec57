package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/interfaces"
	"github.com/cdekimpe/kagent-memory/internal/models"
)

// handleAddMemory implements the memory_add tool
func handleAddMemory(memoryService interfaces.MemoryService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil || content == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: content parameter is required"),
				},
			}, nil
		}

		userID := request.GetString("user_id", "")
		sessionID := request.GetString("session_id", "")
		agentName := request.GetString("agent_name", "")

		resp, err := memoryService.AddMemory(ctx, content, nil, userID, sessionID, agentName)
		if err != nil {
			logger.Error().Err(err).Msg("Add memory failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Add memory error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatAddResult(resp)),
			},
		}, nil
	}
}

// handleSearchMemory implements the memory_search tool
func handleSearchMemory(memoryService interfaces.MemoryService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		topK := request.GetInt("top_k", 10)
		if topK > 100 {
			topK = 100
		}

		resp, err := memoryService.SearchMemory(ctx, &models.SearchMemoryRequest{
			Query:     query,
			UserID:    request.GetString("user_id", ""),
			SessionID: request.GetString("session_id", ""),
			TopK:      topK,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Search memory failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Search error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatSearchResults(resp)),
			},
		}, nil
	}
}

// handleDeleteMemories implements the memory_delete tool
func handleDeleteMemories(memoryService interfaces.MemoryService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := request.RequireString("user_id")
		if err != nil || userID == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: user_id parameter is required"),
				},
			}, nil
		}

		count, err := memoryService.DeleteMemories(ctx,
			userID,
			request.GetString("session_id", ""),
			request.GetString("agent_name", ""),
		)
		if err != nil {
			logger.Error().Err(err).Msg("Delete memories failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Delete error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Deleted %d memories for user %s", count, userID)),
			},
		}, nil
	}
}
