package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAddMemoryTool returns the memory_add tool definition
func createAddMemoryTool() mcp.Tool {
	return mcp.NewTool("memory_add",
		mcp.WithDescription("Store text as a long-term memory. Content is chunked, embedded, and persisted for later semantic retrieval."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The text to remember"),
		),
		mcp.WithString("user_id",
			mcp.Description("User the memory belongs to"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session the memory originated from"),
		),
		mcp.WithString("agent_name",
			mcp.Description("Agent that produced the memory"),
		),
	)
}

// createSearchMemoryTool returns the memory_search tool definition
func createSearchMemoryTool() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription("Search stored memories by semantic similarity"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language search query"),
		),
		mcp.WithString("user_id",
			mcp.Description("Restrict results to one user"),
		),
		mcp.WithString("session_id",
			mcp.Description("Restrict results to one session"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum results to return (default: 10, max: 100)"),
		),
	)
}

// createDeleteMemoriesTool returns the memory_delete tool definition
func createDeleteMemoriesTool() mcp.Tool {
	return mcp.NewTool("memory_delete",
		mcp.WithDescription("Delete all memories for a user, optionally narrowed to a session or agent"),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User whose memories to delete"),
		),
		mcp.WithString("session_id",
			mcp.Description("Only delete memories from this session"),
		),
		mcp.WithString("agent_name",
			mcp.Description("Only delete memories created by this agent"),
		),
	)
}
