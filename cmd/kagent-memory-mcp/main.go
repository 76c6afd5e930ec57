package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/cdekimpe/kagent-memory/internal/app"
	"github.com/cdekimpe/kagent-memory/internal/common"
)

func main() {
	// Load configuration
	configPath := os.Getenv("KAGENT_MEMORY_CONFIG")
	if configPath == "" {
		configPath = "kagent-memory.toml"
	}
	if _, err := os.Stat(configPath); err != nil {
		// No config file is fine; defaults plus env variables apply.
		configPath = ""
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logger for MCP server (console only, no file output) to avoid
	// cluttering MCP stdio.
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(context.Background(), config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"kagent-memory",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register memory tools
	mcpServer.AddTool(createAddMemoryTool(), handleAddMemory(application.MemoryService, logger))
	mcpServer.AddTool(createSearchMemoryTool(), handleSearchMemory(application.MemoryService, logger))
	mcpServer.AddTool(createDeleteMemoriesTool(), handleDeleteMemories(application.MemoryService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
