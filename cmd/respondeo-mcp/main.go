package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/respondeo/internal/app"
	"github.com/ternarybob/respondeo/internal/common"
)

func main() {
	// Load configuration
	configPath := os.Getenv("RESPONDEO_CONFIG")
	if configPath == "" {
		configPath = "respondeo.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logger for MCP (console only, warn level) to keep stdio clean
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"respondeo",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register tools
	mcpServer.AddTool(createAnswerQuestionTool(), handleAnswerQuestion(application.AnswerService, logger))
	mcpServer.AddTool(createSearchDocumentsTool(), handleSearchDocuments(application.AnswerService, logger))
	mcpServer.AddTool(createGetDocumentTool(), handleGetDocument(application.StorageManager.DocumentStorage(), logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
