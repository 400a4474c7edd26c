package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// filtersFromRequest collects the optional filter parameters into the
// retrieval filter set.
func filtersFromRequest(request mcp.CallToolRequest) map[string][]string {
	filters := make(map[string][]string)
	if v := request.GetString("jurisdiction", ""); v != "" {
		filters[models.FilterJurisdiction] = []string{v}
	}
	if v := request.GetString("program", ""); v != "" {
		filters[models.FilterProgram] = []string{v}
	}
	if v := request.GetString("language", ""); v != "" {
		filters[models.FilterLanguage] = []string{v}
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

// handleAnswerQuestion implements the answer_question tool
func handleAnswerQuestion(answerService interfaces.AnswerService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: question parameter is required"),
				},
			}, nil
		}

		answer := answerService.AnswerQuestion(ctx, &interfaces.AnswerRequest{
			Question: question,
			Filters:  filtersFromRequest(request),
		})

		markdown := formatAnswer(answer)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleSearchDocuments implements the search_documents tool
func handleSearchDocuments(answerService interfaces.AnswerService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		limit := request.GetInt("limit", 10)
		if limit > 100 {
			limit = 100
		}

		docs, tier := answerService.Search(ctx, &interfaces.SearchRequest{
			Query:   query,
			Filters: filtersFromRequest(request),
			Limit:   limit,
		})

		markdown := formatSearchResults(query, tier, docs)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleGetDocument implements the get_document tool
func handleGetDocument(storage interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: document_id parameter is required"),
				},
			}, nil
		}

		doc, err := storage.GetDocument(docID)
		if err != nil {
			logger.Error().Err(err).Str("doc_id", docID).Msg("GetDocument failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Lookup error: %v", err)),
				},
			}, nil
		}
		if doc == nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Document not found: %s", docID)),
				},
			}, nil
		}

		markdown := formatDocument(doc)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}
