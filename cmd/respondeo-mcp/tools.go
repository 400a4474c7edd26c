package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAnswerQuestionTool returns the answer_question tool definition
func createAnswerQuestionTool() mcp.Tool {
	return mcp.NewTool("answer_question",
		mcp.WithDescription("Answer a legal or regulatory question using tiered retrieval and grounded generation with citations"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer (natural language)"),
		),
		mcp.WithString("jurisdiction",
			mcp.Description("Restrict retrieval to a jurisdiction code, e.g. 'on', 'federal'"),
		),
		mcp.WithString("program",
			mcp.Description("Restrict retrieval to a program code, e.g. 'ei', 'parental_leave'"),
		),
		mcp.WithString("language",
			mcp.Description("Restrict retrieval to a language code: 'en' or 'fr'"),
		),
	)
}

// createSearchDocumentsTool returns the search_documents tool definition
func createSearchDocumentsTool() mcp.Tool {
	return mcp.NewTool("search_documents",
		mcp.WithDescription("Search the document corpus through the retrieval tiers without generating an answer"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (natural language)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 10, max: 100)"),
		),
		mcp.WithString("jurisdiction",
			mcp.Description("Restrict retrieval to a jurisdiction code"),
		),
		mcp.WithString("program",
			mcp.Description("Restrict retrieval to a program code"),
		),
	)
}

// createGetDocumentTool returns the get_document tool definition
func createGetDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Retrieve a single document by its unique ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID (format: doc_{uuid})"),
		),
	)
}
