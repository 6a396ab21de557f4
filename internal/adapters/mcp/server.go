// Package mcpadapter exposes the answer pipeline as a Model Context Protocol
// tool so external agents can query the document base over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

const serverName = "support-rag-bot"

type Server struct {
	chat ports.ChatService
	mcp  *server.MCPServer
}

func NewServer(chat ports.ChatService, version string) *Server {
	s := &Server{chat: chat}

	srv := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	srv.AddTool(askDocumentsTool(), s.handleAskDocuments)

	s.mcp = srv
	return s
}

// ServeStdio blocks until stdin is closed or the process is signalled.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func askDocumentsTool() mcp.Tool {
	return mcp.NewTool("ask_documents",
		mcp.WithDescription("Answer a support question using the indexed document base. Returns the answer text and the source documents it was grounded on."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user question, in any supported language."),
		),
		mcp.WithString("language",
			mcp.Description("BCP-47 language code of the query, e.g. 'en' or 'es'. Defaults to 'en'."),
		),
		mcp.WithString("bot_id",
			mcp.Description("Optional bot identifier restricting retrieval to that bot's documents."),
		),
	)
}

type askDocumentsResult struct {
	Answer  string                  `json:"answer"`
	Sources []domain.SourceCitation `json:"sources"`
}

func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	language := request.GetString("language", "en")
	botID := request.GetString("bot_id", "")

	answer, err := s.chat.Answer(ctx, domain.Query{Text: query, Language: language, BotID: botID})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("answer query: %w", err)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.SourceCitation{}
	}
	payload, err := json.Marshal(askDocumentsResult{Answer: answer.Text, Sources: sources})
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
