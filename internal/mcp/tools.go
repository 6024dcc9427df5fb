package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SessionId string `json:"session_id,omitempty" jsonschema:"conversation session to continue; a new session is created when omitted"`
	Message   string `json:"message" jsonschema:"the user question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	SessionId      string         `json:"session_id"`
	Answer         string         `json:"answer"`
	RewrittenQuery string         `json:"rewritten_query,omitempty"`
	Sources        []SourceOutput `json:"sources"`
	Degraded       bool           `json:"degraded"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the query to match against indexed document chunks"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results  []SourceOutput `json:"results"`
	Count    int            `json:"count"`
	Degraded bool           `json:"degraded"`
}

// SourceOutput is one scored chunk returned to the client.
type SourceOutput struct {
	ChunkId       string  `json:"chunk_id"`
	DocumentId    string  `json:"document_id"`
	SequenceIndex int     `json:"sequence_index"`
	Score         float64 `json:"score"`
	Content       string  `json:"content,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question against the indexed documents, with conversation memory",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the document chunks most relevant to a query",
	}, s.handleSearch)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	sessionId := input.SessionId
	if sessionId == "" {
		session, err := s.sessions.CreateSession(ctx)
		if err != nil {
			return nil, AskOutput{}, err
		}
		sessionId = session.Id
	}

	result, err := s.ragService.Answer(ctx, sessionId, input.Message)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		SessionId: result.SessionId,
		Answer:    result.Answer,
		Sources:   make([]SourceOutput, 0, len(result.Sources.Chunks)),
		Degraded:  result.Sources.Degraded,
	}
	if result.RewrittenQuery != input.Message {
		output.RewrittenQuery = result.RewrittenQuery
	}
	for _, c := range result.Sources.Chunks {
		output.Sources = append(output.Sources, SourceOutput{
			ChunkId:       c.ChunkId,
			DocumentId:    c.DocumentId,
			SequenceIndex: c.SequenceIndex,
			Score:         c.Score,
		})
	}
	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.retriever.Retrieve(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:  make([]SourceOutput, 0, len(result.Chunks)),
		Count:    len(result.Chunks),
		Degraded: result.Degraded,
	}
	for _, c := range result.Chunks {
		output.Results = append(output.Results, SourceOutput{
			ChunkId:       c.ChunkId,
			DocumentId:    c.DocumentId,
			SequenceIndex: c.SequenceIndex,
			Score:         c.Score,
			Content:       c.Text,
		})
	}
	return nil, output, nil
}
