package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/internal/rag/retrieve"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "0.1.0"

// Server exposes ask and search as MCP tools so agent clients can use
// the document corpus without going through the HTTP API.
type Server struct {
	ragService rag.Service
	retriever  retrieve.Retriever
	sessions   sessionModel.SessionStore
	server     *mcp.Server
	logger     *logger_i.Logger
}

func NewServer(ragService rag.Service, retriever retrieve.Retriever, sessions sessionModel.SessionStore) *Server {
	impl := &mcp.Implementation{
		Name:    "docqa",
		Version: Version,
	}

	s := &Server{
		ragService: ragService,
		retriever:  retriever,
		sessions:   sessions,
		server:     mcp.NewServer(impl, nil),
		logger:     logger_i.NewLogger("MCP Server"),
	}

	s.registerTools()

	return s
}

// RunHTTP serves the MCP endpoint until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down MCP server")
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	s.logger.Info("MCP server is listening at", "address", addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
