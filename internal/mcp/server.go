package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/pdfindex/internal/indexer"
	"github.com/dshills/pdfindex/internal/logger"
)

const (
	// ServerName is the MCP server name
	ServerName = "pdfindex-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the indexing pipeline as MCP tools
type Server struct {
	mcp     *server.MCPServer
	indexer *indexer.Indexer
}

// NewServer creates an MCP server around idx. Serve closes idx on return.
func NewServer(idx *indexer.Indexer) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		indexer: idx,
	}
	s.registerTools()
	return s
}

// Serve answers MCP requests on stdio until the client disconnects or ctx
// is cancelled. Cancellation is a clean shutdown and returns nil.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	defer func() {
		if err := s.indexer.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(buildIndexTool(), s.handleBuildIndex)
	s.mcp.AddTool(collectionStatusTool(), s.handleCollectionStatus)
}
