package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/pdfindex/internal/indexer"
	"github.com/dshills/pdfindex/internal/storage"
	"github.com/dshills/pdfindex/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotFound           = -32003 // Collection does not exist
	ErrorCodeCollectionExists   = -32005 // Collection name already taken
)

// handleBuildIndex handles the build_index tool invocation
func (s *Server) handleBuildIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	cfg := s.indexer.Config()
	cfg.PDFFolder = getStringDefault(args, "pdf_folder", cfg.PDFFolder)
	cfg.CollectionName = getStringDefault(args, "collection", cfg.CollectionName)
	cfg.ChunkSize = getIntDefault(args, "chunk_size", cfg.ChunkSize)

	if err := cfg.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid parameters", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	stats, err := s.indexer.RunWithConfig(ctx, &cfg)
	switch {
	case errors.Is(err, indexer.ErrIndexingInProgress):
		building, _ := s.indexer.Building()
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing in progress", map[string]interface{}{
			"collection": building,
		})
	case errors.Is(err, types.ErrCollectionExists):
		return nil, newMCPError(ErrorCodeCollectionExists, "collection already exists", map[string]interface{}{
			"collection": cfg.CollectionName,
		})
	case errors.Is(err, types.ErrFileSystem):
		return nil, newMCPError(ErrorCodeInvalidParams, "cannot read pdf folder", map[string]interface{}{
			"param": "pdf_folder",
			"error": err.Error(),
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":             true,
		"collection":          stats.Collection,
		"files_processed":     stats.FilesProcessed,
		"pages_processed":     stats.PagesProcessed,
		"empty_pages":         stats.EmptyPages,
		"chunks_created":      stats.ChunksCreated,
		"embedding_dimension": stats.EmbeddingDimension,
		"outputs":             stats.Outputs,
		"duration_ms":         stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCollectionStatus handles the collection_status tool invocation
func (s *Server) handleCollectionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	name := getStringDefault(args, "collection", "")
	if name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "collection parameter is required", map[string]interface{}{
			"param":  "collection",
			"reason": "missing or empty",
		})
	}

	coll, err := s.indexer.Store().GetCollection(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "collection not found", map[string]interface{}{
			"collection": name,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get collection", map[string]interface{}{
			"error": err.Error(),
		})
	}

	count, err := coll.Count(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count records", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"collection": name,
		"records":    count,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// arguments returns the tool arguments; a call without arguments yields an empty map
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// the framework encodes returned errors as JSON-RPC errors
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}
