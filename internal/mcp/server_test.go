package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pdfindex/internal/config"
	"github.com/dshills/pdfindex/internal/embedder"
	"github.com/dshills/pdfindex/internal/indexer"
	"github.com/dshills/pdfindex/internal/logger"
	"github.com/dshills/pdfindex/internal/storage"
	"github.com/dshills/pdfindex/internal/testutil"
)

func TestMain(m *testing.M) {
	logger.Init(io.Discard, "error")
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	pdfDir := filepath.Join(root, "pdfs")
	require.NoError(t, os.MkdirAll(pdfDir, 0o755))

	cfg := config.Default()
	cfg.PDFFolder = pdfDir
	cfg.JSONOut = filepath.Join(root, "chunks.json")
	cfg.CSVOut = filepath.Join(root, "chunks.csv")
	cfg.Store = config.StoreMemory

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	idx := indexer.New(storage.NewMemoryStore(), emb, cfg)
	t.Cleanup(func() { _ = idx.Close() })

	return NewServer(idx), pdfDir
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args != nil {
		req.Params.Arguments = args
	}
	return req
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireMCPError(t *testing.T, err error, code int) *MCPError {
	t.Helper()
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected MCPError, got %T", err)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.indexer)
}

// closeRecorder notes whether the indexer released its store
type closeRecorder struct {
	storage.Store
	closed atomic.Bool
}

func (c *closeRecorder) Close() error {
	c.closed.Store(true)
	return c.Store.Close()
}

func TestServeStopsOnCancel(t *testing.T) {
	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	store := &closeRecorder{Store: storage.NewMemoryStore()}
	s := NewServer(indexer.New(store, emb, config.Default()))

	// a client that never sends anything
	in, _ := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, in, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.True(t, store.closed.Load(), "indexer closed on shutdown")
}

func TestToolSchemas(t *testing.T) {
	build := buildIndexTool()
	assert.Equal(t, "build_index", build.Name)
	assert.Empty(t, build.InputSchema.Required)
	assert.Contains(t, build.InputSchema.Properties, "pdf_folder")
	assert.Contains(t, build.InputSchema.Properties, "collection")
	assert.Contains(t, build.InputSchema.Properties, "chunk_size")

	status := collectionStatusTool()
	assert.Equal(t, "collection_status", status.Name)
	assert.Equal(t, []string{"collection"}, status.InputSchema.Required)
}

func TestHandleBuildIndex(t *testing.T) {
	ctx := context.Background()
	s, pdfDir := newTestServer(t)
	testutil.WritePDF(t, pdfDir, "a.pdf", testutil.Words(650))

	result, err := s.handleBuildIndex(ctx, callRequest(nil))
	require.NoError(t, err)

	out := decodeResult(t, result)
	assert.Equal(t, true, out["indexed"])
	assert.Equal(t, config.DefaultCollectionName, out["collection"])
	assert.Equal(t, float64(1), out["files_processed"])
	assert.Equal(t, float64(1), out["pages_processed"])
	assert.Equal(t, float64(3), out["chunks_created"])
	assert.Equal(t, float64(embedder.LocalDimension), out["embedding_dimension"])
	assert.Contains(t, out, "duration_ms")

	status, err := s.handleCollectionStatus(ctx, callRequest(map[string]interface{}{
		"collection": config.DefaultCollectionName,
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(3), decodeResult(t, status)["records"])
}

func TestHandleBuildIndexOverrides(t *testing.T) {
	ctx := context.Background()
	s, pdfDir := newTestServer(t)
	testutil.WritePDF(t, pdfDir, "a.pdf", testutil.Words(100))

	result, err := s.handleBuildIndex(ctx, callRequest(map[string]interface{}{
		"collection": "custom",
		"chunk_size": float64(10),
	}))
	require.NoError(t, err)

	out := decodeResult(t, result)
	assert.Equal(t, "custom", out["collection"])
	assert.Equal(t, float64(10), out["chunks_created"])

	// server defaults are untouched by per-call overrides
	assert.Equal(t, config.DefaultChunkSize, s.indexer.Config().ChunkSize)
	assert.Equal(t, config.DefaultCollectionName, s.indexer.Config().CollectionName)
}

func TestHandleBuildIndexErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid chunk size", func(t *testing.T) {
		s, _ := newTestServer(t)
		_, err := s.handleBuildIndex(ctx, callRequest(map[string]interface{}{
			"chunk_size": float64(0),
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("missing folder", func(t *testing.T) {
		s, pdfDir := newTestServer(t)
		_, err := s.handleBuildIndex(ctx, callRequest(map[string]interface{}{
			"pdf_folder": filepath.Join(pdfDir, "missing"),
		}))
		mcpErr := requireMCPError(t, err, ErrorCodeInvalidParams)
		assert.Equal(t, "pdf_folder", mcpErr.Data.(map[string]interface{})["param"])
	})

	t.Run("collection exists", func(t *testing.T) {
		s, pdfDir := newTestServer(t)
		testutil.WritePDF(t, pdfDir, "a.pdf", testutil.Words(20))
		_, err := s.handleBuildIndex(ctx, callRequest(nil))
		require.NoError(t, err)

		_, err = s.handleBuildIndex(ctx, callRequest(nil))
		requireMCPError(t, err, ErrorCodeCollectionExists)
	})

	t.Run("extraction failure", func(t *testing.T) {
		s, pdfDir := newTestServer(t)
		require.NoError(t, os.WriteFile(filepath.Join(pdfDir, "broken.pdf"), []byte("not a pdf"), 0o644))
		_, err := s.handleBuildIndex(ctx, callRequest(nil))
		requireMCPError(t, err, ErrorCodeInternalError)
	})

}

func TestHandleCollectionStatus(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t)

	_, err := s.handleCollectionStatus(ctx, callRequest(nil))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = s.handleCollectionStatus(ctx, callRequest(map[string]interface{}{
		"collection": "nope",
	}))
	requireMCPError(t, err, ErrorCodeNotFound)
}

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{"f": float64(7), "i": 3, "s": "x"}
	assert.Equal(t, 7, getIntDefault(args, "f", 1))
	assert.Equal(t, 3, getIntDefault(args, "i", 1))
	assert.Equal(t, 1, getIntDefault(args, "s", 1))
	assert.Equal(t, 1, getIntDefault(args, "missing", 1))
}

func TestGetStringDefault(t *testing.T) {
	args := map[string]interface{}{"s": "value", "empty": "", "n": 1}
	assert.Equal(t, "value", getStringDefault(args, "s", "d"))
	assert.Equal(t, "d", getStringDefault(args, "empty", "d"))
	assert.Equal(t, "d", getStringDefault(args, "n", "d"))
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeNotFound, "collection not found", nil)
	assert.Equal(t, "MCP error -32003: collection not found", err.Error())
}
