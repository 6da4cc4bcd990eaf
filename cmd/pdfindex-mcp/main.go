// Command pdfindex-mcp serves the indexing pipeline as MCP tools over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/pdfindex/internal/config"
	"github.com/dshills/pdfindex/internal/indexer"
	"github.com/dshills/pdfindex/internal/logger"
	"github.com/dshills/pdfindex/internal/mcp"
	"github.com/dshills/pdfindex/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("pdfindex MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// stdout is reserved for the MCP protocol
	logger.Init(os.Stderr, cfg.LogLevel)
	logger.Info("pdfindex MCP server starting",
		"version", version,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idx, err := indexer.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open indexer", "error", err)
		os.Exit(1)
	}
	server := mcp.NewServer(idx)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		// Serve closes the indexer before it returns
		if err := <-errChan; err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
