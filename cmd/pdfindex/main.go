// Command pdfindex extracts every PDF in a folder, writes the page chunks
// to JSON and CSV, and loads their embeddings into a vector store collection.
//
// The default sqlite store persists in PDFINDEX_DB_PATH, so running again
// with the same CHROMA_COLLECTION_NAME fails with "collection already
// exists" once the outputs are written and the chunks embedded. Pick a new
// collection name, delete the database file, or set PDFINDEX_STORE=memory
// for a throwaway index that can be rebuilt on every run.
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
	"github.com/dshills/pdfindex/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("pdfindex\n")
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
	logger.Init(os.Stderr, cfg.LogLevel)

	if err := run(cfg); err != nil {
		logger.Error("indexing failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn("received signal, cancelling", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("pdfindex starting",
		"version", version,
		"store", cfg.Store,
		"build_mode", storage.BuildMode)

	idx, err := indexer.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			logger.Warn("close failed", "error", cerr)
		}
	}()

	stats, err := idx.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks from %d files into collection %q\n",
		stats.ChunksCreated, stats.FilesProcessed, stats.Collection)
	return nil
}
