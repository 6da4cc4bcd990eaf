package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/pdfindex/internal/config"
	"github.com/dshills/pdfindex/internal/embedder"
	"github.com/dshills/pdfindex/internal/logger"
	"github.com/dshills/pdfindex/internal/storage"
)

// Open builds an Indexer from cfg: it opens the configured store and
// embedding provider. Close releases both.
func Open(ctx context.Context, cfg *config.Config) (*Indexer, error) {
	store, err := storage.Open(ctx, storage.Options{
		Backend:   cfg.Store,
		DBPath:    cfg.DBPath,
		ChromaURL: cfg.ChromaURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.EmbeddingProvider,
		CacheSize: embedder.DefaultCacheSize,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	logger.Info("indexer ready",
		"store", cfg.Store,
		"provider", emb.Provider(),
		"model", emb.Model(),
		"dimension", emb.Dimension())
	return New(store, emb, cfg), nil
}

// Store returns the vector store the indexer loads into
func (idx *Indexer) Store() storage.Store {
	return idx.store
}

// Close releases the embedder and the store
func (idx *Indexer) Close() error {
	return errors.Join(idx.embedder.Close(), idx.store.Close())
}
