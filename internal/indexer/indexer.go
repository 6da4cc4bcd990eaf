package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dshills/pdfindex/internal/chunker"
	"github.com/dshills/pdfindex/internal/config"
	"github.com/dshills/pdfindex/internal/embedder"
	"github.com/dshills/pdfindex/internal/extractor"
	"github.com/dshills/pdfindex/internal/logger"
	"github.com/dshills/pdfindex/internal/scanner"
	"github.com/dshills/pdfindex/internal/serializer"
	"github.com/dshills/pdfindex/internal/storage"
	"github.com/dshills/pdfindex/pkg/types"
)

// ErrIndexingInProgress is returned when a run is requested while another is active
var ErrIndexingInProgress = errors.New("indexing already in progress")

// Indexer runs the pipeline: scan -> extract -> chunk -> serialize -> embed -> load
type Indexer struct {
	store    storage.Store
	embedder embedder.Embedder
	cfg      config.Config
	guard    runGuard
}

// Statistics summarises one run
type Statistics struct {
	FilesProcessed     int           `json:"files_processed"`
	PagesProcessed     int           `json:"pages_processed"`
	EmptyPages         int           `json:"empty_pages"`
	ChunksCreated      int           `json:"chunks_created"`
	EmbeddingDimension int           `json:"embedding_dimension"`
	Collection         string        `json:"collection"`
	Outputs            []string      `json:"outputs"`
	Duration           time.Duration `json:"-"`
}

// New creates an Indexer. cfg is copied; later changes to it have no effect.
func New(store storage.Store, emb embedder.Embedder, cfg *config.Config) *Indexer {
	return &Indexer{
		store:    store,
		embedder: emb,
		cfg:      *cfg,
	}
}

// Config returns a copy of the configuration the indexer was built with
func (idx *Indexer) Config() config.Config {
	return idx.cfg
}

// Run executes the whole pipeline with the indexer's configuration
func (idx *Indexer) Run(ctx context.Context) (*Statistics, error) {
	return idx.RunWithConfig(ctx, &idx.cfg)
}

// RunWithConfig executes the whole pipeline with cfg in place of the
// indexer's own configuration. Only one run may be active at a time.
func (idx *Indexer) RunWithConfig(ctx context.Context, cfg *config.Config) (*Statistics, error) {
	if !idx.guard.begin(cfg.CollectionName) {
		building, _ := idx.guard.active()
		return nil, fmt.Errorf("%w: building collection %q", ErrIndexingInProgress, building)
	}
	defer idx.guard.end()

	start := time.Now()
	stats := &Statistics{Collection: cfg.CollectionName}

	chunks, err := idx.buildChunks(ctx, cfg.PDFFolder, chunker.New(cfg.ChunkSize), stats)
	if err != nil {
		return nil, err
	}

	if err := idx.writeOutputs(cfg, chunks, stats); err != nil {
		return nil, err
	}

	texts := types.Texts(chunks)
	vectors, err := embedder.EmbedAll(ctx, idx.embedder, texts, cfg.EmbeddingBatch, func(done, total int) {
		logger.Info("embedding batch", "done", done, "total", total)
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) > 0 {
		stats.EmbeddingDimension = len(vectors[0])
	}

	if err := idx.load(ctx, cfg.CollectionName, texts, types.Metadatas(chunks), vectors); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	logger.Info("indexing complete",
		"files", stats.FilesProcessed,
		"pages", stats.PagesProcessed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)
	return stats, nil
}

// Building reports the collection of the run in progress, if any
func (idx *Indexer) Building() (string, bool) {
	return idx.guard.active()
}

// BuildChunks scans dir and returns the chunks of every PDF in it, in
// listing order, then page order, then word order
func (idx *Indexer) BuildChunks(ctx context.Context, dir string) ([]*types.Chunk, error) {
	return idx.buildChunks(ctx, dir, chunker.New(idx.cfg.ChunkSize), &Statistics{})
}

func (idx *Indexer) buildChunks(ctx context.Context, dir string, ch *chunker.Chunker, stats *Statistics) ([]*types.Chunk, error) {
	names, err := scanner.Scan(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("found pdf files", "dir", dir, "count", len(names))

	chunks := []*types.Chunk{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Info("processing file", "file", name)
		fileChunks, err := chunkFile(filepath.Join(dir, name), name, ch, stats)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, fileChunks...)
		stats.FilesProcessed++
	}

	stats.ChunksCreated = len(chunks)
	return chunks, nil
}

// chunkFile extracts and chunks one PDF. name is recorded as the chunk source.
func chunkFile(path, name string, ch *chunker.Chunker, stats *Statistics) ([]*types.Chunk, error) {
	doc, err := extractor.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Close() }()

	var chunks []*types.Chunk
	for page, err := range doc.Pages() {
		if err != nil {
			return nil, err
		}
		stats.PagesProcessed++

		pageChunks := ch.ChunkPage(page.Text, name, page.Number)
		if len(pageChunks) == 0 {
			stats.EmptyPages++
			logger.Debug("empty page", "file", name, "page", page.Number)
			continue
		}
		chunks = append(chunks, pageChunks...)
	}
	return chunks, nil
}

func (idx *Indexer) writeOutputs(cfg *config.Config, chunks []*types.Chunk, stats *Statistics) error {
	if err := serializer.WriteJSON(cfg.JSONOut, chunks); err != nil {
		return err
	}
	logger.Info("wrote json", "path", cfg.JSONOut, "chunks", len(chunks))
	stats.Outputs = append(stats.Outputs, cfg.JSONOut)

	if err := serializer.WriteCSV(cfg.CSVOut, chunks); err != nil {
		return err
	}
	logger.Info("wrote csv", "path", cfg.CSVOut, "chunks", len(chunks))
	stats.Outputs = append(stats.Outputs, cfg.CSVOut)

	if cfg.XLSXOut != "" {
		if err := serializer.WriteXLSX(cfg.XLSXOut, chunks); err != nil {
			return err
		}
		logger.Info("wrote xlsx", "path", cfg.XLSXOut, "chunks", len(chunks))
		stats.Outputs = append(stats.Outputs, cfg.XLSXOut)
	}
	return nil
}

// load creates the collection and adds every record in one call. An empty
// chunk set still creates the (empty) collection.
func (idx *Indexer) load(ctx context.Context, name string, texts []string, metas []types.Metadata, vectors [][]float32) error {
	coll, err := idx.store.CreateCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	if len(texts) > 0 {
		if err := coll.Add(ctx, texts, metas, vectors); err != nil {
			return fmt.Errorf("add records to %s: %w", name, err)
		}
	}

	logger.Info("collection loaded", "collection", name, "records", len(texts))
	return nil
}
