// Package indexer coordinates the end-to-end pipeline that turns a folder of
// PDFs into a vector store collection.
//
// # Basic Usage
//
//	idx := indexer.New(store, emb, cfg)
//
//	stats, err := idx.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d chunks from %d files in %v\n", stats.ChunksCreated, stats.FilesProcessed, stats.Duration)
//
// # Indexing Pipeline
//
// The stages run strictly one after another:
//
//  1. Scan: list *.pdf entries of the input folder in directory order
//  2. Extract & Chunk: per page text, split into fixed-size word windows
//  3. Serialize: write the chunks as JSON, CSV and optionally XLSX
//  4. Embed: one vector per chunk, in batches, order preserved
//  5. Load: create the collection and add every record in one call
//
// Pages without text yield no chunks and processing continues. Any other
// failure aborts the run; output files already written are left in place.
// Errors keep their class from pkg/types, so callers can test them with
// errors.Is (types.ErrFileSystem, types.ErrExtraction, types.ErrWrite,
// types.ErrEmbedding, types.ErrCollectionExists).
//
// # Concurrency
//
// An Indexer serves one run at a time. A concurrent Run or RunWithConfig
// returns ErrIndexingInProgress immediately.
package indexer
