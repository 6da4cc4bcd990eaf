// Package storage loads embedded chunks into named vector store collections.
//
// Three backends implement Store:
//   - SQLiteStore: a persistent database file (the default)
//   - MemoryStore: process memory, gone when the process exits
//   - ChromaStore: a Chroma server, through the chroma-go v2 API client
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migrations, compared as semantic versions
//   - collections: one row per name, with the embedding dimension fixed by the first Add
//   - records: id (UUID), document, pdf, page and the embedding as little-endian float32s
//
// # Basic Usage
//
//	store, err := storage.Open(ctx, storage.Options{Backend: "sqlite", DBPath: "pdfindex.db"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	coll, err := store.CreateCollection(ctx, "pdf_docs")
//	if errors.Is(err, types.ErrCollectionExists) {
//	    // names are never reused; delete the old collection first
//	}
//
//	err = coll.Add(ctx, texts, metadatas, vectors)
//
// Add validates its input before storing anything. On SQLite the records
// are inserted in one transaction, so a failed insert leaves the collection
// unchanged.
//
// # Build Modes
//
// The default build uses modernc.org/sqlite (pure Go). Building with
// -tags sqlite_vec switches to github.com/mattn/go-sqlite3, which needs CGO.
package storage
