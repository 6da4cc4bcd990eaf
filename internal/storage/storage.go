package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/pdfindex/pkg/types"
)

var (
	// ErrNotFound is returned when a requested collection doesn't exist
	ErrNotFound = errors.New("collection not found")
	// ErrCollectionExists is returned when creating a collection whose name
	// is taken
	ErrCollectionExists = types.ErrCollectionExists
	// ErrInvalidRecords is returned when Add receives inconsistent input
	ErrInvalidRecords = errors.New("invalid records")
	// ErrInvalidName is returned for a blank collection name
	ErrInvalidName = errors.New("collection name is required")
)

// Backends accepted by Open
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendChroma = "chroma"
)

// Store holds named collections of embedded documents
type Store interface {
	// CreateCollection creates an empty collection. An existing name fails
	// with ErrCollectionExists; collections are never merged or overwritten.
	CreateCollection(ctx context.Context, name string) (Collection, error)
	GetCollection(ctx context.Context, name string) (Collection, error)
	DeleteCollection(ctx context.Context, name string) error
	ListCollections(ctx context.Context) ([]string, error)
	Close() error
}

// Collection is a named set of records
type Collection interface {
	Name() string

	// Add stores one record per document in a single bulk operation. The
	// three slices are parallel and every embedding must have the same
	// dimension. Nothing is stored when validation fails.
	Add(ctx context.Context, documents []string, metadatas []types.Metadata, embeddings [][]float32) error

	Count(ctx context.Context) (int, error)

	// Records returns the stored records in insertion order
	Records(ctx context.Context) ([]Record, error)
}

// Record is one stored chunk
type Record struct {
	ID        string
	Document  string
	Metadata  types.Metadata
	Embedding []float32
}

// Options selects and configures a backend
type Options struct {
	Backend   string
	DBPath    string // sqlite
	ChromaURL string // chroma
}

// Open returns the store for opts.Backend
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendSQLite, "":
		return NewSQLiteStore(ctx, opts.DBPath)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendChroma:
		store, err := NewChromaStore(ChromaConfig{URL: opts.ChromaURL})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// validateRecords checks the parallel slices passed to Add and returns the
// shared embedding dimension. want, when non-zero, is the dimension the
// collection already holds.
func validateRecords(documents []string, metadatas []types.Metadata, embeddings [][]float32, want int) (int, error) {
	if len(documents) != len(metadatas) || len(documents) != len(embeddings) {
		return 0, fmt.Errorf("%w: %d documents, %d metadatas, %d embeddings",
			ErrInvalidRecords, len(documents), len(metadatas), len(embeddings))
	}

	dim := want
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return 0, fmt.Errorf("%w: embedding %d is empty", ErrInvalidRecords, i)
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return 0, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				ErrInvalidRecords, i, len(emb), dim)
		}
	}

	for i, meta := range metadatas {
		if meta.PDF == "" {
			return 0, fmt.Errorf("%w: metadata %d has no pdf", ErrInvalidRecords, i)
		}
		if meta.Page < 1 {
			return 0, fmt.Errorf("%w: metadata %d: %w", ErrInvalidRecords, i, types.ErrInvalidPage)
		}
	}

	return dim, nil
}

// newRecordIDs assigns a random UUID to each of n records
func newRecordIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}
