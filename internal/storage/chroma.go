package storage

import (
	"context"
	"fmt"
	"strings"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/dshills/pdfindex/pkg/types"
)

// DefaultChromaURL is where a local Chroma server listens
const DefaultChromaURL = "http://localhost:8000"

// chromaAPIPath is the route prefix of the Chroma v2 API
const chromaAPIPath = "/api/v2"

// Metadata keys stored on every Chroma record
const (
	chromaKeyPDF  = "pdf"
	chromaKeyPage = "page"
)

// ChromaConfig configures the Chroma client
type ChromaConfig struct {
	URL string
}

// ChromaStore keeps collections on a Chroma server, using the default
// tenant and database
type ChromaStore struct {
	client chroma.Client
}

// NewChromaStore creates a client for the server at cfg.URL. No request is
// made until the first collection call.
func NewChromaStore(cfg ChromaConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(chromaBaseURL(cfg.URL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	return &ChromaStore{client: client}, nil
}

// chromaBaseURL appends the API prefix unless the caller already did
func chromaBaseURL(raw string) string {
	if raw == "" {
		raw = DefaultChromaURL
	}
	raw = strings.TrimRight(raw, "/")
	if !strings.HasSuffix(raw, chromaAPIPath) {
		raw += chromaAPIPath
	}
	return raw
}

// vectors are always computed before Add, so the collection's embedding
// function is never asked to embed; setting one keeps the client from
// loading its default ONNX model
func noopEmbeddingFunction() embeddings.EmbeddingFunction {
	return embeddings.NewConsistentHashEmbeddingFunction()
}

func (s *ChromaStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	coll, err := s.client.CreateCollection(ctx, name,
		chroma.WithEmbeddingFunctionCreate(noopEmbeddingFunction()))
	if err != nil {
		if isChromaExists(err) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
		}
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &chromaCollection{coll: coll}, nil
}

func (s *ChromaStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	coll, err := s.client.GetCollection(ctx, name,
		chroma.WithEmbeddingFunctionGet(noopEmbeddingFunction()))
	if err != nil {
		if isChromaNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &chromaCollection{coll: coll}, nil
}

func (s *ChromaStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		if isChromaNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func (s *ChromaStore) ListCollections(ctx context.Context) ([]string, error) {
	colls, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	names := make([]string, len(colls))
	for i, c := range colls {
		names[i] = c.Name()
	}
	return names, nil
}

func (s *ChromaStore) Close() error {
	return s.client.Close()
}

// Chroma answers a duplicate name with 409 on current servers and with a
// UniqueConstraintError on older ones; the client surfaces the server
// message in its error text
func isChromaExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "UniqueConstraintError")
}

func isChromaNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "NotFoundError")
}

type chromaCollection struct {
	coll chroma.Collection
}

func (c *chromaCollection) Name() string {
	return c.coll.Name()
}

func (c *chromaCollection) Add(ctx context.Context, documents []string, metadatas []types.Metadata, vectors [][]float32) error {
	// the server enforces the collection dimension itself
	if _, err := validateRecords(documents, metadatas, vectors, 0); err != nil {
		return err
	}
	if len(documents) == 0 {
		return nil
	}

	ids := newRecordIDs(len(documents))
	docIDs := make([]chroma.DocumentID, len(ids))
	metas := make([]chroma.DocumentMetadata, len(metadatas))
	embs := make([]embeddings.Embedding, len(vectors))
	for i := range documents {
		docIDs[i] = chroma.DocumentID(ids[i])
		metas[i] = chroma.NewDocumentMetadata(
			chroma.NewStringAttribute(chromaKeyPDF, metadatas[i].PDF),
			chroma.NewIntAttribute(chromaKeyPage, int64(metadatas[i].Page)),
		)
		embs[i] = embeddings.NewEmbeddingFromFloat32(vectors[i])
	}

	err := c.coll.Add(ctx,
		chroma.WithIDs(docIDs...),
		chroma.WithTexts(documents...),
		chroma.WithMetadatas(metas...),
		chroma.WithEmbeddings(embs...),
	)
	if err != nil {
		return fmt.Errorf("failed to add records: %w", err)
	}
	return nil
}

func (c *chromaCollection) Count(ctx context.Context) (int, error) {
	n, err := c.coll.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (c *chromaCollection) Records(ctx context.Context) ([]Record, error) {
	res, err := c.coll.Get(ctx, chroma.WithIncludeGet(
		chroma.IncludeDocuments,
		chroma.IncludeMetadatas,
		chroma.IncludeEmbeddings,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	ids := res.GetIDs()
	docs := res.GetDocuments()
	metas := res.GetMetadatas()
	embs := res.GetEmbeddings()
	n := len(ids)
	if len(docs) != n || len(metas) != n || len(embs) != n {
		return nil, fmt.Errorf("chroma: inconsistent get response for %s", c.Name())
	}

	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:        string(ids[i]),
			Document:  docs[i].ContentString(),
			Metadata:  chromaMetadata(metas[i]),
			Embedding: embs[i].ContentAsFloat32(),
		}
	}
	return records, nil
}

// chromaMetadata reads pdf and page back; JSON numbers may decode as floats
func chromaMetadata(md chroma.DocumentMetadata) types.Metadata {
	var m types.Metadata
	if md == nil {
		return m
	}
	m.PDF, _ = md.GetString(chromaKeyPDF)
	if page, ok := md.GetInt(chromaKeyPage); ok {
		m.Page = int(page)
	} else if page, ok := md.GetFloat(chromaKeyPage); ok {
		m.Page = int(page)
	}
	return m
}
