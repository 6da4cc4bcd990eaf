package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/pdfindex/pkg/types"
)

// MemoryStore keeps collections in process memory. Its contents are lost
// when the process exits.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	c := &memoryCollection{name: name}
	s.collections[name] = c
	return c, nil
}

func (s *MemoryStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

func (s *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

type memoryCollection struct {
	mu        sync.RWMutex
	name      string
	dimension int
	records   []Record
}

func (c *memoryCollection) Name() string {
	return c.name
}

// Add validates the whole batch before appending anything
func (c *memoryCollection) Add(ctx context.Context, documents []string, metadatas []types.Metadata, embeddings [][]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dim, err := validateRecords(documents, metadatas, embeddings, c.dimension)
	if err != nil {
		return err
	}

	ids := newRecordIDs(len(documents))
	for i := range documents {
		c.records = append(c.records, Record{
			ID:        ids[i],
			Document:  documents[i],
			Metadata:  metadatas[i],
			Embedding: append([]float32(nil), embeddings[i]...),
		})
	}
	if len(documents) > 0 {
		c.dimension = dim
	}
	return nil
}

func (c *memoryCollection) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records), nil
}

func (c *memoryCollection) Records(ctx context.Context) ([]Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out, nil
}
