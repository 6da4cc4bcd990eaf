package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/pdfindex/pkg/types"
)

// Provider failures match types.ErrEmbedding so the pipeline can classify them
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrProviderFailed  = fmt.Errorf("%w: provider failed", types.ErrEmbedding)
	ErrUnknownProvider = errors.New("unknown embedding provider")
	ErrEmptyText       = errors.New("chunk text is empty")
	ErrBatchTooLarge   = errors.New("too many chunks in one request")
	ErrMissingAPIKey   = errors.New("embedding api key not set")
)

// Embedding is the vector of one chunk text
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Key       string // TextKey of the embedded text
}

// EmbeddingRequest carries one chunk text
type EmbeddingRequest struct {
	Text  string
	Model string // empty uses the provider's model
}

// BatchEmbeddingRequest carries the texts of consecutive chunks
type BatchEmbeddingRequest struct {
	Texts []string
	Model string
}

// BatchEmbeddingResponse has Embeddings[i] for Texts[i]
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
}

// Embedder maps chunk texts to vectors of a fixed Dimension
type Embedder interface {
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)
	// GenerateBatch keeps the order of req.Texts
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)
	Dimension() int
	Provider() string
	Model() string
	Close() error
}

// DefaultCacheSize bounds the cache when Config.CacheSize is unset
const DefaultCacheSize = 10000

// Cache remembers the vectors of texts already embedded. Identical chunks
// (repeated headers, boilerplate pages) then cost one provider call.
type Cache struct {
	entries *lru.Cache[string, *Embedding]
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size
	entries, _ := lru.New[string, *Embedding](size)
	return &Cache{entries: entries}
}

// Lookup returns a private copy of the entry for key
func (c *Cache) Lookup(key string) (*Embedding, bool) {
	emb, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	cp := *emb
	cp.Vector = append([]float32(nil), emb.Vector...)
	return &cp, true
}

func (c *Cache) Store(key string, emb *Embedding) {
	c.entries.Add(key, emb)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}

// TextKey is the hex SHA-256 of text
func TextKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func checkText(text string) error {
	if text == "" {
		return ErrEmptyText
	}
	return nil
}

func checkTexts(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts", ErrInvalidInput)
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
