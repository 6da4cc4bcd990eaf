package embedder

import (
	"context"
	"fmt"

	"github.com/dshills/pdfindex/pkg/types"
)

// ProgressFunc is called after each batch with the number of texts embedded so far
type ProgressFunc func(done, total int)

// EmbedAll embeds texts in sequential batches of batchSize and returns the
// vectors in input order. Every vector must have the same non-zero length
// and the provider must return exactly one vector per text. All failures
// match types.ErrEmbedding.
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize int, onBatch ProgressFunc) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchSize = min(batchSize, MaxBatchSize)

	vectors := make([][]float32, 0, len(texts))
	dim := 0

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		resp, err := e.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: texts[start:end]})
		if err != nil {
			return nil, types.Wrap(types.ErrEmbedding, fmt.Sprintf("embed texts %d-%d", start, end-1), err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: %s returned %d embeddings for %d texts",
				ErrProviderFailed, e.Provider(), len(resp.Embeddings), end-start)
		}

		for i, emb := range resp.Embeddings {
			if emb == nil || len(emb.Vector) == 0 {
				return nil, fmt.Errorf("%w: empty embedding for text %d", ErrProviderFailed, start+i)
			}
			if dim == 0 {
				dim = len(emb.Vector)
			}
			if len(emb.Vector) != dim {
				return nil, fmt.Errorf("%w: text %d has dimension %d, expected %d",
					ErrProviderFailed, start+i, len(emb.Vector), dim)
			}
			vectors = append(vectors, emb.Vector)
		}

		if onBatch != nil {
			onBatch(end, len(texts))
		}
	}

	return vectors, nil
}
