// Package embedder turns chunk texts into fixed-dimension vectors.
//
// Four providers implement the Embedder interface:
//
//   - local: offline feature hashing into 384 dimensions (the default)
//   - ollama: a local Ollama server, all-minilm by default (384 dimensions)
//   - openai: text-embedding-3-small (1536 dimensions)
//   - jina: jina-embeddings-v3 (1024 dimensions)
//
// # Basic Usage
//
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	vectors, err := embedder.EmbedAll(ctx, emb, texts, 50, func(done, total int) {
//	    logger.Info("embedding batch", "done", done, "total", total)
//	})
//
// EmbedAll sends one batch at a time and returns one vector per text, in
// input order.
//
// # Provider Selection
//
//  1. If PDFINDEX_EMBEDDING_PROVIDER is set (and not "auto") → use it
//  2. Else if JINA_API_KEY is set → use Jina AI
//  3. Else if OPENAI_API_KEY is set → use OpenAI
//  4. Else → local provider (offline)
//
// The ollama provider reads OLLAMA_URL and OLLAMA_MODEL.
//
// # Caching
//
// Each provider keeps an LRU cache keyed by the SHA-256 of the text, so
// repeated chunks are embedded once.
//
// # Error Handling
//
// Remote providers retry 429 and 5xx responses with exponential backoff.
// Other failures are returned at once. Every provider failure matches
// ErrProviderFailed, which in turn matches types.ErrEmbedding:
//
//	if errors.Is(err, types.ErrEmbedding) {
//	    // provider down, bad key, or malformed response
//	}
package embedder
