package chunker

import (
	"strings"

	"github.com/dshills/pdfindex/pkg/types"
)

// DefaultChunkSize is the number of words per chunk when none is configured
const DefaultChunkSize = 300

// Chunker splits page text into fixed-size word windows
type Chunker struct {
	size int
}

// New creates a Chunker producing chunks of at most size words.
// A non-positive size selects DefaultChunkSize.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Chunker{size: size}
}

// Size returns the configured words per chunk
func (c *Chunker) Size() int {
	return c.size
}

// ChunkPage splits text on whitespace and regroups the words into chunks of
// Size words (the last one may be shorter), each rejoined with single spaces
// and tagged with the source file and page. Blank text yields no chunks.
func (c *Chunker) ChunkPage(text, pdf string, page int) []*types.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]*types.Chunk, 0, (len(words)+c.size-1)/c.size)
	for start := 0; start < len(words); start += c.size {
		end := min(start+c.size, len(words))

		chunkText := strings.Join(words[start:end], " ")
		if strings.TrimSpace(chunkText) == "" {
			continue
		}

		chunks = append(chunks, &types.Chunk{
			Text: chunkText,
			Metadata: types.Metadata{
				PDF:  pdf,
				Page: page,
			},
		})
	}

	return chunks
}
