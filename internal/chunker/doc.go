// Package chunker divides extracted PDF page text into fixed-size word chunks.
//
// # Basic Usage
//
//	c := chunker.New(300)
//	for page, err := range doc.Pages() {
//	    if err != nil {
//	        return err
//	    }
//	    chunks = append(chunks, c.ChunkPage(page.Text, "guide.pdf", page.Number)...)
//	}
//
// # Chunking Strategy
//
// The page text is split on any run of Unicode whitespace, so line breaks,
// tabs and repeated spaces all collapse. Words are then grouped in order into
// windows of exactly Size words; only the final window of a page may be
// shorter. Each window is rejoined with single spaces.
//
// Chunks never span pages and carry no overlap. Sentence and paragraph
// boundaries are not considered.
//
// For a 650-word page and the default size of 300:
//
//	chunk 1: words   1-300
//	chunk 2: words 301-600
//	chunk 3: words 601-650
//
// A page whose text is empty or all whitespace produces no chunks.
package chunker
