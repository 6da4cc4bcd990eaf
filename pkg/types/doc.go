// Package types provides shared type definitions for pdfindex.
//
// # Chunks
//
// Chunk is the only domain entity: a run of at most N words taken from a
// single PDF page, together with the file name and 1-based page number it
// came from:
//
//	chunk := &types.Chunk{
//	    Text:     "FortiGate supports ...",
//	    Metadata: types.Metadata{PDF: "admin-guide.pdf", Page: 12},
//	}
//
// Its JSON form is the wire format of the chunk dump:
//
//	{"text": "...", "metadata": {"pdf": "admin-guide.pdf", "page": 12}}
//
// # Errors
//
// The failure classes ErrFileSystem, ErrExtraction, ErrWrite,
// ErrCollectionExists and ErrEmbedding are shared across packages. Use Wrap
// to attach one to an underlying error:
//
//	if err != nil {
//	    return types.Wrap(types.ErrWrite, "create "+path, err)
//	}
//
// and errors.Is to test for it:
//
//	if errors.Is(err, types.ErrCollectionExists) { ... }
package types
