// Package mcp implements the Model Context Protocol (MCP) server for pdfindex.
//
// The server exposes two tools over stdio:
//   - build_index: run the full pipeline for a PDF folder into a new collection
//   - collection_status: report the record count of an existing collection
//
// # Tool: build_index
//
// All arguments are optional and fall back to the server's configuration:
//
//	{"pdf_folder": "./pdfs", "collection": "pdf_docs", "chunk_size": 300}
//
// The response carries the run statistics:
//
//	{
//	  "indexed": true,
//	  "collection": "pdf_docs",
//	  "files_processed": 2,
//	  "pages_processed": 7,
//	  "empty_pages": 1,
//	  "chunks_created": 12,
//	  "embedding_dimension": 384,
//	  "outputs": ["chunks.json", "chunks.csv"],
//	  "duration_ms": 840
//	}
//
// # Error Codes
//
//   - -32602: invalid parameters or unreadable pdf_folder
//   - -32603: extraction, write, embedding or storage failure
//   - -32002: another build_index call is running
//   - -32003: collection_status on an unknown collection
//   - -32005: build_index target collection already exists
//
// # Concurrency
//
// Only one build_index runs at a time; concurrent calls fail fast with -32002.
package mcp
