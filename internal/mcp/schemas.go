package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// buildIndexTool returns the tool definition for build_index
func buildIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "build_index",
		Description: "Extract, chunk, embed and load a folder of PDF files into a new vector store collection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pdf_folder": map[string]interface{}{
					"type":        "string",
					"description": "Folder containing the PDF files (defaults to PDF_FOLDER)",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection to create; must not exist yet (defaults to CHROMA_COLLECTION_NAME)",
				},
				"chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Words per chunk (defaults to CHUNK_SIZE)",
					"minimum":     1,
				},
			},
		},
	}
}

// collectionStatusTool returns the tool definition for collection_status
func collectionStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "collection_status",
		Description: "Report whether a collection exists and how many records it holds",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection name",
				},
			},
			Required: []string{"collection"},
		},
	}
}
