// Package config resolves pdfindex settings from built-in defaults, an
// optional .env file and the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding variable is unset
const (
	DefaultPDFFolder      = "./pdfs"
	DefaultChunkSize      = 300
	DefaultJSONOut        = "chunks.json"
	DefaultCSVOut         = "chunks.csv"
	DefaultCollectionName = "pdf_docs"
	DefaultStore          = StoreSQLite
	DefaultDBPath         = "pdfindex.db"
	DefaultChromaURL      = "http://localhost:8000"
	DefaultEmbeddingBatch = 50
	DefaultLogLevel       = "info"
)

// Vector store backends
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreChroma = "chroma"
)

// Config holds every setting of an indexing run
type Config struct {
	PDFFolder      string
	ChunkSize      int
	JSONOut        string
	CSVOut         string
	XLSXOut        string // empty disables the spreadsheet export
	CollectionName string

	Store     string
	DBPath    string
	ChromaURL string

	EmbeddingProvider string // empty means auto-detect from API keys
	EmbeddingBatch    int

	LogLevel string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		PDFFolder:      DefaultPDFFolder,
		ChunkSize:      DefaultChunkSize,
		JSONOut:        DefaultJSONOut,
		CSVOut:         DefaultCSVOut,
		CollectionName: DefaultCollectionName,
		Store:          DefaultStore,
		DBPath:         DefaultDBPath,
		ChromaURL:      DefaultChromaURL,
		EmbeddingBatch: DefaultEmbeddingBatch,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads .env (if present) into the environment and builds a validated Config
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := Default()
	cfg.PDFFolder = getEnv("PDF_FOLDER", cfg.PDFFolder)
	cfg.JSONOut = getEnv("JSON_OUT", cfg.JSONOut)
	cfg.CSVOut = getEnv("CSV_OUT", cfg.CSVOut)
	cfg.XLSXOut = getEnv("XLSX_OUT", cfg.XLSXOut)
	cfg.CollectionName = getEnv("CHROMA_COLLECTION_NAME", cfg.CollectionName)
	cfg.Store = strings.ToLower(getEnv("PDFINDEX_STORE", cfg.Store))
	cfg.DBPath = getEnv("PDFINDEX_DB_PATH", cfg.DBPath)
	cfg.ChromaURL = getEnv("CHROMA_URL", cfg.ChromaURL)
	cfg.EmbeddingProvider = strings.ToLower(getEnv("PDFINDEX_EMBEDDING_PROVIDER", cfg.EmbeddingProvider))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", cfg.ChunkSize); err != nil {
		return nil, err
	}
	if cfg.EmbeddingBatch, err = getEnvInt("PDFINDEX_EMBEDDING_BATCH", cfg.EmbeddingBatch); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.PDFFolder == "" {
		return fmt.Errorf("PDF_FOLDER is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be a positive integer, got %d", c.ChunkSize)
	}
	if c.JSONOut == "" || c.CSVOut == "" {
		return fmt.Errorf("JSON_OUT and CSV_OUT are required")
	}
	if c.CollectionName == "" {
		return fmt.Errorf("CHROMA_COLLECTION_NAME is required")
	}
	if c.EmbeddingBatch <= 0 {
		return fmt.Errorf("PDFINDEX_EMBEDDING_BATCH must be a positive integer, got %d", c.EmbeddingBatch)
	}

	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("PDFINDEX_DB_PATH is required for the sqlite store")
		}
	case StoreMemory:
	case StoreChroma:
		if c.ChromaURL == "" {
			return fmt.Errorf("CHROMA_URL is required for the chroma store")
		}
	default:
		return fmt.Errorf("unknown PDFINDEX_STORE %q (want sqlite, memory or chroma)", c.Store)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
