package types

import (
	"errors"
	"strings"
)

// Metadata identifies where a chunk came from
type Metadata struct {
	PDF  string `json:"pdf"`
	Page int    `json:"page"` // 1-based
}

// Chunk is a bounded run of words from a single PDF page
type Chunk struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// ValidateContent checks if the chunk text is usable
func (c *Chunk) ValidateContent() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Validate performs comprehensive validation of the chunk
func (c *Chunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}

	if c.Metadata.PDF == "" {
		return errors.New("source pdf is required")
	}

	if c.Metadata.Page < 1 {
		return ErrInvalidPage
	}

	return nil
}

// WordCount returns the number of whitespace-separated words in the chunk
func (c *Chunk) WordCount() int {
	return len(strings.Fields(c.Text))
}

// Texts returns the text of every chunk, in order
func Texts(chunks []*Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}

// Metadatas returns the metadata of every chunk, in order
func Metadatas(chunks []*Chunk) []Metadata {
	metas := make([]Metadata, len(chunks))
	for i, c := range chunks {
		metas[i] = c.Metadata
	}
	return metas
}
