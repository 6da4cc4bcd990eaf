package types

import (
	"encoding/json"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkValidate(t *testing.T) {
	tests := []struct {
		name    string
		chunk   Chunk
		wantErr error
	}{
		{
			name:  "valid chunk",
			chunk: Chunk{Text: "hello world", Metadata: Metadata{PDF: "doc.pdf", Page: 1}},
		},
		{
			name:    "whitespace text",
			chunk:   Chunk{Text: " \n\t", Metadata: Metadata{PDF: "doc.pdf", Page: 1}},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "zero page",
			chunk:   Chunk{Text: "hello", Metadata: Metadata{PDF: "doc.pdf", Page: 0}},
			wantErr: ErrInvalidPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chunk.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing pdf", func(t *testing.T) {
		c := Chunk{Text: "hello", Metadata: Metadata{Page: 1}}
		assert.Error(t, c.Validate())
	})
}

func TestChunkJSONShape(t *testing.T) {
	c := Chunk{Text: "a b", Metadata: Metadata{PDF: "doc.pdf", Page: 3}}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"a b","metadata":{"pdf":"doc.pdf","page":3}}`, string(data))
}

func TestWordCount(t *testing.T) {
	c := Chunk{Text: "one two  three"}
	assert.Equal(t, 3, c.WordCount())
}

func TestTextsAndMetadatas(t *testing.T) {
	chunks := []*Chunk{
		{Text: "a", Metadata: Metadata{PDF: "x.pdf", Page: 1}},
		{Text: "b", Metadata: Metadata{PDF: "y.pdf", Page: 2}},
	}
	assert.Equal(t, []string{"a", "b"}, Texts(chunks))
	assert.Equal(t, []Metadata{{PDF: "x.pdf", Page: 1}, {PDF: "y.pdf", Page: 2}}, Metadatas(chunks))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(ErrWrite, "ignored", nil))

	err := Wrap(ErrFileSystem, "read dir", fs.ErrNotExist)
	assert.ErrorIs(t, err, ErrFileSystem)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, errors.Is(err, ErrWrite))
	assert.Equal(t, "read dir: file does not exist", err.Error())
}
