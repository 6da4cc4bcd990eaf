package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pdfindex/pkg/types"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "B.PDF", "c.Pdf", "notes.txt", "pdf", "archive.pdf.zip"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0755))

	names, err := Scan(dir)
	require.NoError(t, err)

	// listing order is platform dependent
	assert.ElementsMatch(t, []string{"a.pdf", "B.PDF", "c.Pdf"}, names)
}

func TestScanEmptyDirectory(t *testing.T) {
	names, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFileSystem)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanFileInsteadOfDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Scan(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFileSystem)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("x.pdf"))
	assert.True(t, IsPDF("X.PDF"))
	assert.False(t, IsPDF("x.pdfx"))
	assert.False(t, IsPDF("xpdf.txt"))
}
