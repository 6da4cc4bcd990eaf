// Package scanner enumerates the PDF files of an input directory.
package scanner

import (
	"os"
	"strings"

	"github.com/dshills/pdfindex/pkg/types"
)

// PDFExt is matched case-insensitively against entry names
const PDFExt = ".pdf"

// Scan returns the names (not paths) of the PDF files directly inside dir.
// Names come back in the order the operating system lists them, which is not
// necessarily sorted. Sub-directories are ignored even if their name ends in
// .pdf.
func Scan(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, types.Wrap(types.ErrFileSystem, "open pdf folder "+dir, err)
	}
	defer func() { _ = f.Close() }()

	// File.ReadDir keeps directory order; os.ReadDir would sort by name
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, types.Wrap(types.ErrFileSystem, "read pdf folder "+dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsPDF(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// IsPDF reports whether name has a .pdf extension in any letter case
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), PDFExt)
}
