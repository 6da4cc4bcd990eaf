// Package serializer persists the chunk collection as JSON, CSV and XLSX.
package serializer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/dshills/pdfindex/pkg/types"
)

// CSVHeader is the header row of the flat export
var CSVHeader = []string{"text", "pdf", "page"}

// SheetName is the worksheet the XLSX export writes to
const SheetName = "chunks"

// EncodeJSON writes chunks as an indented JSON array. Non-ASCII and HTML
// characters are written literally, except U+2028 and U+2029 which
// encoding/json always escapes. An empty collection encodes as [].
func EncodeJSON(w io.Writer, chunks []*types.Chunk) error {
	if chunks == nil {
		chunks = []*types.Chunk{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(chunks)
}

// EncodeCSV writes the header row and one text,pdf,page row per chunk using
// RFC 4180 quoting and CRLF line endings
func EncodeCSV(w io.Writer, chunks []*types.Chunk) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range chunks {
		row := []string{c.Text, c.Metadata.PDF, strconv.Itoa(c.Metadata.Page)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON creates (or truncates) path and writes the JSON encoding of chunks
func WriteJSON(path string, chunks []*types.Chunk) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeJSON(w, chunks)
	})
}

// WriteCSV creates (or truncates) path and writes the CSV encoding of chunks
func WriteCSV(path string, chunks []*types.Chunk) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeCSV(w, chunks)
	})
}

// WriteXLSX writes the same columns as the CSV export to a spreadsheet
func WriteXLSX(path string, chunks []*types.Chunk) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// rename the default sheet rather than adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return types.Wrap(types.ErrWrite, "create sheet", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &CSVHeader); err != nil {
		return types.Wrap(types.ErrWrite, "write xlsx header", err)
	}

	for i, c := range chunks {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{c.Text, c.Metadata.PDF, c.Metadata.Page}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return types.Wrap(types.ErrWrite, "write xlsx row "+cell, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return types.Wrap(types.ErrWrite, "save "+path, err)
	}
	return nil
}

// writeFile opens path for writing, runs encode and closes the file on every
// path. A failed close is reported since it can lose buffered data.
func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return types.Wrap(types.ErrWrite, "create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = types.Wrap(types.ErrWrite, "close "+path, cerr)
		}
	}()

	if err := encode(f); err != nil {
		return types.Wrap(types.ErrWrite, "write "+path, err)
	}
	return nil
}
