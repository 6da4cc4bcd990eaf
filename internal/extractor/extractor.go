// Package extractor reads per-page text out of PDF files.
package extractor

import (
	"errors"
	"fmt"
	"iter"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/dshills/pdfindex/pkg/types"
)

// ErrPagesConsumed is yielded when Pages is ranged over a second time
var ErrPagesConsumed = errors.New("pages already consumed")

// Page is the extracted text of one PDF page
type Page struct {
	Number int // 1-based
	Text   string
}

// Document is an open PDF file
type Document struct {
	path     string
	file     *os.File
	reader   *pdf.Reader
	consumed bool
}

// Open opens the PDF at path. The caller must Close the document.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrFileSystem, "open "+path, err)
	}

	r, err := newReader(f)
	if err != nil {
		_ = f.Close()
		return nil, types.Wrap(types.ErrExtraction, "open "+path, err)
	}

	return &Document{path: path, file: f, reader: r}, nil
}

// newReader parses the cross-reference table of f
func newReader(f *os.File) (r *pdf.Reader, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("%v", rec)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return pdf.NewReader(f, info.Size())
}

// NumPages returns the page count declared by the document
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Pages yields every page in order. The sequence is lazy and single-use:
// text is only decoded as the caller advances, and a second range yields
// ErrPagesConsumed. Extraction stops at the first error.
func (d *Document) Pages() iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		if d.consumed {
			yield(Page{}, ErrPagesConsumed)
			return
		}
		d.consumed = true

		fonts := make(map[string]*pdf.Font)
		total := d.reader.NumPage()
		for i := 1; i <= total; i++ {
			text, err := d.pageText(i, fonts)
			if err != nil {
				yield(Page{Number: i}, types.Wrap(types.ErrExtraction, fmt.Sprintf("%s page %d", d.path, i), err))
				return
			}
			if !yield(Page{Number: i, Text: text}, nil) {
				return
			}
		}
	}
}

// pageText returns "" for pages without a content stream. fonts caches the
// decoded encodings across pages; GetPlainText only loads them itself when
// the map is nil.
func (d *Document) pageText(num int, fonts map[string]*pdf.Font) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%v", r)
		}
	}()

	page := d.reader.Page(num)
	if page.V.IsNull() || page.V.Key("Contents").IsNull() {
		return "", nil
	}
	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := page.Font(name)
			fonts[name] = &font
		}
	}
	return page.GetPlainText(fonts)
}

// Close releases the underlying file handle
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
