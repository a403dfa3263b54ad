// Package folio reads and writes PDF files. The format machinery lives in
// the subpackages; this package offers the entry points most callers need.
//
// Reading:
//
//	r, err := folio.Open("in.pdf")
//	if err != nil { ... }
//	defer r.Close()
//	catalog, err := r.Catalog()
//
// Writing:
//
//	w := folio.NewWriter()
//	w.AddPage(pages.NewPage(pages.Letter()))
//	data, err := w.Bytes()
package folio

import (
	"io"

	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/reader"
	"github.com/tsawler/folio/resolver"
	"github.com/tsawler/folio/writer"
)

// Open reads the PDF file at path.
func Open(path string, opts ...resolver.Option) (*reader.Reader, error) {
	return reader.Open(path, opts...)
}

// NewReader parses a PDF held in a seekable source of the given size.
func NewReader(src io.ReadSeeker, size int64, opts ...resolver.Option) (*reader.Reader, error) {
	return reader.NewReader(src, size, opts...)
}

// NewWriter creates an empty document writer.
func NewWriter(opts ...writer.Option) *writer.Writer {
	return writer.New(opts...)
}

// IsPDF reports whether data looks like the start of a PDF file.
func IsPDF(data []byte) bool {
	return format.IsPDF(data)
}
