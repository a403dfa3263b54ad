package reader

import (
	"fmt"
	"io"
	"os"

	"github.com/tsawler/folio/core"
	"github.com/tsawler/folio/resolver"
)

// headerLen is the length of the mandatory file header: "%PDF-" plus a
// one-dot version plus a terminating whitespace byte.
const headerLen = 9

// Reader provides read access to a parsed PDF file: its header version,
// cross-reference table, trailer, and object graph.
type Reader struct {
	src     io.ReadSeeker
	size    int64
	version string
	xref    *core.XRefTable
	res     *resolver.Resolver
	closer  io.Closer
}

// Open reads the file at path. The returned Reader holds the file open;
// call Close when done.
func Open(path string, opts ...resolver.Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	r, err := NewReader(f, st.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader parses the header and cross-reference table of a file held in
// an arbitrary seekable source of the given size.
func NewReader(src io.ReadSeeker, size int64, opts ...resolver.Option) (*Reader, error) {
	version, err := parseHeader(src)
	if err != nil {
		return nil, err
	}
	xref, err := core.ReadXRef(src, size)
	if err != nil {
		return nil, err
	}
	return &Reader{
		src:     src,
		size:    size,
		version: version,
		xref:    xref,
		res:     resolver.New(src, xref, opts...),
	}, nil
}

// parseHeader validates the 9-byte file header and extracts the version.
func parseHeader(src io.ReadSeeker) (string, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek to header: %w", err)
	}
	var header [headerLen]byte
	if _, err := io.ReadFull(src, header[:]); err != nil {
		return "", &core.FormatError{Msg: "file too short for a header", Offset: 0}
	}
	if string(header[:5]) != "%PDF-" {
		return "", &core.FormatError{Msg: fmt.Sprintf("header %q does not open with %%PDF-", header), Offset: 0}
	}
	major, dot, minor := header[5], header[6], header[7]
	if major < '0' || major > '9' || dot != '.' || minor < '0' || minor > '9' {
		return "", &core.FormatError{Msg: fmt.Sprintf("malformed header version %q", header[5:8]), Offset: 5}
	}
	if b := header[8]; b != '\n' && b != '\r' && b != ' ' {
		return "", &core.FormatError{Msg: "header version not terminated by whitespace", Offset: 8}
	}
	return string(header[5:8]), nil
}

// Close releases the underlying file, when the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Version returns the header version, such as "1.4".
func (r *Reader) Version() string { return r.version }

// Size returns the file size in bytes.
func (r *Reader) Size() int64 { return r.size }

// Trailer returns the trailer dictionary.
func (r *Reader) Trailer() *core.Dict { return r.xref.Trailer }

// XRef returns the parsed cross-reference table.
func (r *Reader) XRef() *core.XRefTable { return r.xref }

// Resolve returns the object a reference names, one level deep. Missing
// identities resolve to Null.
func (r *Reader) Resolve(ref core.Reference) (core.Object, error) {
	return r.res.Resolve(ref)
}

// Materialize replaces every reference inside obj with its target,
// recursively and cycle-safely.
func (r *Reader) Materialize(obj core.Object) (core.Object, error) {
	return r.res.Materialize(obj)
}

// ObjectAt parses the indirect object at a raw byte offset.
func (r *Reader) ObjectAt(offset int64) (core.ObjectID, core.Object, error) {
	return r.res.ObjectAt(offset)
}

// MaterializeAt parses the object at a byte offset and materializes the
// graph beneath it.
func (r *Reader) MaterializeAt(offset int64) (core.ObjectID, core.Object, error) {
	return r.res.MaterializeAt(offset)
}

// Catalog returns the document catalog the trailer's Root entry points at.
func (r *Reader) Catalog() (*core.Dict, error) {
	return r.trailerDict("Root", "Catalog")
}

// Info returns the document information dictionary, or nil when the
// trailer carries no Info entry.
func (r *Reader) Info() (*core.Dict, error) {
	if !r.xref.Trailer.Has("Info") {
		return nil, nil
	}
	return r.trailerDict("Info", "")
}

func (r *Reader) trailerDict(key core.Name, wantType core.Name) (*core.Dict, error) {
	ref, ok := r.xref.Trailer.GetReference(key)
	if !ok {
		return nil, &core.FormatError{Msg: fmt.Sprintf("trailer has no %s reference", key), Offset: -1}
	}
	obj, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(*core.Dict)
	if !ok {
		return nil, &core.FormatError{Msg: fmt.Sprintf("%s resolves to %s, not a dictionary", key, obj.Kind()), Offset: -1}
	}
	if wantType != "" {
		if typ, _ := dict.GetName("Type"); typ != wantType {
			return nil, &core.FormatError{Msg: fmt.Sprintf("%s dictionary has Type %s, want %s", key, typ.String(), wantType.String()), Offset: -1}
		}
	}
	return dict, nil
}
