package writer

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"

	"github.com/tsawler/folio/core"
)

// binaryComment follows the header line so transfer tools treat the file
// as binary: a comment holding four bytes with the high bit set.
var binaryComment = []byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'}

// Writer assembles a document and serializes it in one shot. Objects are
// built with unassigned identities; Bytes assigns numbers in layout order
// (catalog, page tree, pages, auxiliary objects, info) and emits the
// header, bodies, cross-reference table, and trailer.
type Writer struct {
	version  string
	catalog  *core.Indirect
	pageTree *core.Indirect
	kids     core.Array
	pages    []*core.Indirect
	aux      []*core.Indirect
	info     *core.Indirect
}

// Option configures a Writer.
type Option func(*Writer)

// WithVersion overrides the header version. The default is 1.4.
func WithVersion(v string) Option {
	return func(w *Writer) { w.version = v }
}

// New creates a writer with an empty catalog and page tree.
func New(opts ...Option) *Writer {
	w := &Writer{version: "1.4"}

	tree := core.NewDict()
	tree.Set("Type", core.Name("Pages"))
	w.pageTree = core.NewIndirect(tree)

	cat := core.NewDict()
	cat.Set("Type", core.Name("Catalog"))
	cat.Set("Pages", w.pageTree)
	w.catalog = core.NewIndirect(cat)

	return w
}

// Catalog returns the document catalog for callers that want to add
// entries such as outlines to it.
func (w *Writer) Catalog() *core.Dict {
	return w.catalog.Object().(*core.Dict)
}

// AddPage appends a page to the document. The page's Parent entry is
// pointed at the page tree; the returned indirect can be referenced by
// other objects.
func (w *Writer) AddPage(page *core.Dict) *core.Indirect {
	page.Set("Parent", w.pageTree)
	ind := core.NewIndirect(page)
	w.pages = append(w.pages, ind)
	w.kids = append(w.kids, ind)
	return ind
}

// AddObject registers an auxiliary object (a content stream, an image, a
// font) and returns its indirect wrapper for embedding into other
// dictionaries.
func (w *Writer) AddObject(obj core.Object) *core.Indirect {
	ind := core.NewIndirect(obj)
	w.aux = append(w.aux, ind)
	return ind
}

// SetInfo attaches a document information dictionary. It serializes last
// and is named by the trailer's Info entry.
func (w *Writer) SetInfo(info *core.Dict) {
	w.info = core.NewIndirect(info)
}

// PageCount returns the number of pages added so far.
func (w *Writer) PageCount() int { return len(w.pages) }

// layout returns every indirect object in serialization order.
func (w *Writer) layout() []*core.Indirect {
	objs := make([]*core.Indirect, 0, 2+len(w.pages)+len(w.aux)+1)
	objs = append(objs, w.catalog, w.pageTree)
	objs = append(objs, w.pages...)
	objs = append(objs, w.aux...)
	if w.info != nil {
		objs = append(objs, w.info)
	}
	return objs
}

// Bytes serializes the document.
func (w *Writer) Bytes() ([]byte, error) {
	tree := w.pageTree.Object().(*core.Dict)
	tree.Set("Kids", w.kids)
	tree.Set("Count", core.Integer(len(w.pages)))

	objs := w.layout()
	for i, obj := range objs {
		if err := obj.Assign(core.ObjectID{Number: i + 1, Generation: 0}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", w.version)
	buf.Write(binaryComment)

	offsets := make([]int64, len(objs))
	for i, obj := range objs {
		offsets[i] = int64(buf.Len())
		id, _ := obj.ID()
		fmt.Fprintf(&buf, "%d %d obj\n", id.Number, id.Generation)
		body, err := core.Encode(obj.Object())
		if err != nil {
			return nil, fmt.Errorf("serialize object %s: %w", id, err)
		}
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}

	xrefAt := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
	}

	trailer, err := w.trailerDict(len(objs), buf.Bytes())
	if err != nil {
		return nil, err
	}
	buf.WriteString("trailer\n")
	tb, err := core.Encode(trailer)
	if err != nil {
		return nil, err
	}
	buf.Write(tb)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefAt)

	return buf.Bytes(), nil
}

// trailerDict builds the trailer: object count, the root and info
// references, and a file identifier derived from the serialized bodies.
func (w *Writer) trailerDict(count int, body []byte) (*core.Dict, error) {
	trailer := core.NewDict()
	trailer.Set("Size", core.Integer(count+1))

	root, err := w.catalog.Ref()
	if err != nil {
		return nil, err
	}
	trailer.Set("Root", root)

	if w.info != nil {
		info, err := w.info.Ref()
		if err != nil {
			return nil, err
		}
		trailer.Set("Info", info)
	}

	sum := md5.Sum(body)
	fileID := core.String(sum[:])
	trailer.Set("ID", core.Array{fileID, fileID})
	return trailer, nil
}

// WriteTo serializes the document into out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	data, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	return int64(n), err
}
