package resolver

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/folio/core"
)

// fileBuilder lays out indirect objects in a buffer and records where each
// one starts, standing in for a real file plus its parsed xref table.
type fileBuilder struct {
	buf  bytes.Buffer
	xref *core.XRefTable
}

func newFileBuilder() *fileBuilder {
	fb := &fileBuilder{
		xref: &core.XRefTable{Offsets: make(map[core.ObjectID]int64)},
	}
	fb.buf.WriteString("%PDF-1.4\n")
	return fb
}

func (fb *fileBuilder) add(num int, body string) {
	fb.xref.Offsets[core.ObjectID{Number: num, Generation: 0}] = int64(fb.buf.Len())
	fb.buf.WriteString(body)
	fb.buf.WriteString("\n")
}

func (fb *fileBuilder) resolver(opts ...Option) *Resolver {
	return New(bytes.NewReader(fb.buf.Bytes()), fb.xref, opts...)
}

func ref(num int) core.Reference {
	return core.Reference{Number: num, Generation: 0}
}

func TestResolveScalar(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj 42 endobj")
	r := fb.resolver()

	obj, err := r.Resolve(ref(1))
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := obj.(core.Integer); !ok || n != 42 {
		t.Errorf("resolved %v (%T)", obj, obj)
	}
}

func TestResolveMissingIsNull(t *testing.T) {
	fb := newFileBuilder()
	r := fb.resolver()

	obj, err := r.Resolve(ref(99))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := obj.(core.Null); !ok {
		t.Errorf("resolved %T, want Null", obj)
	}
}

func TestResolveIdentityMismatch(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "2 0 obj 42 endobj") // table says 1, body says 2
	r := fb.resolver()

	if _, err := r.Resolve(ref(1)); err == nil {
		t.Error("expected identity mismatch error")
	}
}

func TestResolveStreamWithDirectLength(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Length 3>>\nstream\nBob\nendstream\nendobj")
	r := fb.resolver()

	obj, err := r.Resolve(ref(1))
	if err != nil {
		t.Fatal(err)
	}
	s, ok := obj.(*core.Stream)
	if !ok {
		t.Fatalf("resolved %T, want *Stream", obj)
	}
	if string(s.Data) != "Bob" {
		t.Errorf("payload = %q", s.Data)
	}
}

func TestResolveStreamWithIndirectLength(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Length 2 0 R>>\nstream\nhello\nendstream\nendobj")
	fb.add(2, "2 0 obj 5 endobj")
	r := fb.resolver()

	obj, err := r.Resolve(ref(1))
	if err != nil {
		t.Fatal(err)
	}
	s, ok := obj.(*core.Stream)
	if !ok {
		t.Fatalf("resolved %T, want *Stream", obj)
	}
	if string(s.Data) != "hello" {
		t.Errorf("payload = %q", s.Data)
	}
	// Completing the stream pins the Length entry to the concrete size.
	if n, _ := s.Dict.GetInt("Length"); n != 5 {
		t.Errorf("Length = %v, want 5", n)
	}
}

func TestResolveStreamSelfReferentialLength(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Length 1 0 R>>\nstream\nxx\nendstream\nendobj")
	r := fb.resolver()

	var valErr *core.ValueError
	if _, err := r.Resolve(ref(1)); !errors.As(err, &valErr) {
		t.Errorf("got %v, want ValueError", err)
	}
}

func TestMaterializeGraph(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Type /Catalog /Pages 2 0 R>>\nendobj")
	fb.add(2, "2 0 obj\n<</Type /Pages /Kids [3 0 R] /Count 1>>\nendobj")
	fb.add(3, "3 0 obj\n<</Type /Page /MediaBox [0 0 612 792]>>\nendobj")
	r := fb.resolver()

	obj, err := r.MaterializeID(core.ObjectID{Number: 1, Generation: 0})
	if err != nil {
		t.Fatal(err)
	}
	catalog := obj.(*core.Dict)
	pages, ok := catalog.GetDict("Pages")
	if !ok {
		t.Fatalf("Pages did not materialize: %v", catalog.Get("Pages"))
	}
	kids, _ := pages.GetArray("Kids")
	page, ok := kids.Get(0).(*core.Dict)
	if !ok {
		t.Fatalf("kid did not materialize: %v", kids.Get(0))
	}
	if n, _ := page.GetName("Type"); n != "Page" {
		t.Errorf("page Type = %v", n)
	}
}

func TestMaterializeCycleTerminates(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Name (a) /Next 2 0 R>>\nendobj")
	fb.add(2, "2 0 obj\n<</Name (b) /Next 1 0 R>>\nendobj")
	r := fb.resolver()

	obj, err := r.MaterializeID(core.ObjectID{Number: 1, Generation: 0})
	if err != nil {
		t.Fatal(err)
	}
	a := obj.(*core.Dict)
	b, ok := a.GetDict("Next")
	if !ok {
		t.Fatalf("Next did not materialize: %v", a.Get("Next"))
	}
	// The edge back to the object on the active path stays a reference.
	back, ok := b.GetReference("Next")
	if !ok {
		t.Fatalf("cycle edge is %v, want an unresolved reference", b.Get("Next"))
	}
	if back.Number != 1 {
		t.Errorf("cycle edge points at %v", back)
	}
}

func TestMaterializeSharedObjectResolvesTwice(t *testing.T) {
	// The same object referenced from two places is not a cycle: both
	// occurrences materialize.
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</A 3 0 R /B 3 0 R>>\nendobj")
	fb.add(3, "3 0 obj (shared) endobj")
	r := fb.resolver()

	obj, err := r.MaterializeID(core.ObjectID{Number: 1, Generation: 0})
	if err != nil {
		t.Fatal(err)
	}
	d := obj.(*core.Dict)
	for _, key := range []core.Name{"A", "B"} {
		if s, ok := d.GetString(key); !ok || s != "shared" {
			t.Errorf("%s = %v, want (shared)", key, d.Get(key))
		}
	}
}

func TestMaterializeAt(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Self 1 0 R /Other 2 0 R>>\nendobj")
	fb.add(2, "2 0 obj (leaf) endobj")
	r := fb.resolver()

	id, obj, err := r.MaterializeAt(fb.xref.Offsets[core.ObjectID{Number: 1, Generation: 0}])
	if err != nil {
		t.Fatal(err)
	}
	if id.Number != 1 {
		t.Errorf("id = %v", id)
	}
	d := obj.(*core.Dict)
	if _, ok := d.GetReference("Self"); !ok {
		t.Errorf("Self = %v, want an unresolved reference", d.Get("Self"))
	}
	if s, _ := d.GetString("Other"); s != "leaf" {
		t.Errorf("Other = %v", d.Get("Other"))
	}
}

func TestMaterializeMissingReferenceIsNull(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj\n<</Gone 9 0 R>>\nendobj")
	r := fb.resolver()

	obj, err := r.MaterializeID(core.ObjectID{Number: 1, Generation: 0})
	if err != nil {
		t.Fatal(err)
	}
	d := obj.(*core.Dict)
	if _, ok := d.Get("Gone").(core.Null); !ok {
		t.Errorf("Gone = %v, want Null", d.Get("Gone"))
	}
}

func TestMaterializeDepthCap(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "1 0 obj [[[[[1]]]]] endobj")
	r := fb.resolver(WithMaxDepth(3))

	_, err := r.MaterializeID(core.ObjectID{Number: 1, Generation: 0})
	if err == nil {
		t.Fatal("expected depth error")
	}
	if !strings.Contains(err.Error(), "deeper than") {
		t.Errorf("error = %v", err)
	}
}

func TestObjectAtReportsOffsetErrors(t *testing.T) {
	fb := newFileBuilder()
	fb.add(1, "not an object")
	r := fb.resolver()

	if _, err := r.Resolve(ref(1)); !core.IsFormatError(err) {
		t.Errorf("got %v, want FormatError", err)
	}
}
