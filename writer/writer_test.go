package writer

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/folio/core"
	"github.com/tsawler/folio/reader"
)

func minimalPage() *core.Dict {
	page := core.NewDict()
	page.Set("Type", core.Name("Page"))
	page.Set("MediaBox", core.Array{
		core.Integer(0), core.Integer(0), core.Integer(612), core.Integer(792),
	})
	return page
}

func TestBytesLayout(t *testing.T) {
	w := New()
	w.AddPage(minimalPage())

	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "%PDF-1.4\n%\xE2\xE3\xCF\xD3\n") {
		t.Errorf("header = %q", out[:20])
	}
	// Catalog first, page tree second, the page third.
	if !strings.Contains(out, "1 0 obj\n<</Type /Catalog /Pages 2 0 R>>\nendobj\n") {
		t.Error("catalog body missing or out of order")
	}
	if !strings.Contains(out, "2 0 obj\n<</Type /Pages /Kids [3 0 R] /Count 1>>\nendobj\n") {
		t.Error("page tree body missing or out of order")
	}
	if !strings.Contains(out, "3 0 obj\n<</Type /Page /MediaBox [0 0 612 792] /Parent 2 0 R>>\nendobj\n") {
		t.Error("page body missing or out of order")
	}

	if !strings.Contains(out, "xref\n0 4\n0000000000 65535 f \n") {
		t.Error("xref header or free row missing")
	}
	if !strings.HasSuffix(out, "%%EOF\n") {
		t.Errorf("file tail = %q", out[len(out)-20:])
	}
}

func TestXRefOffsetsPointAtObjects(t *testing.T) {
	w := New()
	w.AddPage(minimalPage())
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	table, err := core.ReadXRef(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	for num := 1; num <= 3; num++ {
		id := core.ObjectID{Number: num, Generation: 0}
		off, ok := table.Get(id)
		if !ok {
			t.Fatalf("no xref entry for object %d", num)
		}
		prefix := []byte(fmt.Sprintf("%d 0 obj", num))
		if !bytes.HasPrefix(data[off:], prefix) {
			t.Errorf("offset %d for object %d points at %q", off, num, data[off:off+10])
		}
	}
}

func TestTrailerEntries(t *testing.T) {
	w := New()
	w.AddPage(minimalPage())
	info := core.NewDict()
	info.Set("Producer", core.String("folio"))
	w.SetInfo(info)

	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	table, err := core.ReadXRef(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	if size, _ := table.Trailer.GetInt("Size"); size != 5 {
		t.Errorf("Size = %d, want 5", size)
	}
	if root, _ := table.Trailer.GetReference("Root"); root.Number != 1 {
		t.Errorf("Root = %v", root)
	}
	if inf, ok := table.Trailer.GetReference("Info"); !ok || inf.Number != 4 {
		t.Errorf("Info = %v, %v", inf, ok)
	}

	ids, ok := table.Trailer.GetArray("ID")
	if !ok || ids.Len() != 2 {
		t.Fatalf("ID = %v", table.Trailer.Get("ID"))
	}
	first, _ := ids.Get(0).(core.String)
	second, _ := ids.Get(1).(core.String)
	if len(first) != 16 || first != second {
		t.Errorf("ID pair = %q, %q", first, second)
	}
}

func TestRoundTrip(t *testing.T) {
	w := New()
	content := core.NewStream(nil, []byte("BT /F1 12 Tf 72 720 Td (hi) Tj ET"))
	contentRef := w.AddObject(content)

	page := minimalPage()
	page.Set("Contents", contentRef)
	w.AddPage(page)

	info := core.NewDict()
	info.Set("Title", core.String("Round Trip"))
	w.SetInfo(info)

	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	r, err := reader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if r.Version() != "1.4" {
		t.Errorf("version = %q", r.Version())
	}

	catalog, err := r.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	pagesRef, ok := catalog.GetReference("Pages")
	if !ok {
		t.Fatalf("catalog Pages = %v", catalog.Get("Pages"))
	}
	tree, err := r.Resolve(pagesRef)
	if err != nil {
		t.Fatal(err)
	}
	count, _ := tree.(*core.Dict).GetInt("Count")
	if count != 1 {
		t.Errorf("page count = %d", count)
	}

	pageObj, err := r.Materialize(tree.(*core.Dict).Get("Kids"))
	if err != nil {
		t.Fatal(err)
	}
	kids := pageObj.(core.Array)
	got := kids.Get(0).(*core.Dict)
	stream, ok := got.Get("Contents").(*core.Stream)
	if !ok {
		t.Fatalf("Contents = %v", got.Get("Contents"))
	}
	if !bytes.Contains(stream.Data, []byte("(hi) Tj")) {
		t.Errorf("content payload = %q", stream.Data)
	}

	docInfo, err := r.Info()
	if err != nil {
		t.Fatal(err)
	}
	if title, _ := docInfo.GetString("Title"); title != "Round Trip" {
		t.Errorf("Title = %q", title)
	}
}

func TestUnassignedReferenceInBodyFails(t *testing.T) {
	w := New()
	page := minimalPage()
	// An indirect that was never registered with the writer has no
	// identity at serialization time.
	stray := core.NewIndirect(core.Integer(1))
	page.Set("Stray", stray)
	w.AddPage(page)

	_, err := w.Bytes()
	if err == nil {
		t.Fatal("expected identity error")
	}
}

func TestEmptyDocument(t *testing.T) {
	data, err := New().Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "/Kids [] /Count 0") {
		t.Error("empty page tree not serialized")
	}
}
