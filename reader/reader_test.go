package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/folio/core"
	"github.com/tsawler/folio/writer"
)

func sampleDoc(t *testing.T) []byte {
	t.Helper()
	w := writer.New()
	page := core.NewDict()
	page.Set("Type", core.Name("Page"))
	page.Set("MediaBox", core.Array{
		core.Integer(0), core.Integer(0), core.Integer(612), core.Integer(792),
	})
	w.AddPage(page)

	info := core.NewDict()
	info.Set("Producer", core.String("folio"))
	w.SetInfo(info)

	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestNewReader(t *testing.T) {
	data := sampleDoc(t)
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	if r.Version() != "1.4" {
		t.Errorf("Version = %q", r.Version())
	}
	if r.Size() != int64(len(data)) {
		t.Errorf("Size = %d", r.Size())
	}
	if size, _ := r.Trailer().GetInt("Size"); size != 5 {
		t.Errorf("trailer Size = %d", size)
	}
	if r.XRef().Len() != 4 {
		t.Errorf("xref entries = %d", r.XRef().Len())
	}
}

func TestCatalogAndInfo(t *testing.T) {
	data := sampleDoc(t)
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	catalog, err := r.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if typ, _ := catalog.GetName("Type"); typ != "Catalog" {
		t.Errorf("catalog Type = %v", typ)
	}

	info, err := r.Info()
	if err != nil {
		t.Fatal(err)
	}
	if producer, _ := info.GetString("Producer"); producer != "folio" {
		t.Errorf("Producer = %q", producer)
	}
}

func TestInfoAbsent(t *testing.T) {
	w := writer.New()
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	info, err := r.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Errorf("Info = %v, want nil", info)
	}
}

func TestObjectAt(t *testing.T) {
	data := sampleDoc(t)
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	off, ok := r.XRef().Get(core.ObjectID{Number: 1, Generation: 0})
	if !ok {
		t.Fatal("no entry for object 1")
	}
	id, obj, err := r.ObjectAt(off)
	if err != nil {
		t.Fatal(err)
	}
	if id.Number != 1 {
		t.Errorf("id = %v", id)
	}
	if _, ok := obj.(*core.Dict); !ok {
		t.Errorf("object 1 is %T", obj)
	}
}

func TestOpenAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := os.WriteFile(path, sampleDoc(t), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Catalog(); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestHeaderValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"too short", "%PDF-1."},
		{"wrong magic", "%EPS-1.4\nrest of file"},
		{"bad version", "%PDF-x.4\nrest of file"},
		{"no terminator", "%PDF-1.44 more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader([]byte(tt.data)), int64(len(tt.data)))
			if !core.IsFormatError(err) {
				t.Errorf("got %v, want FormatError", err)
			}
		})
	}
}
