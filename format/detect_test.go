package format

import (
	"bytes"
	"testing"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"clean header", []byte("%PDF-1.4\n%binary\n"), true},
		{"leading junk", append([]byte("\xef\xbb\xbfsome junk\n"), []byte("%PDF-1.7\n")...), true},
		{"not a pdf", []byte("GIF89a..."), false},
		{"empty", nil, false},
		{"magic outside window", append(bytes.Repeat([]byte{'x'}, 2000), []byte("%PDF-1.4")...), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPDF(tt.data); got != tt.want {
				t.Errorf("IsPDF = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	v, err := Version([]byte("%PDF-1.7\nrest"))
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.7" {
		t.Errorf("version = %q", v)
	}

	if _, err := Version([]byte("%PDF-x.y\n")); err == nil {
		t.Error("expected error for a malformed version")
	}
	if _, err := Version([]byte("plain text")); err == nil {
		t.Error("expected error when the magic is absent")
	}
	if _, err := Version([]byte("%PDF-")); err == nil {
		t.Error("expected error for a truncated header")
	}
}
