package core

import "testing"

func TestTextPlainASCII(t *testing.T) {
	got, err := String("Hello").Text()
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello" {
		t.Errorf("Text = %q", got)
	}
}

func TestTextUTF16BE(t *testing.T) {
	// BOM followed by "Héllo" in UTF-16BE.
	raw := String("\xFE\xFF\x00H\x00\xE9\x00l\x00l\x00o")
	got, err := raw.Text()
	if err != nil {
		t.Fatal(err)
	}
	if got != "Héllo" {
		t.Errorf("Text = %q, want %q", got, "Héllo")
	}
}

func TestTextStringRoundTrip(t *testing.T) {
	tests := []string{"plain", "naïve", "日本語"}
	for _, want := range tests {
		t.Run(want, func(t *testing.T) {
			s, err := TextString(want)
			if err != nil {
				t.Fatal(err)
			}
			got, err := s.Text()
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("round trip = %q, want %q", got, want)
			}
		})
	}
}

func TestTextStringASCIIStaysPlain(t *testing.T) {
	s, err := TextString("Producer")
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "Producer" {
		t.Errorf("stored form = %q, want plain bytes", string(s))
	}
}
