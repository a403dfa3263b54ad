package core

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf16beBOM = []byte{0xFE, 0xFF}

// Text interprets the string as a PDF text string. Strings opening with a
// UTF-16BE byte-order mark are transcoded to UTF-8; everything else is
// returned byte-for-byte, which covers PDFDocEncoding's ASCII range.
func (s String) Text() (string, error) {
	raw := []byte(s)
	if !bytes.HasPrefix(raw, utf16beBOM) {
		return string(raw), nil
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode UTF-16BE text string: %w", err)
	}
	return string(out), nil
}

// TextString builds a String carrying the given text. Plain ASCII is
// stored directly; anything else is stored as UTF-16BE with a byte-order
// mark so readers decode it unambiguously.
func TextString(text string) (String, error) {
	ascii := true
	for i := 0; i < len(text); i++ {
		if text[i] > 0x7F {
			ascii = false
			break
		}
	}
	if ascii {
		return String(text), nil
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	out, _, err := transform.Bytes(enc, []byte(text))
	if err != nil {
		return "", fmt.Errorf("encode UTF-16BE text string: %w", err)
	}
	return String(out), nil
}
