// Package format sniffs file content for the PDF magic and extracts the
// header version without parsing anything else.
package format

import (
	"bytes"
	"fmt"
)

// magic is the header signature.
var magic = []byte("%PDF-")

// headerWindow is how far into the file the header may sit. Some
// producers prepend junk; readers tolerate it within this window.
const headerWindow = 1024

// IsPDF reports whether data opens with a PDF header, allowing the
// header to sit anywhere inside the tolerance window.
func IsPDF(data []byte) bool {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, magic)
}

// Version extracts the header version, such as "1.4".
func Version(data []byte) (string, error) {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	i := bytes.Index(window, magic)
	if i < 0 {
		return "", fmt.Errorf("no PDF header in the first %d bytes", headerWindow)
	}
	rest := data[i+len(magic):]
	if len(rest) < 3 {
		return "", fmt.Errorf("header truncated before the version")
	}
	major, dot, minor := rest[0], rest[1], rest[2]
	if major < '0' || major > '9' || dot != '.' || minor < '0' || minor > '9' {
		return "", fmt.Errorf("malformed header version %q", rest[:3])
	}
	return string(rest[:3]), nil
}
