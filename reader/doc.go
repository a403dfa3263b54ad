// Package reader opens PDF files: it validates the header, parses the
// cross-reference table and trailer, and exposes the object graph through
// lazy, cached reference resolution.
package reader
