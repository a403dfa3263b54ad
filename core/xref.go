package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// xrefTailChunk is how much of the file tail is scanned backward for the
// startxref and trailer markers.
const xrefTailChunk = 2048

// XRefTable is the parsed cross-reference index of a file: the byte offset
// of every in-use object, the trailer dictionary, and the offset the
// startxref marker pointed at.
type XRefTable struct {
	Offsets   map[ObjectID]int64
	Trailer   *Dict
	StartXRef int64
}

// Get returns the byte offset recorded for an identity.
func (x *XRefTable) Get(id ObjectID) (int64, bool) {
	off, ok := x.Offsets[id]
	return off, ok
}

// Len returns the number of in-use entries.
func (x *XRefTable) Len() int { return len(x.Offsets) }

// ReadXRef locates and parses the cross-reference table and trailer of a
// file of the given size. Only single-segment files are supported: a
// trailer carrying a Prev entry (an incrementally updated file) is
// rejected as unsupported.
func ReadXRef(r io.ReadSeeker, size int64) (*XRefTable, error) {
	tail, err := readTail(r, size)
	if err != nil {
		return nil, err
	}

	eof := lastAnchoredIndex(tail, []byte("%%EOF"))
	if eof < 0 {
		return nil, formatErrf(-1, "no %%EOF marker at end of file")
	}
	sx := lastAnchoredIndex(tail[:eof], []byte("startxref"))
	if sx < 0 {
		return nil, formatErrf(-1, "no startxref marker before %%EOF")
	}
	fields := bytes.Fields(tail[sx+len("startxref") : eof])
	if len(fields) == 0 {
		return nil, formatErrf(-1, "startxref marker not followed by an offset")
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return nil, formatErrf(-1, "malformed startxref offset %q", fields[0])
	}

	tr := lastAnchoredIndex(tail[:eof], []byte("trailer"))
	if tr < 0 {
		return nil, formatErrf(-1, "no trailer marker before %%EOF")
	}
	trailer, err := parseTrailer(tail[tr+len("trailer"):])
	if err != nil {
		return nil, err
	}
	if trailer.Has("Prev") {
		return nil, formatErrf(-1, "trailer has a Prev entry: incrementally updated files are not supported")
	}

	table := &XRefTable{
		Offsets:   make(map[ObjectID]int64),
		Trailer:   trailer,
		StartXRef: offset,
	}
	if err := readXRefSection(r, offset, table); err != nil {
		return nil, err
	}
	return table, nil
}

// readTail returns the last xrefTailChunk bytes of the file (or the whole
// file when it is smaller).
func readTail(r io.ReadSeeker, size int64) ([]byte, error) {
	n := int64(xrefTailChunk)
	if size < n {
		n = size
	}
	if _, err := r.Seek(size-n, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to file tail: %w", err)
	}
	tail := make([]byte, n)
	if _, err := io.ReadFull(r, tail); err != nil {
		return nil, fmt.Errorf("read file tail: %w", err)
	}
	return tail, nil
}

// lastAnchoredIndex finds the last occurrence of pat in data that is
// immediately followed by an end-of-line byte. A match at the very end of
// data does not count: without the line break it cannot be the marker
// line the backward search is anchored on.
func lastAnchoredIndex(data, pat []byte) int {
	end := len(data)
	for {
		i := bytes.LastIndex(data[:end], pat)
		if i < 0 {
			return -1
		}
		j := i + len(pat)
		if j < len(data) && (data[j] == '\n' || data[j] == '\r') {
			return i
		}
		end = i
	}
}

// parseTrailer tokenizes the trailer body as a single dictionary.
func parseTrailer(body []byte) (*Dict, error) {
	tok := NewTokenizer(NewBytesCursor(body))
	obj, err := tok.Next()
	if err != nil {
		return nil, fmt.Errorf("parse trailer: %w", err)
	}
	dict, ok := obj.(*Dict)
	if !ok {
		return nil, formatErrf(-1, "trailer is a %s, not a dictionary", obj.Kind())
	}
	return dict, nil
}

// readXRefSection parses the table at the given offset: the literal xref
// line, then one or more subsections, each a "start count" header followed
// by exactly count fixed-format entry lines. Only in-use ("n") entries are
// retained.
func readXRefSection(r io.ReadSeeker, offset int64, table *XRefTable) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to xref section: %w", err)
	}
	cur := NewCursorAt(r, offset)

	line, err := readLine(cur)
	if err != nil {
		return err
	}
	if string(bytes.TrimSpace(line)) != "xref" {
		return formatErrf(offset, "expected xref keyword, found %q", line)
	}

	for {
		cur.SkipWhitespace()
		if b, ok := cur.ByteAt(0); !ok || !isDigit(b) {
			break
		}
		header, err := readLine(cur)
		if err != nil {
			return err
		}
		fields := bytes.Fields(header)
		if len(fields) != 2 {
			return formatErrf(cur.Tell(), "malformed xref subsection header %q", header)
		}
		start, err := strconv.Atoi(string(fields[0]))
		if err != nil {
			return formatErrf(cur.Tell(), "malformed subsection start %q", fields[0])
		}
		count, err := strconv.Atoi(string(fields[1]))
		if err != nil {
			return formatErrf(cur.Tell(), "malformed subsection count %q", fields[1])
		}

		for i := 0; i < count; i++ {
			entry, err := readLine(cur)
			if err != nil {
				return err
			}
			if err := parseXRefEntry(entry, start+i, table, cur.Tell()); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseXRefEntry decodes one fixed-format row: a 10-digit offset, a
// 5-digit generation, and the in-use flag.
func parseXRefEntry(line []byte, number int, table *XRefTable, pos int64) error {
	fields := bytes.Fields(line)
	if len(fields) != 3 {
		return formatErrf(pos, "malformed xref entry %q", line)
	}
	off, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return formatErrf(pos, "malformed xref offset %q", fields[0])
	}
	gen, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return formatErrf(pos, "malformed xref generation %q", fields[1])
	}
	switch string(fields[2]) {
	case "n":
		table.Offsets[ObjectID{Number: number, Generation: gen}] = off
	case "f":
		// Free entries carry no offset worth keeping.
	default:
		return formatErrf(pos, "unknown xref entry type %q", fields[2])
	}
	return nil
}

// readLine consumes bytes through the next end-of-line marker and returns
// the line without it. "\r\n" counts as a single marker.
func readLine(c *Cursor) ([]byte, error) {
	var out []byte
	for {
		b, ok := c.ByteAt(0)
		if !ok {
			if len(out) == 0 {
				return nil, ErrUnexpectedEOF
			}
			return out, nil
		}
		c.Skip(1)
		if b == '\n' {
			return out, nil
		}
		if b == '\r' {
			if nxt, ok := c.ByteAt(0); ok && nxt == '\n' {
				c.Skip(1)
			}
			return out, nil
		}
		out = append(out, b)
	}
}
