package core

import (
	"bytes"
	"io"
)

// Cursor provides forward-biased access over a byte source. Bytes are
// pulled from the source lazily: a recognizer may look arbitrarily far
// ahead without consuming, and only the bytes it inspected are buffered.
// Large files are therefore never loaded wholesale.
type Cursor struct {
	src  io.Reader
	buf  []byte
	pos  int64 // absolute offset of the next unconsumed byte
	seen bool  // no more bytes will arrive from the source
	err  error // first non-EOF failure reported by the source
}

// A source stalling this many times in a row without delivering bytes or
// an error is treated as broken.
const maxEmptyReads = 100

// NewCursor wraps a reader positioned at source offset 0.
func NewCursor(r io.Reader) *Cursor {
	return &Cursor{src: r}
}

// NewCursorAt wraps a reader whose next byte sits at the given absolute
// source offset, so Tell reflects true file positions.
func NewCursorAt(r io.Reader, offset int64) *Cursor {
	return &Cursor{src: r, pos: offset}
}

// NewBytesCursor wraps an in-memory byte slice.
func NewBytesCursor(data []byte) *Cursor {
	return &Cursor{src: bytes.NewReader(data)}
}

// Tell returns the absolute offset of the next unconsumed byte: the true
// source position minus any unconsumed lookahead.
func (c *Cursor) Tell() int64 { return c.pos }

// fill pulls bytes from the source until at least n are buffered or the
// source is exhausted. It returns the number of buffered bytes. A non-EOF
// read failure ends filling and is stashed for Read/Skip to report.
func (c *Cursor) fill(n int) int {
	empty := 0
	for len(c.buf) < n && !c.seen {
		want := n - len(c.buf)
		if want < 512 {
			want = 512
		}
		chunk := make([]byte, want)
		got, err := c.src.Read(chunk)
		c.buf = append(c.buf, chunk[:got]...)
		switch {
		case err == io.EOF:
			c.seen = true
		case err != nil:
			c.seen = true
			c.err = err
		case got == 0:
			if empty++; empty >= maxEmptyReads {
				c.seen = true
				c.err = io.ErrNoProgress
			}
		default:
			empty = 0
		}
	}
	return len(c.buf)
}

// Err returns the first non-EOF failure reported by the source, or nil.
// Lookahead treats a failed source as exhausted; Err distinguishes true
// end of input from a broken source.
func (c *Cursor) Err() error { return c.err }

// ByteAt returns the byte i positions ahead of the cursor without
// consuming anything. ok is false when the source ends before it.
func (c *Cursor) ByteAt(i int) (byte, bool) {
	if c.fill(i+1) <= i {
		return 0, false
	}
	return c.buf[i], true
}

// Peek returns up to n bytes of lookahead without consuming them. The
// slice is shorter than n when the source ends first.
func (c *Cursor) Peek(n int) []byte {
	have := c.fill(n)
	if have > n {
		have = n
	}
	return c.buf[:have]
}

// HasPrefix reports whether the upcoming bytes start with p.
func (c *Cursor) HasPrefix(p []byte) bool {
	return bytes.HasPrefix(c.Peek(len(p)), p)
}

// Read consumes and returns exactly n bytes. When the source holds fewer,
// it returns what was available together with ErrUnexpectedEOF, since a
// short read here always means a mandatory token was truncated.
func (c *Cursor) Read(n int) ([]byte, error) {
	have := c.fill(n)
	if have > n {
		have = n
	}
	out := make([]byte, have)
	copy(out, c.buf[:have])
	c.buf = c.buf[have:]
	c.pos += int64(have)
	if have < n {
		if c.err != nil {
			return out, c.err
		}
		return out, ErrUnexpectedEOF
	}
	return out, nil
}

// Skip consumes n bytes, erroring like Read on truncation.
func (c *Cursor) Skip(n int) error {
	_, err := c.Read(n)
	return err
}

// AtEOF reports whether no unconsumed bytes remain.
func (c *Cursor) AtEOF() bool {
	return c.fill(1) == 0
}

// SkipWhitespace consumes the run of whitespace bytes at the cursor and
// returns its length.
func (c *Cursor) SkipWhitespace() int {
	n := 0
	for {
		b, ok := c.ByteAt(n)
		if !ok || !isWhitespace(b) {
			break
		}
		n++
	}
	if n > 0 {
		c.Skip(n)
	}
	return n
}
