package core

import "io"

// consumer accumulates the elements of one open container. The assembler
// keeps a stack of these instead of recursing, since nesting depth is
// unbounded and tokens arrive incrementally from a single forward cursor.
type consumer interface {
	consume(obj Object)

	// end returns the width of the container's closing delimiter when it
	// is next on the cursor, or 0 otherwise.
	end(c *Cursor) int

	build(offset int64) (Object, error)
}

type arrayConsumer struct {
	elems Array
}

func (a *arrayConsumer) consume(obj Object) { a.elems = append(a.elems, obj) }

func (a *arrayConsumer) end(c *Cursor) int {
	if b, ok := c.ByteAt(0); ok && b == ']' {
		return 1
	}
	return 0
}

func (a *arrayConsumer) build(int64) (Object, error) {
	if a.elems == nil {
		a.elems = Array{}
	}
	return a.elems, nil
}

type dictConsumer struct {
	items []Object
}

func (d *dictConsumer) consume(obj Object) { d.items = append(d.items, obj) }

func (d *dictConsumer) end(c *Cursor) int {
	if c.HasPrefix([]byte(">>")) {
		return 2
	}
	return 0
}

func (d *dictConsumer) build(offset int64) (Object, error) {
	if len(d.items)%2 != 0 {
		return nil, formatErrf(offset, "dictionary with odd number of entries")
	}
	dict := NewDict()
	for i := 0; i < len(d.items); i += 2 {
		key, ok := d.items[i].(Name)
		if !ok {
			return nil, formatErrf(offset, "dictionary key is %s, not a name", d.items[i].Kind())
		}
		dict.Set(key, d.items[i+1])
	}
	return dict, nil
}

// Tokenizer turns the flat token stream of a cursor into finished values.
// Containers are assembled by an explicit stack machine: each recognized
// value is routed to the innermost open container, and a container whose
// closing delimiter comes up is built and fed to its parent.
type Tokenizer struct {
	cur   *Cursor
	stack []consumer
}

// NewTokenizer creates a tokenizer reading from c.
func NewTokenizer(c *Cursor) *Tokenizer {
	return &Tokenizer{cur: c}
}

// Cursor returns the underlying cursor.
func (t *Tokenizer) Cursor() *Cursor { return t.cur }

// match tries every recognizer in priority order.
func (t *Tokenizer) match() (*token, error) {
	for _, r := range recognizers {
		tok, err := r.match(t.cur)
		if err != nil {
			return nil, err
		}
		if tok != nil {
			return tok, nil
		}
	}
	return nil, nil
}

// Next returns the next complete top-level value, or io.EOF when the
// source is exhausted outside any container.
func (t *Tokenizer) Next() (Object, error) {
	for {
		t.cur.SkipWhitespace()
		if t.cur.AtEOF() {
			if len(t.stack) > 0 {
				return nil, formatErrf(t.cur.Tell(), "input ends inside an open container")
			}
			return nil, io.EOF
		}

		var obj Object
		tok, err := t.match()
		if err != nil {
			return nil, err
		}
		switch {
		case tok == nil:
			// No production matches here. The only legal bytes are the
			// closing delimiter of the innermost open container.
			if len(t.stack) == 0 {
				return nil, formatErrf(t.cur.Tell(), "unexpected bytes %q", t.cur.Peek(8))
			}
			top := t.stack[len(t.stack)-1]
			used := top.end(t.cur)
			if used == 0 {
				return nil, formatErrf(t.cur.Tell(), "unexpected bytes %q inside container", t.cur.Peek(8))
			}
			t.cur.Skip(used)
			t.stack = t.stack[:len(t.stack)-1]
			obj, err = top.build(t.cur.Tell())
			if err != nil {
				return nil, err
			}
		case tok.open == containerArray:
			t.cur.Skip(tok.used)
			t.stack = append(t.stack, &arrayConsumer{})
			continue
		case tok.open == containerDict:
			t.cur.Skip(tok.used)
			t.stack = append(t.stack, &dictConsumer{})
			continue
		default:
			t.cur.Skip(tok.used)
			obj = tok.obj
		}

		// Route the finished value to the innermost container, closing
		// containers whose delimiter follows it.
		for len(t.stack) > 0 {
			top := t.stack[len(t.stack)-1]
			top.consume(obj)
			t.cur.SkipWhitespace()
			used := top.end(t.cur)
			if used == 0 {
				obj = nil
				break
			}
			t.cur.Skip(used)
			t.stack = t.stack[:len(t.stack)-1]
			obj, err = top.build(t.cur.Tell())
			if err != nil {
				return nil, err
			}
		}
		if obj != nil {
			return obj, nil
		}
	}
}

// StreamMarker is the tokenizer's placeholder for a stream payload whose
// length cannot be known at tokenize time: the Length entry may itself be
// a reference, resolvable only against the object graph. It carries the
// absolute offset of the first payload byte so a second pass can complete
// the stream once the length is concrete.
type StreamMarker struct {
	PayloadOffset int64
}

// StreamMarker checks whether a stream body follows the value that was
// just produced. On a match it consumes the keyword and its end-of-line
// and returns the marker. After the keyword only "\n" or "\r\n" is
// permitted; a bare "\r" is malformed.
func (t *Tokenizer) StreamMarker() (*StreamMarker, error) {
	t.cur.SkipWhitespace()
	if !t.cur.HasPrefix([]byte("stream")) {
		return nil, nil
	}
	b, ok := t.cur.ByteAt(len("stream"))
	if !ok {
		return nil, ErrUnexpectedEOF
	}
	switch b {
	case '\n':
		t.cur.Skip(len("stream") + 1)
	case '\r':
		if nxt, ok := t.cur.ByteAt(len("stream") + 1); !ok || nxt != '\n' {
			return nil, formatErrf(t.cur.Tell(), "bare CR after stream keyword")
		}
		t.cur.Skip(len("stream") + 2)
	default:
		return nil, formatErrf(t.cur.Tell(), "stream keyword not followed by end-of-line")
	}
	return &StreamMarker{PayloadOffset: t.cur.Tell()}, nil
}

// CompleteStream reads a stream payload of exactly length bytes from a
// cursor positioned at the payload offset, then checks the closing frame:
// an end-of-line marker ("\n", "\r\n", or "\r") followed by the literal
// "endstream".
func CompleteStream(c *Cursor, length int) ([]byte, error) {
	if length < 0 {
		return nil, &ValueError{Msg: "negative stream length"}
	}
	data, err := c.Read(length)
	if err != nil {
		return nil, err
	}
	b, ok := c.ByteAt(0)
	if !ok {
		return nil, ErrUnexpectedEOF
	}
	switch b {
	case '\n':
		c.Skip(1)
	case '\r':
		if nxt, ok := c.ByteAt(1); ok && nxt == '\n' {
			c.Skip(2)
		} else {
			c.Skip(1)
		}
	default:
		return nil, formatErrf(c.Tell(), "stream payload not followed by end-of-line")
	}
	if !c.HasPrefix([]byte("endstream")) {
		return nil, formatErrf(c.Tell(), "stream not closed by endstream")
	}
	c.Skip(len("endstream"))
	return data, nil
}
