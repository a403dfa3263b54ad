package core

import "fmt"

// ParseIndirectObject reads one indirect object at the cursor: the
// "N G obj" header, the body value, and the closing endobj keyword.
//
// A dictionary body followed by the stream keyword is returned together
// with a StreamMarker instead of being read through: the payload length
// may live behind a reference, so the caller completes the stream with
// CompleteStream once the length is concrete and checks for endobj after
// the payload.
func ParseIndirectObject(c *Cursor) (ObjectID, Object, *StreamMarker, error) {
	num, err := parseHeaderInt(c)
	if err != nil {
		return ObjectID{}, nil, nil, err
	}
	gen, err := parseHeaderInt(c)
	if err != nil {
		return ObjectID{}, nil, nil, err
	}
	id := ObjectID{Number: num, Generation: gen}
	if !id.Valid() {
		return ObjectID{}, nil, nil, &IdentityError{Msg: fmt.Sprintf("object header has invalid identity %d %d", num, gen)}
	}

	c.SkipWhitespace()
	if !c.HasPrefix([]byte("obj")) {
		return ObjectID{}, nil, nil, formatErrf(c.Tell(), "expected obj keyword, found %q", c.Peek(8))
	}
	c.Skip(3)

	tok := NewTokenizer(c)
	obj, err := tok.Next()
	if err != nil {
		return ObjectID{}, nil, nil, err
	}

	if _, ok := obj.(*Dict); ok {
		marker, err := tok.StreamMarker()
		if err != nil {
			return ObjectID{}, nil, nil, err
		}
		if marker != nil {
			return id, obj, marker, nil
		}
	}

	c.SkipWhitespace()
	if !c.HasPrefix([]byte("endobj")) {
		return ObjectID{}, nil, nil, formatErrf(c.Tell(), "object %s not closed by endobj", id)
	}
	c.Skip(len("endobj"))
	return id, obj, nil, nil
}

// parseHeaderInt reads a bare digit run. Header integers are not general
// numerics: signs and decimal points have no business in an object header.
func parseHeaderInt(c *Cursor) (int, error) {
	c.SkipWhitespace()
	n, i := 0, 0
	for {
		b, ok := c.ByteAt(i)
		if !ok || !isDigit(b) {
			break
		}
		n = n*10 + int(b-'0')
		i++
	}
	if i == 0 {
		return 0, formatErrf(c.Tell(), "expected an object header number, found %q", c.Peek(8))
	}
	c.Skip(i)
	return n, nil
}
