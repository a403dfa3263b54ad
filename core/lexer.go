package core

import "strconv"

// Byte classes. PDF whitespace is space, tab, LF, FF, CR, and NUL; the
// delimiter set is whitespace plus the bracketing and comment characters.

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\f' || b == '\r' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isTokenBoundary(b byte) bool {
	return isWhitespace(b) || isDelimiter(b)
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

// containerKind marks tokens that open a container instead of producing a
// finished value.
type containerKind int

const (
	containerNone containerKind = iota
	containerArray
	containerDict
)

// token is the outcome of a successful recognizer match: either a finished
// value, or a container opener whose elements follow.
type token struct {
	obj  Object
	used int
	open containerKind
}

// recognizer inspects the cursor without consuming and reports a match.
// A nil token with a nil error means the upcoming bytes belong to some
// other production.
type recognizer interface {
	match(c *Cursor) (*token, error)
}

// recognizers in priority order. The order is a correctness requirement,
// not a preference: a reference and a numeric both begin with a digit run,
// and the longer reference pattern must win; the dictionary opener "<<"
// must be tried before the hex-string "<".
var recognizers = []recognizer{
	booleanRecognizer{},
	referenceRecognizer{},
	numericRecognizer{},
	stringRecognizer{},
	dictOpenRecognizer{},
	hexStringRecognizer{},
	nameRecognizer{},
	nullRecognizer{},
	arrayOpenRecognizer{},
}

// boundaryAt reports whether the token ending at lookahead index i is
// properly terminated: either the source ends there or a delimiter byte
// follows.
func boundaryAt(c *Cursor, i int) bool {
	b, ok := c.ByteAt(i)
	return !ok || isTokenBoundary(b)
}

type booleanRecognizer struct{}

func (booleanRecognizer) match(c *Cursor) (*token, error) {
	if c.HasPrefix([]byte("true")) && boundaryAt(c, 4) {
		return &token{obj: Boolean(true), used: 4}, nil
	}
	if c.HasPrefix([]byte("false")) && boundaryAt(c, 5) {
		return &token{obj: Boolean(false), used: 5}, nil
	}
	return nil, nil
}

type referenceRecognizer struct{}

// scanRefNumber reads a digit run starting at i followed by exactly one
// whitespace byte. It returns the decoded value and the index after the
// whitespace, or ok=false when the pattern is absent.
func scanRefNumber(c *Cursor, i int) (val, next int, ok bool) {
	start := i
	for {
		b, present := c.ByteAt(i)
		if !present || !isDigit(b) {
			break
		}
		val = val*10 + int(b-'0')
		i++
	}
	if i == start {
		return 0, 0, false
	}
	b, present := c.ByteAt(i)
	if !present || !isWhitespace(b) {
		return 0, 0, false
	}
	return val, i + 1, true
}

func (referenceRecognizer) match(c *Cursor) (*token, error) {
	num, i, ok := scanRefNumber(c, 0)
	if !ok {
		return nil, nil
	}
	gen, i, ok := scanRefNumber(c, i)
	if !ok {
		return nil, nil
	}
	if b, present := c.ByteAt(i); !present || b != 'R' {
		return nil, nil
	}
	// The byte after R must be a delimiter, otherwise this is some other
	// token such as a keyword starting with R.
	if b, present := c.ByteAt(i + 1); !present || !isTokenBoundary(b) {
		return nil, nil
	}
	return &token{obj: Reference{Number: num, Generation: gen}, used: i + 1}, nil
}

type numericRecognizer struct{}

func (numericRecognizer) match(c *Cursor) (*token, error) {
	i := 0
	for {
		b, ok := c.ByteAt(i)
		if !ok || !(isDigit(b) || b == '.' || b == '+' || b == '-') {
			break
		}
		i++
	}
	if i == 0 {
		return nil, nil
	}
	if !boundaryAt(c, i) {
		return nil, formatErrf(c.Tell(), "number not terminated by a delimiter")
	}
	text := string(c.Peek(i))
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &token{obj: Integer(v), used: i}, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, formatErrf(c.Tell(), "malformed number %q", text)
	}
	return &token{obj: Real(v), used: i}, nil
}

type stringRecognizer struct{}

func (stringRecognizer) match(c *Cursor) (*token, error) {
	if b, ok := c.ByteAt(0); !ok || b != '(' {
		return nil, nil
	}
	var out []byte
	i := 1
	for {
		b, ok := c.ByteAt(i)
		if !ok {
			return nil, formatErrf(c.Tell(), "string not closed with ')'")
		}
		switch {
		case b == ')':
			return &token{obj: String(out), used: i + 1}, nil
		case b == '\n' || b == '\r':
			// Any raw end-of-line inside a string reads as a single LF.
			if b == '\r' {
				if nxt, ok := c.ByteAt(i + 1); ok && nxt == '\n' {
					i++
				}
			}
			out = append(out, '\n')
		case b == '\\':
			esc, ok := c.ByteAt(i + 1)
			if !ok {
				return nil, formatErrf(c.Tell(), "backslash ends the source")
			}
			switch {
			case esc == '\n' || esc == '\r':
				// Line continuation: the backslash and the end-of-line
				// both disappear.
				i++
				if esc == '\r' {
					if nxt, ok := c.ByteAt(i + 1); ok && nxt == '\n' {
						i++
					}
				}
			case esc == 'n':
				out = append(out, '\n')
				i++
			case esc == 'r':
				out = append(out, '\r')
				i++
			case esc == 't':
				out = append(out, '\t')
				i++
			case esc == 'b':
				out = append(out, '\b')
				i++
			case esc == 'f':
				out = append(out, '\f')
				i++
			case esc == '(' || esc == ')' || esc == '\\':
				out = append(out, esc)
				i++
			case isOctalDigit(esc):
				val := 0
				digits := 0
				for digits < 3 {
					d, ok := c.ByteAt(i + 1 + digits)
					if !ok || !isOctalDigit(d) {
						break
					}
					val = val*8 + int(d-'0')
					digits++
				}
				if val >= 256 {
					return nil, &ValueError{Msg: "octal escape out of range in string"}
				}
				out = append(out, byte(val))
				i += digits
			default:
				// Unknown escape: the backslash is dropped and the byte
				// kept, as consumers of the format expect.
			}
		default:
			out = append(out, b)
		}
		i++
	}
}

type dictOpenRecognizer struct{}

func (dictOpenRecognizer) match(c *Cursor) (*token, error) {
	if c.HasPrefix([]byte("<<")) {
		return &token{used: 2, open: containerDict}, nil
	}
	return nil, nil
}

type hexStringRecognizer struct{}

func (hexStringRecognizer) match(c *Cursor) (*token, error) {
	if b, ok := c.ByteAt(0); !ok || b != '<' {
		return nil, nil
	}
	var out []byte
	var nibble byte
	half := false
	i := 1
	for {
		b, ok := c.ByteAt(i)
		if !ok {
			return nil, formatErrf(c.Tell(), "hex string not closed with '>'")
		}
		switch {
		case b == '>':
			if half {
				// An odd trailing nibble is padded with zero.
				out = append(out, nibble<<4)
			}
			return &token{obj: String(out), used: i + 1}, nil
		case isWhitespace(b):
		case isHexDigit(b):
			if half {
				out = append(out, nibble<<4|hexValue(b))
				half = false
			} else {
				nibble = hexValue(b)
				half = true
			}
		default:
			return nil, &ValueError{Msg: "invalid byte in hex string"}
		}
		i++
	}
}

type nameRecognizer struct{}

func (nameRecognizer) match(c *Cursor) (*token, error) {
	if b, ok := c.ByteAt(0); !ok || b != '/' {
		return nil, nil
	}
	var out []byte
	i := 1
	for {
		b, ok := c.ByteAt(i)
		if !ok || isTokenBoundary(b) {
			break
		}
		if b == '#' {
			h1, ok1 := c.ByteAt(i + 1)
			h2, ok2 := c.ByteAt(i + 2)
			if !ok1 || !ok2 || !isHexDigit(h1) || !isHexDigit(h2) {
				return nil, &ValueError{Msg: "invalid #XX escape in name"}
			}
			v := hexValue(h1)<<4 | hexValue(h2)
			if v == 0 {
				return nil, &ValueError{Msg: "name contains a zero byte"}
			}
			out = append(out, v)
			i += 3
			continue
		}
		out = append(out, b)
		i++
	}
	return &token{obj: Name(out), used: i}, nil
}

type nullRecognizer struct{}

func (nullRecognizer) match(c *Cursor) (*token, error) {
	if c.HasPrefix([]byte("null")) && boundaryAt(c, 4) {
		return &token{obj: Null{}, used: 4}, nil
	}
	return nil, nil
}

type arrayOpenRecognizer struct{}

func (arrayOpenRecognizer) match(c *Cursor) (*token, error) {
	if b, ok := c.ByteAt(0); ok && b == '[' {
		return &token{used: 1, open: containerArray}, nil
	}
	return nil, nil
}
