package filters

import (
	"bytes"
	"fmt"
)

// ASCIIHexDecode decodes a hex-encoded payload. Whitespace is ignored, the
// optional '>' terminator ends the data, and an odd final digit is padded
// with a zero nibble.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var nibble byte
	half := false
	for i, b := range data {
		switch {
		case b == '>':
			if half {
				out = append(out, nibble<<4)
			}
			return out, nil
		case isSpace(b):
		case isHex(b):
			if half {
				out = append(out, nibble<<4|hexVal(b))
				half = false
			} else {
				nibble = hexVal(b)
				half = true
			}
		default:
			return nil, fmt.Errorf("invalid hex byte %q at offset %d", b, i)
		}
	}
	if half {
		out = append(out, nibble<<4)
	}
	return out, nil
}

// ASCIIHexEncode produces the hex form of data, closed with '>'.
func ASCIIHexEncode(data []byte) []byte {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, len(data)*2+1)
	for _, b := range data {
		out = append(out, digits[b>>4], digits[b&0x0F])
	}
	return append(out, '>')
}

// ASCII85Decode decodes base-85 data. The optional "<~" prefix and the
// "~>" terminator are honored, 'z' stands for four zero bytes, and a
// partial final group is decoded by padding with 'u'.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("<~"))
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}

	var out []byte
	var group [5]byte
	n := 0
	for i, b := range data {
		switch {
		case isSpace(b):
		case b == 'z':
			if n != 0 {
				return nil, fmt.Errorf("'z' inside a group at offset %d", i)
			}
			out = append(out, 0, 0, 0, 0)
		case b >= '!' && b <= 'u':
			group[n] = b - '!'
			n++
			if n == 5 {
				out = appendGroup85(out, group, 4)
				n = 0
			}
		default:
			return nil, fmt.Errorf("invalid base-85 byte %q at offset %d", b, i)
		}
	}
	if n == 1 {
		return nil, fmt.Errorf("truncated base-85 group")
	}
	if n > 1 {
		for j := n; j < 5; j++ {
			group[j] = 'u' - '!'
		}
		out = appendGroup85(out, group, n-1)
	}
	return out, nil
}

func appendGroup85(out []byte, group [5]byte, keep int) []byte {
	var v uint32
	for _, d := range group {
		v = v*85 + uint32(d)
	}
	word := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return append(out, word[:keep]...)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\f' || b == '\r' || b == 0
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
