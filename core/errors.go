package core

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnexpectedEOF is returned when the byte source is exhausted before a
// mandatory token or stream payload completes. It wraps io.ErrUnexpectedEOF
// so callers can match either sentinel.
var ErrUnexpectedEOF = fmt.Errorf("folio: %w", io.ErrUnexpectedEOF)

// FormatError reports bytes that do not form a valid token or structure at
// a position where one is mandatory.
type FormatError struct {
	Msg    string
	Offset int64 // byte offset into the source, or -1 when unknown
}

func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("folio: format error at offset %d: %s", e.Offset, e.Msg)
	}
	return "folio: format error: " + e.Msg
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func formatErrf(offset int64, format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}

// IdentityError reports an invalid or unassigned object identity: a
// non-positive object number, a negative generation, or serialization of a
// reference before identities were assigned.
type IdentityError struct {
	Msg string
}

func (e *IdentityError) Error() string { return "folio: " + e.Msg }

// ValueError reports a value that decodes outside its valid range, such as
// an octal escape of 256 or more, a malformed hex pair, or a name
// containing a zero byte.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return "folio: " + e.Msg }
